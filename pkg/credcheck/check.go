// pkg/credcheck/check.go

// Package credcheck verifies username/password pairs against the domain
// by attempting a directory bind as that user.
package credcheck

import (
	"context"
	"net"
	"strings"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/go-ldap/ldap/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Check reports whether the credentials authenticate against the domain.
// Wrong password, disabled account, and locked account all come back as
// (false, nil); only transport and configuration problems are errors.
func Check(ctx context.Context, cfg directory.Config, username, password string) (bool, error) {
	if username == "" {
		return false, argus_err.NewValidationError("username must not be empty")
	}
	// An empty password would turn the bind into an anonymous one, which
	// many directories accept. That must never read as a valid login.
	if password == "" {
		return false, argus_err.NewValidationError("password must not be empty")
	}
	if cfg.Domain == "" {
		return false, argus_err.NewValidationError("no domain configured: set --domain or ARGUS_DOMAIN")
	}

	upn := NormalizeUPN(username, cfg.Domain)
	url := cfg.LDAPURL()

	conn, err := ldap.DialURL(url, ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}))
	if err != nil {
		return false, argus_err.NewConnectivityError("failed to connect to directory at "+url, err)
	}
	defer conn.Close()
	conn.SetTimeout(cfg.Timeout)

	ok, err := bindVerdict(conn.Bind(upn, password), url)
	if err != nil {
		return false, err
	}
	if !ok {
		otelzap.Ctx(ctx).Debug("Directory rejected credentials",
			zap.String("user", upn))
	}
	return ok, nil
}

// bindVerdict turns a bind result into a verdict. Invalid credentials
// (AD reports disabled and locked accounts the same way) are a verdict,
// not a failure; any other bind error is.
func bindVerdict(bindErr error, url string) (bool, error) {
	if bindErr == nil {
		return true, nil
	}
	if ldap.IsErrorWithCode(bindErr, ldap.LDAPResultInvalidCredentials) {
		return false, nil
	}
	return false, argus_err.NewConnectivityError("credential check against "+url+" failed", bindErr)
}

// NormalizeUPN shapes any of sam, DOMAIN\sam, or an existing UPN into
// user@domain for the bind.
func NormalizeUPN(username, domain string) string {
	if strings.Contains(username, "@") {
		return username
	}
	if i := strings.LastIndex(username, `\`); i >= 0 {
		username = username[i+1:]
	}
	return username + "@" + domain
}
