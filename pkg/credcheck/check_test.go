// pkg/credcheck/check_test.go

package credcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUPN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"jdoe", "jdoe@corp.example.com"},
		{`CORP\jdoe`, "jdoe@corp.example.com"},
		{"jdoe@corp.example.com", "jdoe@corp.example.com"},
		{"jdoe@other.example.org", "jdoe@other.example.org"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeUPN(tt.in, "corp.example.com"), "NormalizeUPN(%q)", tt.in)
	}
}

func TestCheckValidation(t *testing.T) {
	t.Parallel()

	cfg := directory.Config{Domain: "corp.example.com", LDAPPort: directory.DefaultLDAPPort}

	_, err := Check(context.Background(), cfg, "", "hunter2")
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))

	_, err = Check(context.Background(), cfg, "jdoe", "")
	require.Error(t, err, "empty password must never reach the wire")
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))

	_, err = Check(context.Background(), directory.Config{LDAPPort: directory.DefaultLDAPPort}, "jdoe", "hunter2")
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))
}

func TestBindVerdict(t *testing.T) {
	t.Parallel()

	ok, err := bindVerdict(nil, "ldap://dc01:389")
	require.NoError(t, err)
	assert.True(t, ok)

	rejected := ldap.NewError(ldap.LDAPResultInvalidCredentials,
		errors.New("80090308: LdapErr: DSID-0C090447, data 52e"))
	ok, err = bindVerdict(rejected, "ldap://dc01:389")
	require.NoError(t, err, "a rejected password is a verdict, not a failure")
	assert.False(t, ok)

	ok, err = bindVerdict(errors.New("read tcp: connection reset by peer"), "ldap://dc01:389")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryConnectivity))
}

func TestCheckUnreachableDirectory(t *testing.T) {
	t.Parallel()

	// Loopback port 1 refuses immediately; no directory is involved.
	cfg := directory.Config{
		Domain:           "corp.example.com",
		DomainController: "127.0.0.1",
		LDAPPort:         1,
	}

	ok, err := Check(context.Background(), cfg, "jdoe", "hunter2")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryConnectivity),
		"transport failure is a connectivity error, not an invalid credential")
}
