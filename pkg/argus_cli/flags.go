// pkg/argus_cli/flags.go

package argus_cli

import (
	"fmt"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/interaction"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// RegisterConnectionFlags declares the persistent flags shared by every
// command that reaches machines or the domain.
func RegisterConnectionFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default ~/.argus/config.yaml)")
	pf.String("domain", "", "AD DNS domain (default: joined domain)")
	pf.String("dc", "", "Domain controller host (default: resolve via domain DNS)")
	pf.String("bind-user", "", "Account used for WinRM and directory binds")
	pf.String("bind-password", "", "Password for --bind-user (prompted if omitted)")
	pf.Bool("ldaps", false, "Use LDAPS for directory queries")
	pf.Int("ldap-port", 0, "Directory port (default 389, or 636 with --ldaps)")
	pf.Int("winrm-port", 0, "WinRM port (default 5985, or 5986 with --winrm-https)")
	pf.Bool("winrm-https", false, "Use HTTPS WinRM listeners")
	pf.Bool("winrm-insecure", false, "Skip TLS verification on WinRM HTTPS")
	pf.Duration("timeout", 0, "Per-machine network timeout")
	pf.Int("workers", 1, "Machines processed in parallel (1 = sequential, in input order)")
}

// ConfigFromCommand layers flag values over the file/env configuration.
// Flags win; only flags the user actually set are applied.
func ConfigFromCommand(rc *argus_io.RuntimeContext, cmd *cobra.Command) (directory.Config, error) {
	cfg, err := directory.LoadConfig(rc.Ctx, GetStringOrEmpty(cmd, "config"))
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("domain") {
		cfg.Domain = GetStringOrEmpty(cmd, "domain")
	}
	if f.Changed("dc") {
		cfg.DomainController = GetStringOrEmpty(cmd, "dc")
	}
	if f.Changed("bind-user") {
		cfg.BindUser = GetStringOrEmpty(cmd, "bind-user")
	}
	if f.Changed("bind-password") {
		cfg.BindPassword = GetStringOrEmpty(cmd, "bind-password")
	}
	if f.Changed("ldaps") {
		cfg.LDAPS, _ = f.GetBool("ldaps")
		if cfg.LDAPS && !f.Changed("ldap-port") && cfg.LDAPPort == directory.DefaultLDAPPort {
			cfg.LDAPPort = directory.DefaultLDAPSPort
		}
	}
	if f.Changed("ldap-port") {
		cfg.LDAPPort, _ = f.GetInt("ldap-port")
	}
	if f.Changed("winrm-port") {
		cfg.WinRMPort, _ = f.GetInt("winrm-port")
	}
	if f.Changed("winrm-https") {
		cfg.WinRMHTTPS, _ = f.GetBool("winrm-https")
	}
	if f.Changed("winrm-insecure") {
		cfg.WinRMInsecure, _ = f.GetBool("winrm-insecure")
	}
	if f.Changed("timeout") {
		if d, err := f.GetDuration("timeout"); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg, cfg.Validate()
}

// EnsureCredentials prompts for the bind password when a user is set but
// the password is missing and stdin is interactive.
func EnsureCredentials(rc *argus_io.RuntimeContext, cfg *directory.Config) error {
	if cfg.BindUser != "" && cfg.BindPassword == "" {
		pw, err := interaction.PromptPassword(fmt.Sprintf("Password for %s", cfg.BindUser))
		if err != nil {
			return err
		}
		cfg.BindPassword = pw
	}
	return cfg.RequireRemote()
}

// Workers reads the shared --workers flag, clamped to at least 1.
func Workers(cmd *cobra.Command) int {
	n, err := cmd.Flags().GetInt("workers")
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// GetStringOrEmpty returns the flag's value, or empty on lookup errors.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to get flag %s: %v\n", name, err)
		return ""
	}
	return val
}

// LogBatchSummary reports how a batch ended. Detailed per-machine
// failures were already warned about as they happened.
func LogBatchSummary(rc *argus_io.RuntimeContext, label string, total, failed int, took time.Duration) {
	logger := otelzap.Ctx(rc.Ctx)
	if failed == 0 {
		logger.Info(label+" completed",
			zap.Int("machines", total), zap.Duration("took", took))
		return
	}
	logger.Warn(label+" completed with failures",
		zap.Int("machines", total),
		zap.Int("failed", failed),
		zap.Duration("took", took))
}
