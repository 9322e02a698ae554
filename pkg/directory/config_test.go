// pkg/directory/config_test.go

package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPicksUpJoinedDomain(t *testing.T) {
	t.Setenv("USERDNSDOMAIN", "CORP.EXAMPLE.COM")

	cfg := DefaultConfig()
	assert.Equal(t, "corp.example.com", cfg.Domain)
	assert.Equal(t, DefaultLDAPPort, cfg.LDAPPort)
	assert.Equal(t, 5985, cfg.WinRMPort)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("USERDNSDOMAIN", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: corp.example.com
domain_controller: dc01.corp.example.com
bind_user: svc-argus
winrm_https: true
winrm_port: 5986
timeout: 45s
`), 0o600))

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "corp.example.com", cfg.Domain)
	assert.Equal(t, "dc01.corp.example.com", cfg.DomainController)
	assert.Equal(t, "svc-argus", cfg.BindUser)
	assert.True(t, cfg.WinRMHTTPS)
	assert.Equal(t, 5986, cfg.WinRMPort)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoadConfigExplicitFileMustExist(t *testing.T) {
	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain: file.example.com\nldap_port: 3268\n"), 0o600))

	t.Setenv("ARGUS_DOMAIN", "ENV.EXAMPLE.COM")
	t.Setenv("ARGUS_BIND_PASSWORD", "hunter2")
	t.Setenv("ARGUS_LDAPS", "true")

	cfg, err := LoadConfig(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "env.example.com", cfg.Domain, "env must beat file")
	assert.Equal(t, "hunter2", cfg.BindPassword)
	assert.True(t, cfg.LDAPS)
	assert.Equal(t, 3268, cfg.LDAPPort, "explicit file port survives ldaps defaulting")
}

func TestLoadConfigLDAPSDefaultsPort(t *testing.T) {
	t.Setenv("USERDNSDOMAIN", "")
	t.Setenv("ARGUS_LDAPS", "true")

	cfg, err := LoadConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLDAPSPort, cfg.LDAPPort)
}

func TestRequireRemote(t *testing.T) {
	cfg := Config{Domain: "corp.example.com", LDAPPort: DefaultLDAPPort, WinRMPort: 5985}

	err := cfg.RequireRemote()
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))
	assert.Equal(t, 2, argus_err.GetExitCode(err))

	cfg.BindUser = "svc-argus"
	cfg.BindPassword = "hunter2"
	assert.NoError(t, cfg.RequireRemote())
}

func TestValidateRejectsBadShapes(t *testing.T) {
	cfg := Config{Domain: "not a domain!", LDAPPort: DefaultLDAPPort}
	assert.Error(t, cfg.Validate())

	cfg = Config{Domain: "corp.example.com", LDAPPort: 70000}
	assert.Error(t, cfg.Validate())

	cfg = Config{Domain: "corp.example.com", LDAPPort: DefaultLDAPPort, WinRMPort: 5985}
	assert.NoError(t, cfg.Validate())
}
