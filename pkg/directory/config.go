// pkg/directory/config.go

package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/remote"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLDAPPort  = 389
	DefaultLDAPSPort = 636
	DefaultTimeout   = 30 * time.Second

	envPrefix      = "ARGUS"
	configFileName = "config.yaml"
)

// Config carries everything needed to reach machines and the domain.
// Precedence, lowest to highest: built-in defaults, ~/.argus/config.yaml,
// .env in the working directory, ARGUS_* environment variables, flags.
type Config struct {
	Domain           string        `yaml:"domain" validate:"omitempty,fqdn"`
	DomainController string        `yaml:"domain_controller" validate:"omitempty,hostname|ip"`
	LDAPPort         int           `yaml:"ldap_port" validate:"omitempty,min=1,max=65535"`
	LDAPS            bool          `yaml:"ldaps"`
	BindUser         string        `yaml:"bind_user"`
	BindPassword     string        `yaml:"bind_password"`
	WinRMPort        int           `yaml:"winrm_port" validate:"omitempty,min=1,max=65535"`
	WinRMHTTPS       bool          `yaml:"winrm_https"`
	WinRMInsecure    bool          `yaml:"winrm_insecure"`
	Timeout          time.Duration `yaml:"timeout"`
}

// DefaultConfig picks up the joined domain from the environment when the
// tool runs on a domain member, matching what nltest reports.
func DefaultConfig() Config {
	return Config{
		Domain:    strings.ToLower(os.Getenv("USERDNSDOMAIN")),
		LDAPPort:  DefaultLDAPPort,
		WinRMPort: remote.DefaultPort,
		Timeout:   DefaultTimeout,
	}
}

// LoadConfig assembles the layered configuration. A missing config file is
// fine unless the user named one explicitly.
func LoadConfig(ctx context.Context, explicitPath string) (Config, error) {
	logger := otelzap.Ctx(ctx)
	cfg := DefaultConfig()

	path := explicitPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".argus", configFileName)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, cerr.Wrapf(err, "parse config file %s", path)
			}
			logger.Debug("Loaded config file", zap.String("path", path))
		case os.IsNotExist(err) && explicitPath == "":
			// default location is optional
		default:
			return cfg, cerr.Wrapf(err, "read config file %s", path)
		}
	}

	// .env is a developer convenience; absence is the normal case.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	applyEnv(&cfg)

	if cfg.LDAPS && cfg.LDAPPort == DefaultLDAPPort {
		cfg.LDAPPort = DefaultLDAPSPort
	}
	return cfg, nil
}

// applyEnv overlays ARGUS_* variables onto the config.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if s := v.GetString("domain"); s != "" {
		cfg.Domain = strings.ToLower(s)
	}
	if s := v.GetString("dc"); s != "" {
		cfg.DomainController = s
	}
	if v.IsSet("ldap_port") && v.GetInt("ldap_port") != 0 {
		cfg.LDAPPort = v.GetInt("ldap_port")
	}
	if v.IsSet("ldaps") {
		cfg.LDAPS = v.GetBool("ldaps")
	}
	if s := v.GetString("bind_user"); s != "" {
		cfg.BindUser = s
	}
	if s := v.GetString("bind_password"); s != "" {
		cfg.BindPassword = s
	}
	if v.IsSet("winrm_port") && v.GetInt("winrm_port") != 0 {
		cfg.WinRMPort = v.GetInt("winrm_port")
	}
	if v.IsSet("winrm_https") {
		cfg.WinRMHTTPS = v.GetBool("winrm_https")
	}
	if v.IsSet("winrm_insecure") {
		cfg.WinRMInsecure = v.GetBool("winrm_insecure")
	}
	if d := v.GetDuration("timeout"); d > 0 {
		cfg.Timeout = d
	}
}

// Validate checks field shapes, not reachability.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return argus_err.NewValidationError("invalid configuration: %v", err)
	}
	return nil
}

// RequireRemote ensures credentials exist before any network dial.
func (c *Config) RequireRemote() error {
	if c.BindUser == "" || c.BindPassword == "" {
		return argus_err.NewValidationError(
			"remote credentials required: set --bind-user/--bind-password or ARGUS_BIND_USER/ARGUS_BIND_PASSWORD")
	}
	return c.Validate()
}

// WinRM shapes the remoting half of the config.
func (c *Config) WinRM() remote.Config {
	return remote.Config{
		Port:     c.WinRMPort,
		HTTPS:    c.WinRMHTTPS,
		Insecure: c.WinRMInsecure,
		User:     c.BindUser,
		Password: c.BindPassword,
		Timeout:  c.Timeout,
	}
}

// LDAPURL builds the directory endpoint URL. The DC address falls back
// to the domain's DNS name, which AD resolves to a live controller.
func (c *Config) LDAPURL() string {
	host := c.DomainController
	if host == "" {
		host = c.Domain
	}
	scheme := "ldap"
	if c.LDAPS {
		scheme = "ldaps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, c.LDAPPort)
}

// BaseDN derives the directory search base from the domain name, e.g.
// corp.example.com becomes dc=corp,dc=example,dc=com.
func (c *Config) BaseDN() string {
	if c.Domain == "" {
		return ""
	}
	labels := strings.Split(c.Domain, ".")
	for i, l := range labels {
		labels[i] = "dc=" + l
	}
	return strings.Join(labels, ",")
}
