// cmd/check/credential.go

package check

import (
	"fmt"

	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/credcheck"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/output"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	credUser     string
	credPassword string
	credJSON     bool
)

// CheckCredentialCmd validates a domain account's password.
var CheckCredentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Validate a domain account's password",
	Long: `Attempts a directory bind as the given account and reports whether the
credentials are accepted. The bind is made as the checked account
itself; --bind-user is not used here.

The command succeeds whenever the directory gave a verdict, valid or
not. It fails only when no verdict could be obtained, for example when
the directory is unreachable.

Examples:
  argus check credential --user jdoe
  argus check credential --user jdoe@corp.example.com --json`,
	RunE: argus.Wrap(runCheckCredential),
}

func init() {
	CheckCmd.AddCommand(CheckCredentialCmd)

	CheckCredentialCmd.Flags().StringVarP(&credUser, "user", "u", "", "Account to validate (name, DOMAIN\\name, or UPN)")
	CheckCredentialCmd.Flags().StringVar(&credPassword, "password", "", "Password to validate (prompted if omitted)")
	CheckCredentialCmd.Flags().BoolVar(&credJSON, "json", false, "Emit JSON instead of text")

	if err := CheckCredentialCmd.MarkFlagRequired("user"); err != nil {
		otelzap.L().Warn("Failed to mark flag required", zap.Error(err))
	}
}

func runCheckCredential(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	cfg, err := argus.ConfigFromCommand(rc, cmd)
	if err != nil {
		return err
	}

	password := credPassword
	if password == "" {
		password, err = interaction.PromptPassword(fmt.Sprintf("Password for %s", credUser))
		if err != nil {
			return err
		}
	}

	user := credcheck.NormalizeUPN(credUser, cfg.Domain)
	logger.Info("Validating credentials", zap.String("user", user))

	valid, err := credcheck.Check(rc.Ctx, cfg, user, password)
	if err != nil {
		return err
	}

	if credJSON {
		return output.JSONToStdout(map[string]interface{}{"user": user, "valid": valid})
	}
	if valid {
		fmt.Printf("Credentials for %s are valid.\n", user)
	} else {
		fmt.Printf("Credentials for %s are INVALID.\n", user)
	}
	return nil
}
