// cmd/delete/member.go

package delete

import (
	"fmt"
	"os"
	"time"

	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/localgroup"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/output"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	memberMachines []string
	memberUser     string
	memberGroup    string
	memberJSON     bool
	memberYes      bool
)

// DeleteMemberCmd removes an account from a local group across machines.
var DeleteMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Remove an account from a local group on machines",
	Long: `Removes a user or group from a machine-local group. The name is not
checked against the directory first: accounts already deleted from the
domain must still be removable from the groups they were left in.
Removing an account that is not a member is reported and does not fail
the run.

Prompts for confirmation before touching anything; --yes skips the
prompt for scripted use.

Examples:
  argus delete member --user jdoe --group Administrators --machines WS-042
  argus delete member --user "CORP\\contractor-7" --group "Remote Desktop Users" --machines @fleet.txt --yes`,
	RunE: argus.Wrap(runDeleteMember),
}

func init() {
	DeleteCmd.AddCommand(DeleteMemberCmd)

	DeleteMemberCmd.Flags().StringSliceVarP(&memberMachines, "machines", "m", nil, "Target machines (comma-separated, or @file with one per line)")
	DeleteMemberCmd.Flags().StringVarP(&memberUser, "user", "u", "", "Account to remove")
	DeleteMemberCmd.Flags().StringVarP(&memberGroup, "group", "g", "Administrators", "Local group to remove the account from")
	DeleteMemberCmd.Flags().BoolVar(&memberJSON, "json", false, "Emit JSON instead of a table")
	DeleteMemberCmd.Flags().BoolVarP(&memberYes, "yes", "y", false, "Skip the confirmation prompt")

	for _, flag := range []string{"machines", "user"} {
		if err := DeleteMemberCmd.MarkFlagRequired(flag); err != nil {
			otelzap.L().Warn("Failed to mark flag required", zap.String("flag", flag), zap.Error(err))
		}
	}
}

func runDeleteMember(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	machines, err := argus_io.ExpandMachineArgs(memberMachines)
	if err != nil {
		return err
	}

	if !memberYes {
		prompt := fmt.Sprintf("Remove %s from %q on %d machine(s)", memberUser, memberGroup, len(machines))
		if !interaction.Confirm(prompt) {
			logger.Info("Removal cancelled")
			return argus_err.NewExpectedError(cerr.New("removal cancelled"))
		}
	}

	cfg, err := argus.ConfigFromCommand(rc, cmd)
	if err != nil {
		return err
	}
	if err := argus.EnsureCredentials(rc, &cfg); err != nil {
		return err
	}

	logger.Info("Removing group member",
		zap.String("user", memberUser),
		zap.String("group", memberGroup),
		zap.Strings("machines", machines))

	client := directory.NewClient(cfg)
	mutator := localgroup.NewMutator(client, client)
	results := mutator.RemoveMemberAll(rc.Ctx, machines, memberUser, memberGroup,
		batch.WithWorkers(argus.Workers(cmd)))

	if memberJSON {
		if err := output.JSONToStdout(output.MutationReport(results)); err != nil {
			return err
		}
	} else if err := output.Mutations(os.Stdout, results); err != nil {
		return err
	}

	argus.LogBatchSummary(rc, "Member removal",
		len(results), len(batch.Failed(results)), time.Since(rc.Timestamp))
	return batch.Outcome(results, "member removal")
}
