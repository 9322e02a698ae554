// cmd/create/member.go

package create

import (
	"os"
	"time"

	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/localgroup"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/output"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	memberMachines []string
	memberUser     string
	memberGroup    string
	memberJSON     bool
)

// CreateMemberCmd adds a domain account to a local group across machines.
var CreateMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Add a domain account to a local group on machines",
	Long: `Adds a domain user or group to a machine-local group. The account is
looked up in the directory first, so a mistyped name fails before any
machine is touched. Adding an account that is already a member is
reported and does not fail the run.

The user may be given as a plain account name, DOMAIN\name, or a UPN.

Examples:
  argus create member --user jdoe --group Administrators --machines WS-042
  argus create member --user "CORP\\svc-deploy" --group "Remote Desktop Users" --machines @fleet.txt`,
	RunE: argus.Wrap(runCreateMember),
}

func init() {
	CreateCmd.AddCommand(CreateMemberCmd)

	CreateMemberCmd.Flags().StringSliceVarP(&memberMachines, "machines", "m", nil, "Target machines (comma-separated, or @file with one per line)")
	CreateMemberCmd.Flags().StringVarP(&memberUser, "user", "u", "", "Domain account to add")
	CreateMemberCmd.Flags().StringVarP(&memberGroup, "group", "g", "Administrators", "Local group to add the account to")
	CreateMemberCmd.Flags().BoolVar(&memberJSON, "json", false, "Emit JSON instead of a table")

	for _, flag := range []string{"machines", "user"} {
		if err := CreateMemberCmd.MarkFlagRequired(flag); err != nil {
			otelzap.L().Warn("Failed to mark flag required", zap.String("flag", flag), zap.Error(err))
		}
	}
}

func runCreateMember(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	machines, err := argus_io.ExpandMachineArgs(memberMachines)
	if err != nil {
		return err
	}

	cfg, err := argus.ConfigFromCommand(rc, cmd)
	if err != nil {
		return err
	}
	if err := argus.EnsureCredentials(rc, &cfg); err != nil {
		return err
	}

	logger.Info("Adding group member",
		zap.String("user", memberUser),
		zap.String("group", memberGroup),
		zap.Strings("machines", machines))

	client := directory.NewClient(cfg)
	mutator := localgroup.NewMutator(client, client)
	results := mutator.AddMemberAll(rc.Ctx, machines, memberUser, memberGroup, cfg.Domain,
		batch.WithWorkers(argus.Workers(cmd)))

	if memberJSON {
		if err := output.JSONToStdout(output.MutationReport(results)); err != nil {
			return err
		}
	} else if err := output.Mutations(os.Stdout, results); err != nil {
		return err
	}

	argus.LogBatchSummary(rc, "Member addition",
		len(results), len(batch.Failed(results)), time.Since(rc.Timestamp))
	return batch.Outcome(results, "member addition")
}
