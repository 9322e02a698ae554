// cmd/read/members.go

package read

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

// Command flags
var (
	membersMachines []string
	membersGroup    string
	membersIndirect bool
	membersMaxDepth int
	membersJSON     bool
)

// ReadMembersCmd resolves local group membership across machines.
var ReadMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "List a local group's members on one or more machines",
	Long: `Lists the members of a machine-local group, such as Administrators or
Remote Desktop Users. With --indirect, domain groups found among the
members are expanded through the directory, nested groups included, so
the output shows every account the membership actually grants access to.

Machines that cannot be reached are reported as warnings; the remaining
machines are still queried.

Examples:
  argus read members --machines WS-042 --group Administrators
  argus read members --machines WS-01,WS-02 --group "Remote Desktop Users" --indirect
  argus read members --machines @fleet.txt --group Administrators --indirect --json`,
	RunE: argus.Wrap(runReadMembers),
}

func init() {
	ReadCmd.AddCommand(ReadMembersCmd)

	ReadMembersCmd.Flags().StringSliceVarP(&membersMachines, "machines", "m", nil, "Target machines (comma-separated, or @file with one per line)")
	ReadMembersCmd.Flags().StringVarP(&membersGroup, "group", "g", "Administrators", "Local group to resolve")
	ReadMembersCmd.Flags().BoolVarP(&membersIndirect, "indirect", "i", false, "Expand nested domain groups")
	ReadMembersCmd.Flags().IntVar(&membersMaxDepth, "max-depth", localgroup.DefaultMaxDepth, "Nesting depth limit for --indirect")
	ReadMembersCmd.Flags().BoolVar(&membersJSON, "json", false, "Emit JSON instead of a table")

	if err := ReadMembersCmd.MarkFlagRequired("machines"); err != nil {
		otelzap.L().Warn("Failed to mark flag required", zap.Error(err))
	}
}

func runReadMembers(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	machines, err := argus_io.ExpandMachineArgs(membersMachines)
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

	logger.Info("Resolving group membership",
		zap.Strings("machines", machines),
		zap.String("group", membersGroup),
		zap.Bool("indirect", membersIndirect))

	resolver := localgroup.NewResolver(directory.NewClient(cfg), localgroup.WithMaxDepth(membersMaxDepth))
	results := resolver.ResolveAll(rc.Ctx, machines, membersGroup, membersIndirect,
		batch.WithWorkers(argus.Workers(cmd)))

	if membersJSON {
		if err := output.JSONToStdout(membershipReport(membersGroup, results)); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			logger.Info("Group membership resolved",
				zap.String("machine", r.Machine),
				zap.String("group", membersGroup),
				zap.Int("members", len(r.Value)))
			if err := output.Principals(os.Stdout, r.Value); err != nil {
				return err
			}
		}
	}

	argus.LogBatchSummary(rc, "Membership resolution",
		len(results), len(batch.Failed(results)), time.Since(rc.Timestamp))
	return batch.Outcome(results, "membership resolution")
}

type machineMembership struct {
	Machine string                `json:"machine"`
	Members []directory.Principal `json:"members,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func membershipReport(group string, results []localgroup.Result) map[string]interface{} {
	report := make([]machineMembership, 0, len(results))
	for _, r := range results {
		m := machineMembership{Machine: r.Machine, Members: r.Value}
		if r.Err != nil {
			m.Error = r.Err.Error()
		}
		report = append(report, m)
	}
	return map[string]interface{}{"group": group, "machines": report}
}
