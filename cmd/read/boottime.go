// cmd/read/boottime.go

package read

import (
	"os"
	"time"

	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/inventory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/output"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	boottimeMachines []string
	boottimeJSON     bool
)

// ReadBoottimeCmd reports when machines last started.
var ReadBoottimeCmd = &cobra.Command{
	Use:     "boottime",
	Aliases: []string{"uptime"},
	Short:   "Show last boot time and uptime for machines",
	Long: `Queries each machine for its last boot time and computes uptime from
the machine's own clock. The local machine is read directly and needs
no credentials; remote machines are queried over WinRM.

Examples:
  argus read boottime --machines localhost
  argus read boottime --machines WS-01,WS-02,SRV-01 --workers 4`,
	RunE: argus.Wrap(runReadBoottime),
}

func init() {
	ReadCmd.AddCommand(ReadBoottimeCmd)

	ReadBoottimeCmd.Flags().StringSliceVarP(&boottimeMachines, "machines", "m", nil, "Target machines (comma-separated, or @file with one per line)")
	ReadBoottimeCmd.Flags().BoolVar(&boottimeJSON, "json", false, "Emit JSON instead of a table")

	if err := ReadBoottimeCmd.MarkFlagRequired("machines"); err != nil {
		otelzap.L().Warn("Failed to mark flag required", zap.Error(err))
	}
}

func runReadBoottime(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	machines, err := argus_io.ExpandMachineArgs(boottimeMachines)
	if err != nil {
		return err
	}

	cfg, err := argus.ConfigFromCommand(rc, cmd)
	if err != nil {
		return err
	}
	if anyRemote(machines) {
		if err := argus.EnsureCredentials(rc, &cfg); err != nil {
			return err
		}
	}

	logger.Info("Collecting boot times", zap.Strings("machines", machines))

	collector := inventory.NewCollector(cfg)
	results := collector.BootAll(rc.Ctx, machines, batch.WithWorkers(argus.Workers(cmd)))

	if boottimeJSON {
		if err := output.JSONToStdout(bootReportRows(results)); err != nil {
			return err
		}
	} else {
		infos := make([]inventory.BootInfo, 0, len(results))
		for _, r := range batch.Succeeded(results) {
			infos = append(infos, r.Value)
		}
		if len(infos) > 0 {
			if err := output.BootRows(os.Stdout, infos); err != nil {
				return err
			}
		}
	}

	argus.LogBatchSummary(rc, "Boot time query",
		len(results), len(batch.Failed(results)), time.Since(rc.Timestamp))
	return batch.Outcome(results, "boot time query")
}

type machineBoot struct {
	inventory.BootInfo
	Error string `json:"error,omitempty"`
}

func bootReportRows(results []batch.Result[inventory.BootInfo]) []machineBoot {
	rows := make([]machineBoot, 0, len(results))
	for _, r := range results {
		row := machineBoot{BootInfo: r.Value}
		row.Machine = r.Machine
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// anyRemote reports whether the target list reaches past this host, in
// which case credentials are needed up front.
func anyRemote(machines []string) bool {
	for _, m := range machines {
		if !inventory.IsLocal(m) {
			return true
		}
	}
	return false
}
