// cmd/read/specs.go

// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package read

import (
	"os"
	"time"

	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/inventory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/output"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/progress"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	specsMachines []string
	specsJSON     bool
)

// ReadSpecsCmd collects CPU, memory, disk, and OS inventory.
var ReadSpecsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Show CPU, memory, disk, and OS details for machines",
	Long: `Collects hardware and OS inventory: processor, core counts, installed
memory, fixed disks with free space, and the OS version with a check
against the minimum supported Windows build.

A single machine prints a detailed view; several machines print one
summary row each.

Examples:
  argus read specs --machines WS-042
  argus read specs --machines @fleet.txt --workers 8 --json`,
	RunE: argus.Wrap(runReadSpecs),
}

func init() {
	ReadCmd.AddCommand(ReadSpecsCmd)

	ReadSpecsCmd.Flags().StringSliceVarP(&specsMachines, "machines", "m", nil, "Target machines (comma-separated, or @file with one per line)")
	ReadSpecsCmd.Flags().BoolVar(&specsJSON, "json", false, "Emit JSON instead of a table")

	if err := ReadSpecsCmd.MarkFlagRequired("machines"); err != nil {
		otelzap.L().Warn("Failed to mark flag required", zap.Error(err))
	}
}

func runReadSpecs(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	machines, err := argus_io.ExpandMachineArgs(specsMachines)
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

	logger.Debug("Inventory targets", zap.Strings("machines", machines))

	op := progress.NewOperation(rc.Ctx, "Collecting hardware inventory", "a few seconds per machine").
		WithNote("slow WANs stretch this considerably")
	op.Start()
	collector := inventory.NewCollector(cfg)
	results := collector.SpecsAll(rc.Ctx, machines, batch.WithWorkers(argus.Workers(cmd)))
	op.Done()

	if specsJSON {
		if err := output.JSONToStdout(specsReportRows(results)); err != nil {
			return err
		}
	} else {
		specs := make([]inventory.Specs, 0, len(results))
		for _, r := range batch.Succeeded(results) {
			specs = append(specs, r.Value)
		}
		switch {
		case len(specs) == 1 && len(results) == 1:
			if err := output.SpecsDetail(os.Stdout, specs[0]); err != nil {
				return err
			}
		case len(specs) > 0:
			if err := output.SpecsRows(os.Stdout, specs); err != nil {
				return err
			}
		}
	}

	argus.LogBatchSummary(rc, "Inventory collection",
		len(results), len(batch.Failed(results)), time.Since(rc.Timestamp))
	return batch.Outcome(results, "inventory collection")
}

type machineSpecs struct {
	inventory.Specs
	Error string `json:"error,omitempty"`
}

func specsReportRows(results []batch.Result[inventory.Specs]) []machineSpecs {
	rows := make([]machineSpecs, 0, len(results))
	for _, r := range results {
		row := machineSpecs{Specs: r.Value}
		row.Machine = r.Machine
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}
