// cmd/read/read.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package read

import (
	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReadCmd is the root command for read operations
var ReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read fleet state (group members, boot times, hardware specs)",
	Long:  `The read command queries machines and the domain without changing anything.`,
	RunE: argus.Wrap(func(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		otelzap.Ctx(rc.Ctx).Info("No subcommand provided for <command>.", zap.String("command", cmd.Use))
		_ = cmd.Help()
		return nil
	}),
}
