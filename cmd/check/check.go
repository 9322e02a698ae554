// cmd/check/check.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package check

import (
	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CheckCmd is the root command for check operations
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check things that can only be true or false (credentials)",
	Long:  `The check command verifies a claim and reports the verdict.`,
	RunE: argus.Wrap(func(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		otelzap.Ctx(rc.Ctx).Info("No subcommand provided for <command>.", zap.String("command", cmd.Use))
		_ = cmd.Help()
		return nil
	}),
}
