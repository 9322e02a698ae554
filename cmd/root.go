/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	// Subcommands
	"github.com/CodeMonkeyCybersecurity/argus/cmd/check"
	"github.com/CodeMonkeyCybersecurity/argus/cmd/create"
	"github.com/CodeMonkeyCybersecurity/argus/cmd/delete"
	"github.com/CodeMonkeyCybersecurity/argus/cmd/list"
	"github.com/CodeMonkeyCybersecurity/argus/cmd/read"

	// Internal packages
	argus "github.com/CodeMonkeyCybersecurity/argus/pkg/argus_cli"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/logger"
)

var helpLogged bool // global guard to log help only once

// RootCmd is the base command for argus.
var RootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus CLI for Windows fleet queries and group administration",
	Long: `Argus answers the daily who/what/when questions about a Windows fleet:
who is in a machine's local groups (nested groups included), what hardware
a machine runs, when it last booted, and whether an account's credentials
still work. Membership changes go through the same machinery.`,

	RunE: argus.Wrap(func(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		fmt.Println("No subcommand provided. Try `argus help`.")
		return cmd.Help()
	}),
}

// HelpCmd wraps help so that it can be invoked like a normal command.
var HelpCmd = &cobra.Command{
	Use:   "help",
	Short: "Help about any command",
	Long:  "Displays help for argus or a specific subcommand.",
	RunE: argus.Wrap(func(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return RootCmd.Help()
		}
		c, _, err := RootCmd.Find(args)
		if err != nil || c == nil {
			return fmt.Errorf("command not found: %s", strings.Join(args, " "))
		}
		return c.Help()
	}),
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	RootCmd.SetHelpCommand(HelpCmd)

	log := logger.L()

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if !helpLogged {
			log.Info("Global help triggered via --help or -h", zap.String("command", cmd.Name()))
			helpLogged = true
			defer log.Info("Global help display complete", zap.String("command", cmd.Name()))
		}
		if err := cmd.Root().Usage(); err != nil {
			log.Warn("Failed to print usage", zap.Error(err))
		}
	})

	argus.RegisterConnectionFlags(RootCmd)

	for _, subCmd := range []*cobra.Command{
		read.ReadCmd,
		create.CreateCmd,
		delete.DeleteCmd,
		list.ListCmd,
		check.CheckCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute initializes and runs the root command. Exit codes follow the
// error classification: expected user errors exit 0, validation 2,
// internal faults 3, everything else 1.
func Execute() {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		code := argus_err.GetExitCode(err)
		if code == 0 {
			logger.L().Warn("CLI completed with user error", zap.Error(err))
		} else {
			logger.L().Error("CLI execution error", zap.Error(err), zap.Int("exit_code", code))
		}
		os.Exit(code)
	}
}
