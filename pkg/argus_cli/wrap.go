// pkg/argus_cli/wrap.go

package argus_cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_io"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap ensures panic recovery, telemetry, and outcome logging around a
// command body. All RunE functions go through here. Ctrl-C cancels the
// command's context; whatever partial output the body produced stands.
func Wrap(fn func(rc *argus_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rc := argus_io.NewContext(ctx, cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = argus_err.NewInternalError("panic recovered", cerr.AssertionFailedf("panic: %v", r))
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if ctx.Err() != nil && (err == nil || cerr.Is(err, context.Canceled)) {
			cause := err
			if cause == nil {
				cause = ctx.Err()
			}
			return argus_err.NewInterruptError("interrupted", cause)
		}
		if err != nil && !argus_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
