// pkg/batch/runner.go
//
// Fan-out of one operation across many machines. One machine failing is
// a warning, not a batch failure; commands only error out when nothing
// succeeded at all.

package batch

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/progress"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result pairs one machine with its outcome.
type Result[T any] struct {
	Machine string
	Value   T
	Err     error
}

type Options struct {
	Workers int
}

type Option func(*Options)

// WithWorkers opts into bounded parallel execution. n <= 1 keeps the
// default sequential order.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// Run applies fn to every machine in input order. Results always come
// back in input order, one per machine, regardless of worker count.
func Run[T any](ctx context.Context, machines []string, label string, fn func(ctx context.Context, machine string) (T, error), opts ...Option) []Result[T] {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	logger := otelzap.Ctx(ctx)
	tracker := progress.NewTracker(ctx, label, len(machines))
	results := make([]Result[T], len(machines))

	runOne := func(ctx context.Context, i int) {
		machine := machines[i]
		value, err := fn(ctx, machine)
		results[i] = Result[T]{Machine: machine, Value: value, Err: err}
		if err != nil {
			logger.Warn("Machine failed, continuing with remaining machines",
				zap.String("machine", machine),
				zap.String("operation", label),
				zap.Error(err))
		}
		tracker.Advance(machine)
	}

	if o.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.Workers)
		for i := range machines {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results[i] = Result[T]{Machine: machines[i], Err: err}
					return nil
				}
				runOne(gctx, i)
				return nil // one machine must not sink the batch
			})
		}
		_ = g.Wait()
		return results
	}

	for i := range machines {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(machines); j++ {
				results[j] = Result[T]{Machine: machines[j], Err: err}
			}
			break
		}
		runOne(ctx, i)
	}
	return results
}

// Succeeded filters the results that completed without error.
func Succeeded[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Failed filters the results that errored.
func Failed[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate collects every per-machine error into one, nil when all
// machines succeeded.
func Aggregate[T any](results []Result[T]) error {
	var merr *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.Machine, r.Err))
		}
	}
	return merr.ErrorOrNil()
}

// Outcome decides what a command should return for a finished batch:
// nil while anything succeeded, an expected user error when every
// machine failed (the warnings already told the story).
func Outcome[T any](results []Result[T], label string) error {
	if len(results) == 0 {
		return nil
	}
	failed := Failed(results)
	if len(failed) < len(results) {
		return nil
	}
	return argus_err.NewExpectedError(
		fmt.Errorf("%s failed on all %d machines: %w", label, len(results), Aggregate(results)))
}
