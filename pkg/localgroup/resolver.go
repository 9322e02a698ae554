// pkg/localgroup/resolver.go
//
// Local group membership resolution. Direct membership is one query;
// indirect resolution walks nested groups breadth-first with a visited
// set, so cyclic nesting terminates and each group is expanded once.

package localgroup

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds nested expansion. Depth 1 is the group's own
// member list; each nesting level below it adds one.
const DefaultMaxDepth = 5

type Resolver struct {
	svc      directory.Service
	maxDepth int
}

type ResolverOption func(*Resolver)

// WithMaxDepth overrides the expansion depth cap. Values below 1 are
// clamped to 1 (direct members only).
func WithMaxDepth(n int) ResolverOption {
	return func(r *Resolver) {
		if n < 1 {
			n = 1
		}
		r.maxDepth = n
	}
}

func NewResolver(svc directory.Service, opts ...ResolverOption) *Resolver {
	r := &Resolver{svc: svc, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// queued is one group awaiting expansion. depth is the level its own
// members will land at, minus one.
type queued struct {
	name  string
	depth int
}

// Resolve returns the membership of a local group on one machine.
// With indirect set, groups found among the members are expanded
// breadth-first until the closure is complete or the depth cap is hit.
// A nested group that cannot be expanded is logged and skipped; the
// partial result is still returned.
func (r *Resolver) Resolve(ctx context.Context, machine, group string, indirect bool) (*MembershipSet, error) {
	machine = directory.NormalizeMachine(machine)
	if machine == "" {
		return nil, argus_err.NewValidationError("machine name must not be empty")
	}
	if group == "" {
		return nil, argus_err.NewValidationError("group name must not be empty")
	}

	logger := otelzap.Ctx(ctx)

	conn, err := r.svc.Open(ctx, machine)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("Failed to release directory connection",
				zap.String("machine", machine), zap.Error(closeErr))
		}
	}()

	root, err := conn.LookupGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	members, err := root.Members(ctx)
	if err != nil {
		return nil, cerr.Wrapf(err, "read members of %q on %s", group, machine)
	}

	set := NewMembershipSet()
	visited := map[directory.PrincipalKey]struct{}{
		groupKey(group):       {},
		groupKey(root.Name()): {},
	}

	var queue []queued
	for _, m := range members {
		if set.Add(m) && indirect && m.Kind == directory.KindGroup && r.maxDepth > 1 {
			queue = append(queue, queued{name: m.Name, depth: 1})
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return set, cerr.Wrapf(err, "expansion of %q on %s interrupted", group, machine)
		}

		item := queue[0]
		queue = queue[1:]

		key := groupKey(item.name)
		if _, done := visited[key]; done {
			continue
		}
		visited[key] = struct{}{}

		nested, err := r.expand(ctx, conn, item.name)
		if err != nil {
			logger.Warn("Nested group expansion failed, skipping its members",
				zap.String("machine", machine),
				zap.String("group", item.name),
				zap.Int("depth", item.depth),
				zap.Error(err))
			continue
		}

		for _, m := range nested {
			if set.Add(m) && m.Kind == directory.KindGroup && item.depth+1 < r.maxDepth {
				queue = append(queue, queued{name: m.Name, depth: item.depth + 1})
			}
		}
	}

	logger.Debug("Resolved group membership",
		zap.String("machine", machine),
		zap.String("group", group),
		zap.Bool("indirect", indirect),
		zap.Int("members", set.Len()))

	return set, nil
}

// expand reads one nested group's member list, releasing the handle
// before returning. Failures are classified as expansion errors so the
// warning they end up in names the failure mode.
func (r *Resolver) expand(ctx context.Context, conn directory.Conn, name string) ([]directory.Principal, error) {
	handle, err := conn.LookupGroup(ctx, name)
	if err != nil {
		return nil, argus_err.NewExpansionError("lookup of nested group "+name+" failed", err)
	}
	defer handle.Close()
	members, err := handle.Members(ctx)
	if err != nil {
		return nil, argus_err.NewExpansionError("member query of nested group "+name+" failed", err)
	}
	return members, nil
}

// Result is one machine's resolution outcome within a batch.
type Result = batch.Result[[]directory.Principal]

// ResolveAll resolves the same group across machines. Machines are
// processed in input order; one machine failing is reported on its
// Result and does not stop the rest.
func (r *Resolver) ResolveAll(ctx context.Context, machines []string, group string, indirect bool, opts ...batch.Option) []Result {
	return batch.Run(ctx, machines, "Resolving group membership", func(ctx context.Context, machine string) ([]directory.Principal, error) {
		set, err := r.Resolve(ctx, machine, group, indirect)
		if err != nil {
			return nil, err
		}
		return set.Sorted(), nil
	}, opts...)
}

func groupKey(name string) directory.PrincipalKey {
	return directory.Principal{Name: name, Kind: directory.KindGroup}.Key()
}
