// pkg/localgroup/mutate.go

package localgroup

import (
	"context"
	"errors"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Statuses reported per machine by mutation batches.
const (
	StatusAdded         = "added"
	StatusAlreadyMember = "already a member"
	StatusRemoved       = "removed"
	StatusNotMember     = "was not a member"
)

// Mutator adds and removes group members. The target principal is
// verified against the domain before any add, so typos fail before the
// first machine is touched.
type Mutator struct {
	svc   directory.Service
	users directory.UserFinder
}

func NewMutator(svc directory.Service, users directory.UserFinder) *Mutator {
	return &Mutator{svc: svc, users: users}
}

// AddMember puts identity into group on machine. Adding an existing
// member is a no-op reported as StatusAlreadyMember.
func (m *Mutator) AddMember(ctx context.Context, machine, identity, group, domain string) (string, error) {
	machine = directory.NormalizeMachine(machine)
	if err := validateMutation(machine, identity, group); err != nil {
		return "", err
	}

	user, err := m.users.FindUser(ctx, domain, identity)
	if err != nil {
		return "", err
	}

	return m.withGroup(ctx, machine, group, func(handle directory.GroupHandle) (string, error) {
		if err := handle.AddMember(ctx, user.Name); err != nil {
			if errors.Is(err, directory.ErrAlreadyMember) {
				otelzap.Ctx(ctx).Info("Principal is already a member, nothing to do",
					zap.String("machine", machine),
					zap.String("group", group),
					zap.String("member", user.Name))
				return StatusAlreadyMember, nil
			}
			return "", err
		}
		return StatusAdded, nil
	})
}

// RemoveMember takes identity out of group on machine. Removing an
// absent member is a no-op reported as StatusNotMember. No domain
// lookup happens here: accounts already deleted from the directory
// must still be removable from groups.
func (m *Mutator) RemoveMember(ctx context.Context, machine, identity, group string) (string, error) {
	machine = directory.NormalizeMachine(machine)
	if err := validateMutation(machine, identity, group); err != nil {
		return "", err
	}

	return m.withGroup(ctx, machine, group, func(handle directory.GroupHandle) (string, error) {
		if err := handle.RemoveMember(ctx, identity); err != nil {
			if errors.Is(err, directory.ErrNotMember) {
				otelzap.Ctx(ctx).Info("Principal is not a member, nothing to do",
					zap.String("machine", machine),
					zap.String("group", group),
					zap.String("member", identity))
				return StatusNotMember, nil
			}
			return "", err
		}
		return StatusRemoved, nil
	})
}

// AddMemberAll applies AddMember across machines with batch warning
// semantics.
func (m *Mutator) AddMemberAll(ctx context.Context, machines []string, identity, group, domain string, opts ...batch.Option) []batch.Result[string] {
	return batch.Run(ctx, machines, "Adding group member", func(ctx context.Context, machine string) (string, error) {
		return m.AddMember(ctx, machine, identity, group, domain)
	}, opts...)
}

// RemoveMemberAll applies RemoveMember across machines.
func (m *Mutator) RemoveMemberAll(ctx context.Context, machines []string, identity, group string, opts ...batch.Option) []batch.Result[string] {
	return batch.Run(ctx, machines, "Removing group member", func(ctx context.Context, machine string) (string, error) {
		return m.RemoveMember(ctx, machine, identity, group)
	}, opts...)
}

// withGroup opens machine, looks up group, runs fn, and releases both
// on every path.
func (m *Mutator) withGroup(ctx context.Context, machine, group string, fn func(directory.GroupHandle) (string, error)) (status string, err error) {
	conn, err := m.svc.Open(ctx, machine)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			otelzap.Ctx(ctx).Warn("Failed to release directory connection",
				zap.String("machine", machine), zap.Error(closeErr))
		}
	}()

	handle, err := conn.LookupGroup(ctx, group)
	if err != nil {
		return "", err
	}
	defer handle.Close()

	return fn(handle)
}

func validateMutation(machine, identity, group string) error {
	switch {
	case machine == "":
		return argus_err.NewValidationError("machine name must not be empty")
	case identity == "":
		return argus_err.NewValidationError("member identity must not be empty")
	case group == "":
		return argus_err.NewValidationError("group name must not be empty")
	}
	return nil
}
