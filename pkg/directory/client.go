// pkg/directory/client.go

package directory

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/remote"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// GroupHandle is a reference to a resolved group. Handles are scoped to a
// single resolution call: release with Close on every exit path, never
// cache one across calls.
type GroupHandle interface {
	// Name returns the group name as the directory reports it.
	Name() string
	// Members enumerates the group's direct members.
	Members(ctx context.Context) ([]Principal, error)
	// AddMember adds a principal by qualified name (DOMAIN\sam).
	AddMember(ctx context.Context, member string) error
	// RemoveMember removes a principal by qualified name.
	RemoveMember(ctx context.Context, member string) error
	Close() error
}

// Conn is an open directory context for one machine.
type Conn interface {
	Machine() string
	// LookupGroup resolves a named group. Local names hit the machine's
	// SAM; domain-qualified names hit the domain directory.
	LookupGroup(ctx context.Context, name string) (GroupHandle, error)
	Close() error
}

// Service opens directory contexts. The group resolver depends only on
// this contract.
type Service interface {
	Open(ctx context.Context, machine string) (Conn, error)
}

// UserFinder looks a user principal up in a domain. Mutations need it to
// verify the identity exists before touching the remote group.
type UserFinder interface {
	FindUser(ctx context.Context, domain, identity string) (Principal, error)
}

// Client is the production Service: local groups through a WinRM session
// on the target machine, domain objects through LDAP against the
// configured domain controller.
type Client struct {
	cfg Config
}

var (
	_ Service    = (*Client)(nil)
	_ UserFinder = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Open establishes the WinRM context for machine. The domain side is
// dialed lazily, only when a lookup actually crosses into the domain.
func (c *Client) Open(ctx context.Context, machine string) (Conn, error) {
	machine = NormalizeMachine(machine)
	if machine == "" {
		return nil, argus_err.NewValidationError("machine name must not be empty")
	}
	if err := c.cfg.RequireRemote(); err != nil {
		return nil, err
	}

	sess, err := remote.Dial(ctx, c.cfg.WinRM(), machine)
	if err != nil {
		return nil, argus_err.NewConnectivityError("cannot open directory context on "+machine, err)
	}

	return &machineConn{machine: machine, sess: sess, cfg: c.cfg}, nil
}

// FindUser resolves identity (sam, DOMAIN\sam, or UPN) in the given
// domain; empty domain falls back to the configured one.
func (c *Client) FindUser(ctx context.Context, domain, identity string) (Principal, error) {
	if domain == "" {
		domain = c.cfg.Domain
	}
	if strings.TrimSpace(identity) == "" {
		return Principal{}, argus_err.NewValidationError("identity must not be empty")
	}

	dc, err := dialDomain(ctx, c.cfg)
	if err != nil {
		return Principal{}, err
	}
	defer dc.Close()

	return dc.findUser(ctx, domain, identity)
}

// machineConn is the per-machine directory context. It owns one WinRM
// session and at most one lazily dialed LDAP connection; both are released
// by Close.
type machineConn struct {
	machine string
	sess    *remote.Session
	cfg     Config
	domain  *domainConn
}

func (mc *machineConn) Machine() string { return mc.machine }

func (mc *machineConn) LookupGroup(ctx context.Context, name string) (GroupHandle, error) {
	authority, leaf := SplitQualified(name)

	if mc.isDomainAuthority(authority) {
		dc, err := mc.domainDirectory(ctx)
		if err != nil {
			return nil, err
		}
		return dc.lookupGroup(ctx, mc.cfg.Domain, leaf, mc.machine)
	}

	return lookupLocalGroup(ctx, mc.sess, mc.machine, leaf)
}

// isDomainAuthority decides lookup routing: names qualified with anything
// other than the machine itself (or the BUILTIN authority) belong to the
// domain directory.
func (mc *machineConn) isDomainAuthority(authority string) bool {
	switch {
	case authority == "":
		return false
	case strings.EqualFold(authority, mc.machine):
		return false
	case strings.EqualFold(authority, "BUILTIN"):
		return false
	case strings.EqualFold(authority, "NT AUTHORITY"):
		return false
	default:
		return true
	}
}

func (mc *machineConn) domainDirectory(ctx context.Context) (*domainConn, error) {
	if mc.domain != nil {
		return mc.domain, nil
	}
	dc, err := dialDomain(ctx, mc.cfg)
	if err != nil {
		return nil, err
	}
	mc.domain = dc
	return dc, nil
}

func (mc *machineConn) Close() error {
	if mc.domain != nil {
		if err := mc.domain.Close(); err != nil {
			otelzap.L().Warn("Failed to close domain directory connection",
				zap.String("machine", mc.machine), zap.Error(err))
		}
		mc.domain = nil
	}
	if mc.sess == nil {
		return nil
	}
	err := mc.sess.Close()
	mc.sess = nil
	if err != nil {
		return cerr.Wrapf(err, "close directory context on %s", mc.machine)
	}
	return nil
}
