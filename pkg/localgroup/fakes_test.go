// pkg/localgroup/fakes_test.go
//
// In-memory directory fakes shared by the resolver and mutator tests.

package localgroup

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	cerr "github.com/cockroachdb/errors"
)

func user(name string) directory.Principal {
	return directory.Principal{Name: name, Kind: directory.KindUser}
}

func group(name string) directory.Principal {
	return directory.Principal{Name: name, Kind: directory.KindGroup}
}

// fakeService hands out one fakeConn per machine.
type fakeService struct {
	conns   map[string]*fakeConn
	openErr map[string]error
	opened  []string
}

func newFakeService() *fakeService {
	return &fakeService{conns: make(map[string]*fakeConn), openErr: make(map[string]error)}
}

// machine registers a connectable machine and returns its conn for
// group wiring.
func (s *fakeService) machine(name string) *fakeConn {
	c := &fakeConn{
		machine:      name,
		members:      make(map[string][]directory.Principal),
		lookupErr:    make(map[string]error),
		membersErr:   make(map[string]error),
		addErr:       make(map[string]error),
		removeErr:    make(map[string]error),
		lookupCounts: make(map[string]int),
	}
	s.conns[name] = c
	return c
}

func (s *fakeService) Open(_ context.Context, machine string) (directory.Conn, error) {
	s.opened = append(s.opened, machine)
	if err := s.openErr[machine]; err != nil {
		return nil, err
	}
	c, ok := s.conns[machine]
	if !ok {
		return nil, argus_err.NewConnectivityError("failed to reach "+machine, cerr.New("no route"))
	}
	return c, nil
}

// fakeConn holds group member lists keyed by lowercased group name.
type fakeConn struct {
	machine      string
	members      map[string][]directory.Principal
	lookupErr    map[string]error
	membersErr   map[string]error
	addErr       map[string]error
	removeErr    map[string]error
	lookupCounts map[string]int
	handles      []*fakeGroup
	closed       bool
}

// setGroup defines a group and its direct members.
func (c *fakeConn) setGroup(name string, members ...directory.Principal) {
	c.members[strings.ToLower(name)] = members
}

func (c *fakeConn) Machine() string { return c.machine }

func (c *fakeConn) LookupGroup(_ context.Context, name string) (directory.GroupHandle, error) {
	key := strings.ToLower(name)
	c.lookupCounts[key]++
	if err := c.lookupErr[key]; err != nil {
		return nil, err
	}
	members, ok := c.members[key]
	if !ok {
		return nil, argus_err.NewNotFoundError("group %q not found on %s", name, c.machine)
	}
	h := &fakeGroup{
		conn:       c,
		name:       name,
		members:    members,
		membersErr: c.membersErr[key],
		addErr:     c.addErr[key],
		removeErr:  c.removeErr[key],
	}
	c.handles = append(c.handles, h)
	return h, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// leakedHandles returns handles never closed.
func (c *fakeConn) leakedHandles() []string {
	var leaked []string
	for _, h := range c.handles {
		if !h.closed {
			leaked = append(leaked, h.name)
		}
	}
	return leaked
}

type fakeGroup struct {
	conn       *fakeConn
	name       string
	members    []directory.Principal
	membersErr error
	addErr     error
	removeErr  error
	added      []string
	removed    []string
	closed     bool
}

func (g *fakeGroup) Name() string { return g.name }

func (g *fakeGroup) Members(context.Context) ([]directory.Principal, error) {
	if g.membersErr != nil {
		return nil, g.membersErr
	}
	return g.members, nil
}

func (g *fakeGroup) AddMember(_ context.Context, member string) error {
	if g.addErr != nil {
		return g.addErr
	}
	g.added = append(g.added, member)
	return nil
}

func (g *fakeGroup) RemoveMember(_ context.Context, member string) error {
	if g.removeErr != nil {
		return g.removeErr
	}
	g.removed = append(g.removed, member)
	return nil
}

func (g *fakeGroup) Close() error {
	g.closed = true
	return nil
}

// fakeUserFinder returns a canned lookup result.
type fakeUserFinder struct {
	user  directory.Principal
	err   error
	calls int
}

func (f *fakeUserFinder) FindUser(context.Context, string, string) (directory.Principal, error) {
	f.calls++
	if f.err != nil {
		return directory.Principal{}, f.err
	}
	return f.user, nil
}
