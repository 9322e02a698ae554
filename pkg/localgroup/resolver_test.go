// pkg/localgroup/resolver_test.go

package localgroup

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ps []directory.Principal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestResolveDirectOnly(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators",
		user(`WS-01\Administrator`),
		user(`CORP\jdoe`),
		group(`CORP\Help Desk`),
	)
	conn.setGroup(`CORP\Help Desk`, user(`CORP\asmith`))

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administrators", false)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{`WS-01\Administrator`, `CORP\jdoe`, `CORP\Help Desk`},
		names(set.Principals()),
		"direct mode must list nested groups without expanding them")
	assert.Equal(t, 1, conn.lookupCounts["administrators"])
	assert.Zero(t, conn.lookupCounts[`corp\help desk`], "no nested lookups in direct mode")
}

func TestResolveDirectDeduplicates(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Remote Desktop Users",
		user(`CORP\jdoe`),
		user(`corp\JDOE`),
		user(`CORP\jdoe`),
	)

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Remote Desktop Users", false)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len(), "case variants of one account must collapse")
}

func TestResolveIndirectExpands(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators",
		user(`WS-01\Administrator`),
		group(`CORP\Workstation Admins`),
	)
	conn.setGroup(`CORP\Workstation Admins`,
		user(`CORP\jdoe`),
		group(`CORP\Help Desk`),
	)
	conn.setGroup(`CORP\Help Desk`,
		user(`CORP\asmith`),
		user(`CORP\jdoe`), // reachable twice, must appear once
	)

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administrators", true)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		`WS-01\Administrator`,
		`CORP\Workstation Admins`,
		`CORP\jdoe`,
		`CORP\Help Desk`,
		`CORP\asmith`,
	}, names(set.Principals()))
}

func TestResolveCycleTerminates(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Operators",
		group(`CORP\Ring A`),
		user(`CORP\jdoe`),
	)
	conn.setGroup(`CORP\Ring A`, group(`CORP\Ring B`))
	// Ring B closes the loop and also points back at the root group.
	conn.setGroup(`CORP\Ring B`, group(`CORP\Ring A`), group(`Operators`), user(`CORP\asmith`))

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Operators", true)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		`CORP\Ring A`, `CORP\jdoe`, `CORP\Ring B`, `Operators`, `CORP\asmith`,
	}, names(set.Principals()))

	assert.Equal(t, 1, conn.lookupCounts[`corp\ring a`], "cycle must not re-expand a visited group")
	assert.Equal(t, 1, conn.lookupCounts[`corp\ring b`])
	assert.Equal(t, 1, conn.lookupCounts["operators"], "root group must never be re-expanded")
}

func TestResolveDepthCap(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Root", user(`CORP\u1`), group(`CORP\g1`))
	conn.setGroup(`CORP\g1`, user(`CORP\u2`), group(`CORP\g2`))
	conn.setGroup(`CORP\g2`, user(`CORP\u3`), group(`CORP\g3`))
	conn.setGroup(`CORP\g3`, user(`CORP\u4`), group(`CORP\g4`))
	conn.setGroup(`CORP\g4`, user(`CORP\u5`), group(`CORP\g5`))
	conn.setGroup(`CORP\g5`, user(`CORP\u6`), group(`CORP\g6`))

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Root", true)
	require.NoError(t, err)

	got := names(set.Principals())
	assert.Contains(t, got, `CORP\u5`, "level five is within the default cap")
	assert.Contains(t, got, `CORP\g5`, "the level-five group itself is a member")
	assert.NotContains(t, got, `CORP\u6`, "level six exceeds the default cap")
	assert.Zero(t, conn.lookupCounts[`corp\g5`], "groups at the cap are listed but not expanded")
}

func TestResolveWithMaxDepth(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Root", user(`CORP\u1`), group(`CORP\g1`))
	conn.setGroup(`CORP\g1`, user(`CORP\u2`), group(`CORP\g2`))
	conn.setGroup(`CORP\g2`, user(`CORP\u3`))

	set, err := NewResolver(svc, WithMaxDepth(2)).Resolve(context.Background(), "WS-01", "Root", true)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{`CORP\u1`, `CORP\g1`, `CORP\u2`, `CORP\g2`},
		names(set.Principals()))

	set, err = NewResolver(svc, WithMaxDepth(1)).Resolve(context.Background(), "WS-01", "Root", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{`CORP\u1`, `CORP\g1`}, names(set.Principals()),
		"depth one means direct members even in indirect mode")
}

func TestResolveExpansionFailureReturnsPartial(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators",
		user(`WS-01\Administrator`),
		group(`CORP\Broken`),
		group(`CORP\Help Desk`),
	)
	conn.setGroup(`CORP\Help Desk`, user(`CORP\asmith`))
	conn.lookupErr[`corp\broken`] = argus_err.NewExpansionError("directory unavailable", cerr.New("timeout"))

	set, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administrators", true)
	require.NoError(t, err, "expansion failure must not fail the operation")

	got := names(set.Principals())
	assert.Contains(t, got, `CORP\Broken`, "the unexpandable group still appears as a member")
	assert.Contains(t, got, `CORP\asmith`, "other branches still expand")
}

func TestResolveIsIdempotent(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators",
		user(`WS-01\Administrator`),
		group(`CORP\Workstation Admins`),
	)
	conn.setGroup(`CORP\Workstation Admins`, user(`CORP\jdoe`))

	r := NewResolver(svc)
	first, err := r.Resolve(context.Background(), "WS-01", "Administrators", true)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "WS-01", "Administrators", true)
	require.NoError(t, err)

	assert.Equal(t, names(first.Sorted()), names(second.Sorted()),
		"unchanged directory state resolves to the same set")
}

func TestResolveValidation(t *testing.T) {
	svc := newFakeService()
	r := NewResolver(svc)

	_, err := r.Resolve(context.Background(), "", "Administrators", false)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))

	_, err = r.Resolve(context.Background(), "   $", "Administrators", false)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation),
		"a bare account suffix normalizes to nothing")

	_, err = r.Resolve(context.Background(), "WS-01", "", false)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryValidation))

	assert.Empty(t, svc.opened, "validation failures must not open connections")
}

func TestResolveNormalizesMachineName(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators", user(`WS-01\Administrator`))

	_, err := NewResolver(svc).Resolve(context.Background(), "  WS-01$ ", "Administrators", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"WS-01"}, svc.opened)
}

func TestResolveGroupNotFound(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators", user(`WS-01\Administrator`))

	_, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administraters", false)
	require.Error(t, err)
	assert.True(t, argus_err.IsCategory(err, argus_err.CategoryNotFound))
	assert.True(t, conn.closed, "connection must be released on lookup failure")
}

func TestResolveRootMembersFailure(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators", user(`WS-01\Administrator`))
	conn.membersErr["administrators"] = cerr.New("winrm transport reset")

	_, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administrators", false)
	require.Error(t, err, "direct member query failure fails the operation")
	assert.True(t, conn.closed)
	assert.Empty(t, conn.leakedHandles())
}

func TestResolveReleasesAllHandles(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators", group(`CORP\a`), group(`CORP\b`))
	conn.setGroup(`CORP\a`, user(`CORP\u1`))
	conn.setGroup(`CORP\b`, group(`CORP\a`), user(`CORP\u2`))

	_, err := NewResolver(svc).Resolve(context.Background(), "WS-01", "Administrators", true)
	require.NoError(t, err)

	assert.True(t, conn.closed, "connection released")
	assert.Empty(t, conn.leakedHandles(), "every group handle released")
}

func TestResolveCancelledContext(t *testing.T) {
	svc := newFakeService()
	conn := svc.machine("WS-01")
	conn.setGroup("Administrators", group(`CORP\a`))
	conn.setGroup(`CORP\a`, user(`CORP\u1`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := NewResolver(svc).Resolve(ctx, "WS-01", "Administrators", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, set, "members gathered before cancellation are returned")
	assert.True(t, conn.closed, "cancellation still releases the connection")
	assert.Empty(t, conn.leakedHandles())
}

func TestResolveAllContinuesPastFailures(t *testing.T) {
	svc := newFakeService()
	ok := svc.machine("WS-01")
	ok.setGroup("Administrators", user(`CORP\jdoe`), user(`CORP\asmith`))
	svc.openErr["WS-02"] = argus_err.NewConnectivityError("failed to reach WS-02", cerr.New("timeout"))
	ok2 := svc.machine("WS-03")
	ok2.setGroup("Administrators", user(`CORP\jdoe`))

	r := NewResolver(svc)
	results := r.ResolveAll(context.Background(), []string{"WS-01", "WS-02", "WS-03"}, "Administrators", false)

	require.Len(t, results, 3)
	assert.Equal(t, "WS-01", results[0].Machine)
	assert.Equal(t, []string{`CORP\asmith`, `CORP\jdoe`}, names(results[0].Value), "members sorted by name")
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	assert.NoError(t, batch.Outcome(results, "resolve"), "partial success is not a command failure")
}

func TestResolveAllTotalFailure(t *testing.T) {
	svc := newFakeService()
	svc.openErr["WS-01"] = argus_err.NewConnectivityError("unreachable", cerr.New("timeout"))
	svc.openErr["WS-02"] = argus_err.NewConnectivityError("unreachable", cerr.New("timeout"))

	results := NewResolver(svc).ResolveAll(context.Background(), []string{"WS-01", "WS-02"}, "Administrators", false)

	err := batch.Outcome(results, "resolve")
	require.Error(t, err)
	assert.True(t, argus_err.IsExpectedUserError(err))
	assert.Equal(t, 0, argus_err.GetExitCode(err))
}
