// pkg/directory/winrm.go
//
// Local SAM lookups. Groups and members are enumerated with the remote
// machine's own Get-LocalGroup* cmdlets and returned as compact JSON.

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/remote"
	cerr "github.com/cockroachdb/errors"
)

// Sentinel causes for mutation outcomes the caller may want to tolerate.
var (
	ErrAlreadyMember = errors.New("principal is already a member")
	ErrNotMember     = errors.New("principal is not a member")
)

const localGroupScript = `$ErrorActionPreference = 'Stop'
Get-LocalGroup -Name %s | Select-Object Name, Description | ConvertTo-Json -Compress`

// Members are joined against local users so descriptions and last-logon
// stamps ride along without a second round trip. LastLogon crosses the
// wire as epoch seconds; zero means never or unknown.
const localMembersScript = `$ErrorActionPreference = 'Stop'
$local = @{}
Get-LocalUser | ForEach-Object { $local[$_.Name] = $_ }
Get-LocalGroupMember -Group %s | ForEach-Object {
  $leaf = ($_.Name -split '\\')[-1]
  $u = $local[$leaf]
  [pscustomobject]@{
    Name        = $_.Name
    ObjectClass = $_.ObjectClass
    Description = if ($u) { [string]$u.Description } else { '' }
    LastLogon   = if ($u -and $u.LastLogon) { [int64](Get-Date $u.LastLogon -UFormat %%s) } else { 0 }
  }
} | ConvertTo-Json -Compress`

type localGroupRecord struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

type localMemberRecord struct {
	Name        string `json:"Name"`
	ObjectClass string `json:"ObjectClass"`
	Description string `json:"Description"`
	LastLogon   int64  `json:"LastLogon"`
}

// lookupLocalGroup resolves a group in the machine's local SAM.
func lookupLocalGroup(ctx context.Context, sess *remote.Session, machine, name string) (GroupHandle, error) {
	out, err := sess.RunScript(ctx, fmt.Sprintf(localGroupScript, psQuote(name)))
	if err != nil {
		if isGroupNotFound(err) {
			return nil, argus_err.NewNotFoundError("group %q not found on %s", name, machine)
		}
		return nil, cerr.Wrapf(err, "look up group %q on %s", name, machine)
	}

	var rec localGroupRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		return nil, cerr.Wrapf(err, "parse group record from %s", machine)
	}

	return &localGroupHandle{sess: sess, machine: machine, name: rec.Name}, nil
}

// localGroupHandle operates on one local group through the owning
// connection's session. Closing it is a bookkeeping no-op (the session
// belongs to the Conn) but callers must still do so on every exit path.
type localGroupHandle struct {
	sess    *remote.Session
	machine string
	name    string
	closed  bool
}

func (h *localGroupHandle) Name() string { return h.name }

func (h *localGroupHandle) Members(ctx context.Context) ([]Principal, error) {
	out, err := h.sess.RunScript(ctx, fmt.Sprintf(localMembersScript, psQuote(h.name)))
	if err != nil {
		if isGroupNotFound(err) {
			return nil, argus_err.NewNotFoundError("group %q not found on %s", h.name, h.machine)
		}
		return nil, cerr.Wrapf(err, "enumerate members of %q on %s", h.name, h.machine)
	}

	records, err := decodeRecords[localMemberRecord](out)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse member records from %s", h.machine)
	}

	members := make([]Principal, 0, len(records))
	for _, rec := range records {
		p := Principal{
			Name:          rec.Name,
			Kind:          ParseKind(rec.ObjectClass),
			Description:   rec.Description,
			SourceMachine: h.machine,
		}
		if rec.LastLogon > 0 && p.Kind == KindUser {
			p.LastLogon = time.Unix(rec.LastLogon, 0).UTC()
		}
		members = append(members, p)
	}
	return members, nil
}

func (h *localGroupHandle) AddMember(ctx context.Context, member string) error {
	script := fmt.Sprintf(`$ErrorActionPreference = 'Stop'
Add-LocalGroupMember -Group %s -Member %s`, psQuote(h.name), psQuote(member))

	if _, err := h.sess.RunScript(ctx, script); err != nil {
		if stderrContains(err, "MemberExistsException") {
			return cerr.Wrapf(ErrAlreadyMember, "%s in %q on %s", member, h.name, h.machine)
		}
		if stderrContains(err, "PrincipalNotFoundException") {
			return argus_err.NewNotFoundError("principal %q not found by %s", member, h.machine)
		}
		return argus_err.NewMutationError(
			fmt.Sprintf("add %s to %q on %s rejected", member, h.name, h.machine), err)
	}
	return nil
}

func (h *localGroupHandle) RemoveMember(ctx context.Context, member string) error {
	script := fmt.Sprintf(`$ErrorActionPreference = 'Stop'
Remove-LocalGroupMember -Group %s -Member %s`, psQuote(h.name), psQuote(member))

	if _, err := h.sess.RunScript(ctx, script); err != nil {
		if stderrContains(err, "MemberNotFoundException") {
			return cerr.Wrapf(ErrNotMember, "%s in %q on %s", member, h.name, h.machine)
		}
		return argus_err.NewMutationError(
			fmt.Sprintf("remove %s from %q on %s rejected", member, h.name, h.machine), err)
	}
	return nil
}

func (h *localGroupHandle) Close() error {
	h.closed = true
	return nil
}

// psQuote single-quotes a value for safe interpolation into PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// decodeRecords tolerates ConvertTo-Json's habit of emitting a bare object
// for single-element results and an array otherwise. Empty output means an
// empty group.
func decodeRecords[T any](out string) ([]T, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	if strings.HasPrefix(out, "[") {
		var records []T
		if err := json.Unmarshal([]byte(out), &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var record T
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		return nil, err
	}
	return []T{record}, nil
}

func isGroupNotFound(err error) bool {
	return stderrContains(err, "GroupNotFoundException")
}

// stderrContains inspects a remote nonzero-exit error for a marker string.
func stderrContains(err error, marker string) bool {
	var rerr *remote.RemoteError
	return errors.As(err, &rerr) && strings.Contains(rerr.Stderr, marker)
}
