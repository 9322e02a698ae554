/* pkg/directory/types.go */

package directory

import (
	"strings"
	"time"
)

// Kind is the classification a directory reports for a principal. It
// decides whether indirect resolution attempts further expansion.
type Kind int

const (
	KindUnknown Kind = iota
	KindUser
	KindGroup
	KindComputer
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "User"
	case KindGroup:
		return "Group"
	case KindComputer:
		return "Computer"
	default:
		return "Unknown"
	}
}

// MarshalText lets Kind render as its name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a directory-reported object class to a Kind. Both the
// local SAM ("User", "Group") and AD ("user", "group", "computer",
// "person") spellings are accepted. AD computer objects also carry the
// user class, so computer wins when both appear.
func ParseKind(classes ...string) Kind {
	kind := KindUnknown
	for _, c := range classes {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "computer":
			return KindComputer
		case "group":
			kind = KindGroup
		case "user", "person", "inetorgperson":
			if kind == KindUnknown {
				kind = KindUser
			}
		}
	}
	return kind
}

// Principal is a directory entry returned from a group lookup.
type Principal struct {
	Name          string    `json:"name"`
	Kind          Kind      `json:"kind"`
	Description   string    `json:"description,omitempty"`
	LastLogon     time.Time `json:"last_logon,omitzero"`
	SourceMachine string    `json:"source_machine,omitempty"`
}

// PrincipalKey identifies a principal for deduplication. Windows account
// names are case-insensitive, so the key lowercases the name.
type PrincipalKey struct {
	Name string
	Kind Kind
}

// Key returns the deduplication key for this principal.
func (p Principal) Key() PrincipalKey {
	return PrincipalKey{Name: strings.ToLower(p.Name), Kind: p.Kind}
}

// NormalizeMachine trims whitespace and the trailing "$" marker that
// computer account names carry when piped from directory-object results.
func NormalizeMachine(machine string) string {
	return strings.TrimSuffix(strings.TrimSpace(machine), "$")
}

// SplitQualified splits "AUTHORITY\name" into its parts. The authority is
// empty when the name is unqualified.
func SplitQualified(name string) (authority, leaf string) {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
