// pkg/localgroup/membership.go

package localgroup

import (
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
)

// MembershipSet accumulates principals during resolution, deduplicated by
// case-insensitive name plus kind. Insertion order is preserved; Sorted
// gives the stable order the CLI renders.
type MembershipSet struct {
	seen  map[directory.PrincipalKey]struct{}
	items []directory.Principal
}

func NewMembershipSet() *MembershipSet {
	return &MembershipSet{seen: make(map[directory.PrincipalKey]struct{})}
}

// Add inserts p unless an equivalent principal is already present.
// The first sighting wins; later duplicates (the same account reached
// through different nesting paths) are dropped.
func (s *MembershipSet) Add(p directory.Principal) bool {
	key := p.Key()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, p)
	return true
}

// Contains reports whether an equivalent principal was added.
func (s *MembershipSet) Contains(p directory.Principal) bool {
	_, ok := s.seen[p.Key()]
	return ok
}

func (s *MembershipSet) Len() int {
	return len(s.items)
}

// Principals returns the members in insertion order.
func (s *MembershipSet) Principals() []directory.Principal {
	out := make([]directory.Principal, len(s.items))
	copy(out, s.items)
	return out
}

// Sorted returns the members ordered by name, case-insensitively, with
// kind as the tiebreak.
func (s *MembershipSet) Sorted() []directory.Principal {
	out := s.Principals()
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
