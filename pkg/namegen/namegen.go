// pkg/namegen/namegen.go

// Package namegen produces computer-name sequences for provisioning,
// e.g. LAB-01 through LAB-30 minus machines that already exist.
package namegen

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
)

// Sequence renders prefix+number for every number in [start, end],
// skipping excluded values. With pad set, numbers are zero-padded to two
// digits, so sorting stays lexicographic through 99.
func Sequence(prefix string, start, end int, exclude []int, pad bool) ([]string, error) {
	if prefix == "" {
		return nil, argus_err.NewValidationError("name prefix must not be empty")
	}
	if start < 0 {
		return nil, argus_err.NewValidationError("sequence start must not be negative, got %d", start)
	}
	if end < start {
		return nil, argus_err.NewValidationError("sequence end %d is before start %d", end, start)
	}

	skip := make(map[int]struct{}, len(exclude))
	for _, n := range exclude {
		skip[n] = struct{}{}
	}

	format := "%s%d"
	if pad {
		format = "%s%02d"
	}

	names := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		if _, excluded := skip[n]; excluded {
			continue
		}
		names = append(names, fmt.Sprintf(format, prefix, n))
	}
	return names, nil
}
