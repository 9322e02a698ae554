// pkg/argus_io/machines.go

package argus_io

import (
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
)

// ExpandMachineArgs flattens --machines flag values into a clean target list.
// Each value may hold several comma-separated names, and a value starting
// with "@" names a file with one machine per line. Blank lines and lines
// starting with "#" are skipped. Duplicates are dropped case-insensitively,
// first occurrence wins, order is otherwise preserved.
func ExpandMachineArgs(values []string) ([]string, error) {
	seen := make(map[string]struct{})
	machines := make([]string, 0, len(values))

	appendName := func(name string) {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		machines = append(machines, name)
	}

	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "@") {
			names, err := readMachineFile(strings.TrimPrefix(value, "@"))
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				appendName(name)
			}
			continue
		}
		for _, name := range MachineList(value) {
			appendName(name)
		}
	}

	if len(machines) == 0 {
		return nil, argus_err.NewValidationError("no target machines given: pass --machines NAME[,NAME...] or --machines @file")
	}
	return machines, nil
}

func readMachineFile(path string) ([]string, error) {
	if path == "" {
		return nil, argus_err.NewValidationError("machine list file path must not be empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerr.Wrapf(err, "read machine list %s", path)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, MachineList(line)...)
	}
	return names, nil
}
