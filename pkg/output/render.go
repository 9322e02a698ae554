// pkg/output/render.go
//
// Domain renderers. Each takes a writer so tests can capture output;
// the CLI passes os.Stdout.

package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/inventory"
	"github.com/dustin/go-humanize"
)

// Principals renders a member list as a table.
func Principals(w io.Writer, members []directory.Principal) error {
	t := NewTableTo(w, "NAME", "TYPE", "DESCRIPTION", "LAST LOGON", "SOURCE")
	for _, p := range members {
		t.Row(p.Name, p.Kind.String(), p.Description, lastLogon(p.LastLogon), p.SourceMachine)
	}
	return t.Render()
}

// SpecsRows renders one line per machine, for multi-machine inventory.
func SpecsRows(w io.Writer, specs []inventory.Specs) error {
	t := NewTableTo(w, "MACHINE", "CPU", "CORES", "MEMORY", "OS", "SUPPORTED")
	for _, s := range specs {
		t.Row(s.Machine, s.CPU, strconv.Itoa(s.Cores), humanize.IBytes(s.MemoryBytes),
			s.OSName, supportedMark(s.Supported))
	}
	return t.Render()
}

// SpecsDetail renders one machine's full inventory, disks included.
func SpecsDetail(w io.Writer, s inventory.Specs) error {
	t := NewTableTo(w)
	t.Row("Machine:", s.Machine)
	t.Row("Hostname:", s.Hostname)
	if s.Manufacturer != "" || s.Model != "" {
		t.Row("Hardware:", fmt.Sprintf("%s %s", s.Manufacturer, s.Model))
	}
	t.Row("CPU:", fmt.Sprintf("%s (%d cores, %d logical)", s.CPU, s.Cores, s.LogicalProcessors))
	t.Row("Memory:", humanize.IBytes(s.MemoryBytes))
	t.Row("OS:", fmt.Sprintf("%s (%s, build %s)", s.OSName, s.OSVersion, s.OSBuild))
	t.Row("Supported:", supportedMark(s.Supported))
	for _, d := range s.Disks {
		t.Row("Disk "+d.DeviceID, fmt.Sprintf("%s free of %s",
			humanize.IBytes(d.FreeBytes), humanize.IBytes(d.SizeBytes)))
	}
	return t.Render()
}

// BootRows renders last boot and uptime per machine.
func BootRows(w io.Writer, infos []inventory.BootInfo) error {
	t := NewTableTo(w, "MACHINE", "LAST BOOT", "UPTIME")
	for _, b := range infos {
		t.Row(b.Machine, b.LastBoot.Format("2006-01-02 15:04:05 MST"), FormatUptime(b.Uptime))
	}
	return t.Render()
}

// Mutations renders per-machine outcomes from add/remove batches.
func Mutations(w io.Writer, results []batch.Result[string]) error {
	t := NewTableTo(w, "MACHINE", "RESULT")
	for _, r := range results {
		if r.Err != nil {
			t.Row(r.Machine, "FAILED: "+r.Err.Error())
			continue
		}
		t.Row(r.Machine, r.Value)
	}
	return t.Render()
}

// MachineStatus is one machine's outcome in JSON reports.
type MachineStatus struct {
	Machine string `json:"machine"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MutationReport shapes batch outcomes for JSON output.
func MutationReport(results []batch.Result[string]) []MachineStatus {
	rows := make([]MachineStatus, 0, len(results))
	for _, r := range results {
		row := MachineStatus{Machine: r.Machine, Status: r.Value}
		if r.Err != nil {
			row.Error = r.Err.Error()
			row.Status = ""
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatUptime renders a duration as days, hours, and minutes.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func lastLogon(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func supportedMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "NO (below baseline)"
}
