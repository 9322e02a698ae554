// pkg/output/render_test.go

package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalsTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Principals(&buf, []directory.Principal{
		{Name: `CORP\jdoe`, Kind: directory.KindUser, Description: "Jane Doe", SourceMachine: "WS-01"},
		{Name: `CORP\Help Desk`, Kind: directory.KindGroup, SourceMachine: "WS-01"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, `CORP\jdoe`)
	assert.Contains(t, out, "User")
	assert.Contains(t, out, "Group")
	assert.Contains(t, out, "never", "zero last logon renders as never")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4, "header, underline, two rows")
}

func TestSpecsDetailTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := SpecsDetail(&buf, inventory.Specs{
		Machine:           "WS-042",
		Hostname:          "WS-042",
		Manufacturer:      "Dell Inc.",
		Model:             "OptiPlex 7090",
		CPU:               "i7-11700",
		Cores:             8,
		LogicalProcessors: 16,
		MemoryBytes:       32 * 1024 * 1024 * 1024,
		OSName:            "Microsoft Windows 11 Pro",
		OSVersion:         "10.0.22631",
		OSBuild:           "22631",
		Supported:         true,
		Disks: []inventory.Disk{
			{DeviceID: "C:", SizeBytes: 512 * 1024 * 1024 * 1024, FreeBytes: 256 * 1024 * 1024 * 1024},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "32 GiB")
	assert.Contains(t, out, "Disk C:")
	assert.Contains(t, out, "256 GiB free of 512 GiB")
	assert.Contains(t, out, "8 cores, 16 logical")
	assert.Contains(t, out, "yes")
}

func TestSpecsRowsMarksUnsupported(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := SpecsRows(&buf, []inventory.Specs{
		{Machine: "WS-01", CPU: "i7", Cores: 8, MemoryBytes: 16 * 1024 * 1024 * 1024, OSName: "Windows 11 Pro", Supported: true},
		{Machine: "OLD-01", CPU: "Core2", Cores: 4, MemoryBytes: 8 * 1024 * 1024 * 1024, OSName: "Windows Server 2012 R2", Supported: false},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "MACHINE")
	assert.Contains(t, out, "16 GiB")
	assert.Contains(t, out, "NO (below baseline)")
}

func TestMutationsTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Mutations(&buf, []batch.Result[string]{
		{Machine: "WS-01", Value: "added"},
		{Machine: "WS-02", Err: errors.New("winrm: connection refused")},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "WS-01")
	assert.Contains(t, out, "added")
	assert.Contains(t, out, "FAILED: winrm: connection refused")
}

func TestMutationReport(t *testing.T) {
	t.Parallel()

	rows := MutationReport([]batch.Result[string]{
		{Machine: "WS-01", Value: "added"},
		{Machine: "WS-02", Err: errors.New("unreachable")},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, MachineStatus{Machine: "WS-01", Status: "added"}, rows[0])
	assert.Equal(t, MachineStatus{Machine: "WS-02", Error: "unreachable"}, rows[1],
		"a failed machine reports the error, not a status")
}

func TestBootRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := BootRows(&buf, []inventory.BootInfo{
		{Machine: "WS-01", LastBoot: time.Date(2026, 8, 20, 6, 30, 0, 0, time.UTC), Uptime: 50*time.Hour + 12*time.Minute},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2026-08-20 06:30:00 UTC")
	assert.Contains(t, out, "2d 2h 12m")
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{-time.Hour, "0m"},
		{12 * time.Minute, "12m"},
		{3*time.Hour + 4*time.Minute, "3h 4m"},
		{26*time.Hour + 5*time.Minute, "1d 2h 5m"},
		{240 * time.Hour, "10d 0h 0m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.d), "FormatUptime(%v)", tt.d)
	}
}
