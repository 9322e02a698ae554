// pkg/inventory/wmi.go
//
// CIM queries and the JSON shapes they come back in. ConvertTo-Json
// serializes CIM datetimes as "/Date(ms)/"; parseWMIDate undoes that.

package inventory

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"
)

// minSupportedBuild is Windows Server 2019 / Windows 10 1809. Anything
// older has left mainstream support and is flagged in reports.
const minSupportedBuild = "10.0.17763"

// Nested arrays are wrapped in @() so single-element results stay arrays
// in the JSON.
const specsScript = `$ErrorActionPreference = 'Stop'
$cs = Get-CimInstance Win32_ComputerSystem |
  Select-Object Name, Manufacturer, Model, NumberOfLogicalProcessors, TotalPhysicalMemory
$cpu = @(Get-CimInstance Win32_Processor | Select-Object Name, NumberOfCores, NumberOfLogicalProcessors)
$os = Get-CimInstance Win32_OperatingSystem | Select-Object Caption, Version, BuildNumber
$disks = @(Get-CimInstance Win32_LogicalDisk -Filter 'DriveType=3' | Select-Object DeviceID, Size, FreeSpace)
[pscustomobject]@{
  ComputerSystem  = $cs
  Processors      = $cpu
  OperatingSystem = $os
  Disks           = $disks
} | ConvertTo-Json -Depth 4 -Compress`

const bootScript = `$ErrorActionPreference = 'Stop'
Get-CimInstance Win32_OperatingSystem |
  Select-Object LastBootUpTime, LocalDateTime | ConvertTo-Json -Compress`

type specsReport struct {
	ComputerSystem struct {
		Name                      string `json:"Name"`
		Manufacturer              string `json:"Manufacturer"`
		Model                     string `json:"Model"`
		NumberOfLogicalProcessors int    `json:"NumberOfLogicalProcessors"`
		TotalPhysicalMemory       uint64 `json:"TotalPhysicalMemory"`
	} `json:"ComputerSystem"`
	Processors []struct {
		Name                      string `json:"Name"`
		NumberOfCores             int    `json:"NumberOfCores"`
		NumberOfLogicalProcessors int    `json:"NumberOfLogicalProcessors"`
	} `json:"Processors"`
	OperatingSystem struct {
		Caption     string `json:"Caption"`
		Version     string `json:"Version"`
		BuildNumber string `json:"BuildNumber"`
	} `json:"OperatingSystem"`
	Disks []struct {
		DeviceID  string `json:"DeviceID"`
		Size      uint64 `json:"Size"`
		FreeSpace uint64 `json:"FreeSpace"`
	} `json:"Disks"`
}

type bootReport struct {
	LastBootUpTime string `json:"LastBootUpTime"`
	LocalDateTime  string `json:"LocalDateTime"`
}

func parseSpecs(out, machine string) (Specs, error) {
	var rep specsReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		return Specs{}, cerr.Wrapf(err, "parse inventory report from %s", machine)
	}

	specs := Specs{
		Machine:           machine,
		Hostname:          rep.ComputerSystem.Name,
		Manufacturer:      rep.ComputerSystem.Manufacturer,
		Model:             rep.ComputerSystem.Model,
		LogicalProcessors: rep.ComputerSystem.NumberOfLogicalProcessors,
		MemoryBytes:       rep.ComputerSystem.TotalPhysicalMemory,
		OSName:            strings.TrimSpace(rep.OperatingSystem.Caption),
		OSVersion:         rep.OperatingSystem.Version,
		OSBuild:           rep.OperatingSystem.BuildNumber,
		Supported:         versionSupported(rep.OperatingSystem.Version),
	}
	for _, p := range rep.Processors {
		if specs.CPU == "" {
			specs.CPU = strings.TrimSpace(p.Name)
		}
		specs.Cores += p.NumberOfCores
	}
	for _, d := range rep.Disks {
		specs.Disks = append(specs.Disks, Disk{DeviceID: d.DeviceID, SizeBytes: d.Size, FreeBytes: d.FreeSpace})
	}
	return specs, nil
}

func parseBoot(out, machine string) (BootInfo, error) {
	var rep bootReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		return BootInfo{}, cerr.Wrapf(err, "parse boot report from %s", machine)
	}

	boot, err := parseWMIDate(rep.LastBootUpTime)
	if err != nil {
		return BootInfo{}, cerr.Wrapf(err, "parse last boot time from %s", machine)
	}
	now, err := parseWMIDate(rep.LocalDateTime)
	if err != nil {
		return BootInfo{}, cerr.Wrapf(err, "parse machine clock from %s", machine)
	}

	uptime := now.Sub(boot)
	if uptime < 0 {
		uptime = 0
	}
	return BootInfo{Machine: machine, LastBoot: boot, Uptime: uptime}, nil
}

// parseWMIDate decodes the "/Date(1692700000000)/" form, tolerating a
// trailing zone offset some builds append after the milliseconds.
func parseWMIDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	inner, ok := strings.CutPrefix(s, "/Date(")
	if !ok {
		return time.Time{}, cerr.Newf("not a WMI JSON date: %q", s)
	}
	inner, ok = strings.CutSuffix(inner, ")/")
	if !ok {
		return time.Time{}, cerr.Newf("not a WMI JSON date: %q", s)
	}

	end := len(inner)
	for i := 1; i < len(inner); i++ {
		if inner[i] == '+' || inner[i] == '-' {
			end = i
			break
		}
	}
	ms, err := strconv.ParseInt(inner[:end], 10, 64)
	if err != nil {
		return time.Time{}, cerr.Wrapf(err, "parse WMI JSON date %q", s)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// versionSupported compares an OS version string against the support
// baseline. Unparseable versions count as unsupported.
func versionSupported(v string) bool {
	baseline := version.Must(version.NewVersion(minSupportedBuild))
	got, err := version.NewVersion(v)
	if err != nil {
		return false
	}
	return got.GreaterThanOrEqual(baseline)
}
