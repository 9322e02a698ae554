// pkg/inventory/types.go

package inventory

import "time"

// Specs is one machine's hardware and OS summary.
type Specs struct {
	Machine           string `json:"machine"`
	Hostname          string `json:"hostname"`
	Manufacturer      string `json:"manufacturer,omitempty"`
	Model             string `json:"model,omitempty"`
	CPU               string `json:"cpu"`
	Cores             int    `json:"cores"`
	LogicalProcessors int    `json:"logical_processors"`
	MemoryBytes       uint64 `json:"memory_bytes"`
	Disks             []Disk `json:"disks"`
	OSName            string `json:"os_name"`
	OSVersion         string `json:"os_version"`
	OSBuild           string `json:"os_build,omitempty"`
	Supported         bool   `json:"supported"`
}

// Disk is one fixed logical disk.
type Disk struct {
	DeviceID  string `json:"device_id"`
	SizeBytes uint64 `json:"size_bytes"`
	FreeBytes uint64 `json:"free_bytes"`
}

// BootInfo reports when a machine last started. Uptime is computed from
// the machine's own clock so skew against the caller does not distort it.
type BootInfo struct {
	Machine  string        `json:"machine"`
	LastBoot time.Time     `json:"last_boot"`
	Uptime   time.Duration `json:"uptime"`
}
