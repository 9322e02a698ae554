// pkg/inventory/local.go
//
// Local collection path. Reads the running host through gopsutil instead
// of WinRM-ing to itself.

package inventory

import (
	"context"
	"runtime"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func localSpecs(ctx context.Context) (Specs, error) {
	logger := otelzap.Ctx(ctx)

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return Specs{}, cerr.Wrap(err, "read local host info")
	}

	specs := Specs{
		Machine:   hi.Hostname,
		Hostname:  hi.Hostname,
		OSName:    hi.Platform,
		OSVersion: hi.PlatformVersion,
		OSBuild:   hi.KernelVersion,
		Supported: runtime.GOOS != "windows" || versionSupported(hi.PlatformVersion),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		specs.MemoryBytes = vm.Total
	} else {
		logger.Warn("Failed to read local memory size", zap.Error(err))
	}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		specs.CPU = infos[0].ModelName
	}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		specs.Cores = physical
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		specs.LogicalProcessors = logical
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		logger.Warn("Failed to enumerate local disks", zap.Error(err))
		return specs, nil
	}
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			logger.Debug("Skipping unreadable partition",
				zap.String("mountpoint", p.Mountpoint), zap.Error(err))
			continue
		}
		specs.Disks = append(specs.Disks, Disk{
			DeviceID:  p.Mountpoint,
			SizeBytes: usage.Total,
			FreeBytes: usage.Free,
		})
	}
	return specs, nil
}

func localBoot(ctx context.Context) (BootInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return BootInfo{}, cerr.Wrap(err, "read local host info")
	}

	boot := time.Unix(int64(hi.BootTime), 0).UTC()
	return BootInfo{
		Machine:  hi.Hostname,
		LastBoot: boot,
		Uptime:   time.Duration(hi.Uptime) * time.Second,
	}, nil
}
