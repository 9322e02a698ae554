// pkg/inventory/collector.go

package inventory

import (
	"context"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/argus/pkg/argus_err"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/batch"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/directory"
	"github.com/CodeMonkeyCybersecurity/argus/pkg/remote"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Collector gathers hardware, OS, and boot information. Remote machines
// are queried over WinRM; the local machine is read directly and needs
// no credentials.
type Collector struct {
	cfg directory.Config
}

func NewCollector(cfg directory.Config) *Collector {
	return &Collector{cfg: cfg}
}

// IsLocal reports whether machine refers to the host this process runs
// on, which short-circuits the WinRM hop.
func IsLocal(machine string) bool {
	machine = directory.NormalizeMachine(machine)
	if machine == "" || strings.EqualFold(machine, "localhost") {
		return true
	}
	hostname, err := os.Hostname()
	return err == nil && strings.EqualFold(machine, hostname)
}

// Specs collects the hardware and OS summary for one machine.
func (c *Collector) Specs(ctx context.Context, machine string) (Specs, error) {
	machine = directory.NormalizeMachine(machine)
	if IsLocal(machine) {
		return localSpecs(ctx)
	}
	if err := c.cfg.RequireRemote(); err != nil {
		return Specs{}, err
	}

	sess, err := remote.Dial(ctx, c.cfg.WinRM(), machine)
	if err != nil {
		return Specs{}, argus_err.NewConnectivityError("failed to reach "+machine, err)
	}
	defer closeSession(ctx, sess)

	out, err := sess.RunScript(ctx, specsScript)
	if err != nil {
		return Specs{}, err
	}
	return parseSpecs(out, machine)
}

// Boot collects last boot time and uptime for one machine.
func (c *Collector) Boot(ctx context.Context, machine string) (BootInfo, error) {
	machine = directory.NormalizeMachine(machine)
	if IsLocal(machine) {
		return localBoot(ctx)
	}
	if err := c.cfg.RequireRemote(); err != nil {
		return BootInfo{}, err
	}

	sess, err := remote.Dial(ctx, c.cfg.WinRM(), machine)
	if err != nil {
		return BootInfo{}, argus_err.NewConnectivityError("failed to reach "+machine, err)
	}
	defer closeSession(ctx, sess)

	out, err := sess.RunScript(ctx, bootScript)
	if err != nil {
		return BootInfo{}, err
	}
	return parseBoot(out, machine)
}

// SpecsAll collects specs across machines with batch warning semantics.
func (c *Collector) SpecsAll(ctx context.Context, machines []string, opts ...batch.Option) []batch.Result[Specs] {
	return batch.Run(ctx, machines, "Collecting hardware inventory", c.Specs, opts...)
}

// BootAll collects boot info across machines.
func (c *Collector) BootAll(ctx context.Context, machines []string, opts ...batch.Option) []batch.Result[BootInfo] {
	return batch.Run(ctx, machines, "Collecting boot times", c.Boot, opts...)
}

func closeSession(ctx context.Context, sess *remote.Session) {
	if err := sess.Close(); err != nil {
		otelzap.Ctx(ctx).Warn("Failed to close remote session",
			zap.String("machine", sess.Machine()), zap.Error(err))
	}
}
