// Package hoststats wraps shirou/gopsutil host CPU and memory sampling for
// the admin API's /stats endpoint, the same library and sampling pattern
// the teacher's internal/api/handlers/health.go uses for its own Stats
// handler.
package hoststats

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot reports a point-in-time view of host resource usage.
type Snapshot struct {
	NumCPU         int     `json:"num_cpu"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemTotalMB     float64 `json:"mem_total_mb"`
	MemUsedMB      float64 `json:"mem_used_mb"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

// sampleWindow is how long cpu.Percent blocks to measure a CPU usage
// delta, matching the 200ms sample the teacher's Health handler uses.
const sampleWindow = 200 * time.Millisecond

// Collect samples current CPU and memory usage. Errors from either gopsutil
// call are swallowed and leave the corresponding fields zeroed, matching
// the teacher's Stats handler, which treats host-stats collection as
// best-effort rather than request-fatal.
func Collect() Snapshot {
	snap := Snapshot{NumCPU: runtime.NumCPU()}

	if percents, err := cpu.Percent(sampleWindow, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemTotalMB = float64(vm.Total) / 1024 / 1024
		snap.MemUsedMB = float64(vm.Used) / 1024 / 1024
		snap.MemUsedPercent = vm.UsedPercent
	}

	return snap
}
