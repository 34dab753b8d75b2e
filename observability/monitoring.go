// Package observability exposes lightweight process telemetry for the
// health endpoint.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthStats aggregates the live process metrics served by /api/health.
type HealthStats struct {
	Status        string  `json:"status"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	Goroutines    int     `json:"goroutines"`
	AllocMemMb    uint64  `json:"alloc_mem_mb"`
	RssMemMb      uint64  `json:"rss_mem_mb"`
	CPUPercent    float64 `json:"cpu_percent"`
	NumGC         uint32  `json:"num_gc"`
}

type Monitor struct {
	log     *slog.Logger
	started time.Time
	proc    *process.Process
}

func NewMonitor(log *slog.Logger) *Monitor {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		// Health degrades to Go runtime metrics only.
		log.Warn("Process metrics unavailable", "error", err)
		proc = nil
	}
	return &Monitor{log: log, started: time.Now().UTC(), proc: proc}
}

// Snapshot collects the current stats. Always returns a usable value;
// OS-level metrics are zero when the process handle is unavailable.
func (m *Monitor) Snapshot() HealthStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := HealthStats{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		AllocMemMb:    memStats.Alloc / 1024 / 1024,
		NumGC:         memStats.NumGC,
	}

	if m.proc != nil {
		if cpu, err := m.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
		if mem, err := m.proc.MemoryInfo(); err == nil {
			stats.RssMemMb = mem.RSS / 1024 / 1024
		}
	}
	return stats
}
