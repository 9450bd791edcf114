// Package monitor reports process self-stats for the /stats endpoint.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// OnlineCounter is satisfied by the participant registry.
type OnlineCounter interface {
	Online(ctx context.Context) (int, error)
}

type Snapshot struct {
	Online     int     `json:"online"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	UptimeSecs float64 `json:"uptime_secs"`
}

type Monitor struct {
	proc      *process.Process
	online    OnlineCounter
	log       *slog.Logger
	startedAt time.Time
}

func New(log *slog.Logger, online OnlineCounter) *Monitor {
	m := &Monitor{
		online:    online,
		log:       log,
		startedAt: time.Now(),
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("process stats unavailable", "error", err)
		return m
	}
	m.proc = proc
	return m
}

// Snapshot collects the current stats. Collection failures degrade to zero
// values rather than failing the endpoint.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Goroutines: runtime.NumGoroutine(),
		UptimeSecs: time.Since(m.startedAt).Seconds(),
	}

	if m.online != nil {
		n, err := m.online.Online(ctx)
		if err != nil {
			m.log.Warn("online count failed", "error", err)
		} else {
			snap.Online = n
		}
	}

	if m.proc != nil {
		if mem, err := m.proc.MemoryInfo(); err == nil {
			snap.RSSBytes = mem.RSS
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			snap.CPUPercent = cpu
		}
	}
	return snap
}

// LogLoop writes a stats line on a fixed cadence until ctx is canceled.
func (m *Monitor) LogLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := m.Snapshot(ctx)
			m.log.Info("server stats",
				"online", snap.Online,
				"rss_bytes", snap.RSSBytes,
				"cpu_percent", snap.CPUPercent,
				"goroutines", snap.Goroutines)
		}
	}
}
