package handlers

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Monitor reports host health: load average and memory pressure. It
// reads the numbers from /proc so it works without extra tooling.
type Monitor struct{}

// NewMonitor creates a Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// HostStats is one snapshot of host health.
type HostStats struct {
	Load1       float64
	MemTotalKB  int64
	MemAvailKB  int64
	UsedPercent float64
}

// Handle snapshots the host and logs the result. The argument is
// ignored; any phrasing of "monitor system" gets the same report.
func (m *Monitor) Handle(ctx context.Context, _ string) error {
	stats, err := m.Snapshot(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Float64("load1", stats.Load1).
		Int64("mem_total_kb", stats.MemTotalKB).
		Int64("mem_avail_kb", stats.MemAvailKB).
		Float64("mem_used_pct", stats.UsedPercent).
		Msg("[Handlers] Host status")
	return nil
}

// Snapshot reads current host stats.
func (m *Monitor) Snapshot(_ context.Context) (*HostStats, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("monitor: not supported on %s", runtime.GOOS)
	}

	stats := &HostStats{}

	loadRaw, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return nil, fmt.Errorf("monitor: read loadavg: %w", err)
	}
	if fields := strings.Fields(string(loadRaw)); len(fields) > 0 {
		stats.Load1, _ = strconv.ParseFloat(fields[0], 64)
	}

	memRaw, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return nil, fmt.Errorf("monitor: read meminfo: %w", err)
	}
	for _, line := range strings.Split(string(memRaw), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			stats.MemTotalKB, _ = strconv.ParseInt(fields[1], 10, 64)
		case "MemAvailable:":
			stats.MemAvailKB, _ = strconv.ParseInt(fields[1], 10, 64)
		}
	}
	if stats.MemTotalKB > 0 {
		used := stats.MemTotalKB - stats.MemAvailKB
		stats.UsedPercent = float64(used) / float64(stats.MemTotalKB) * 100
	}
	return stats, nil
}
