package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemStats снимок состояния процесса и узла
type SystemStats struct {
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	HeapMB        float64 `json:"heap_mb"`
	ProcessCPU    float64 `json:"process_cpu_percent"`
	ProcessRSSMB  float64 `json:"process_rss_mb"`
	SystemMemUsed float64 `json:"system_mem_used_percent"`
	Goroutines    int     `json:"goroutines"`
	NumGC         uint32  `json:"num_gc"`
	ServerTime    int64   `json:"server_time"`
}

type systemProbe struct {
	startTime time.Time
}

func newSystemProbe() *systemProbe {
	return &systemProbe{startTime: time.Now()}
}

// formatUptime возвращает время работы в виде "1д 2ч 3м 4с"
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// Snapshot собирает метрики. Ошибки gopsutil не фатальны: поле остаётся нулевым.
func (sp *systemProbe) Snapshot() SystemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(sp.startTime)
	stats := SystemStats{
		Uptime:        formatUptime(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		HeapMB:        float64(m.HeapAlloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		NumGC:         m.NumGC,
		ServerTime:    time.Now().Unix(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if pct, err := proc.CPUPercent(); err == nil {
			stats.ProcessCPU = pct
		} else if pcts, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pcts) > 0 {
			// Если не удалось получить метрику процесса, берём системную
			stats.ProcessCPU = pcts[0]
		}
		if info, err := proc.MemoryInfo(); err == nil {
			stats.ProcessRSSMB = float64(info.RSS) / 1024 / 1024
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.SystemMemUsed = vm.UsedPercent
	}
	return stats
}
