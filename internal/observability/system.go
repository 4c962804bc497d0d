// internal/observability/system.go
package observability

import (
	"runtime"
	"time"
)

type MemoryStats struct {
	AllocMB      float64 `json:"allocMB"`
	TotalAllocMB float64 `json:"totalAllocMB"`
	SysMB        float64 `json:"sysMB"`
	HeapInUseMB  float64 `json:"heapInUseMB"`
}

type HealthReport struct {
	Status      string      `json:"status"`
	Uptime      float64     `json:"uptime"`
	Timestamp   time.Time   `json:"timestamp"`
	Environment string      `json:"environment"`
	Version     string      `json:"version"`
	Memory      MemoryStats `json:"memory"`
	Goroutines  int         `json:"goroutines"`
	CPUCores    int         `json:"cpuCores"`
}

// Health snapshots process health relative to startedAt.
func Health(startedAt time.Time, environment, version string) HealthReport {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return HealthReport{
		Status:      "OK",
		Uptime:      time.Since(startedAt).Seconds(),
		Timestamp:   time.Now().UTC(),
		Environment: environment,
		Version:     version,
		Memory: MemoryStats{
			AllocMB:      toMB(ms.Alloc),
			TotalAllocMB: toMB(ms.TotalAlloc),
			SysMB:        toMB(ms.Sys),
			HeapInUseMB:  toMB(ms.HeapInuse),
		},
		Goroutines: runtime.NumGoroutine(),
		CPUCores:   runtime.NumCPU(),
	}
}

func toMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
