// Package monitor samples process health: memory, goroutines and uptime.
// Callers receive a Monitor and never depend on whether sampling is on.
package monitor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"
)

// Monitor is the diagnostic surface used by the server and middleware.
type Monitor interface {
	// Start begins periodic memory sampling until ctx is done.
	Start(ctx context.Context)
	// LogMemoryUsage logs a memory snapshot under label ("Manual" when empty).
	LogMemoryUsage(label string)
	SetMemoryThreshold(mb int)
	HealthStatus() Health
	// Shutdown logs a final snapshot and stops sampling.
	Shutdown(reason string)
}

// Memory is a snapshot in megabytes.
type Memory struct {
	HeapAlloc uint64 `json:"heap_alloc"`
	HeapInuse uint64 `json:"heap_inuse"`
	HeapSys   uint64 `json:"heap_sys"`
	Sys       uint64 `json:"sys"`
}

// Health is the payload of the health endpoint.
type Health struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Uptime     string    `json:"uptime"`
	Memory     *Memory   `json:"memory"`
	GoVersion  string    `json:"go_version"`
	Platform   string    `json:"platform"`
	PID        int       `json:"pid"`
	Goroutines int       `json:"goroutines"`
}

const (
	DefaultInterval    = 30 * time.Second
	DefaultThresholdMB = 500
	StatusHealthy      = "healthy"
)

const mb = 1024 * 1024

func toMB(b uint64) uint64 {
	return (b + mb/2) / mb
}

func memoryOf(ms *runtime.MemStats) *Memory {
	return &Memory{
		HeapAlloc: toMB(ms.HeapAlloc),
		HeapInuse: toMB(ms.HeapInuse),
		HeapSys:   toMB(ms.HeapSys),
		Sys:       toMB(ms.Sys),
	}
}

// FormatUptime renders d as "Xh Ym Zs".
func FormatUptime(d time.Duration) string {
	s := int64(d / time.Second)
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%dh %dm %ds", s/3600, (s%3600)/60, s%60)
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Noop reports a healthy process without sampling anything.
type Noop struct {
	started time.Time
}

func NewNoop() *Noop {
	return &Noop{started: time.Now()}
}

func (*Noop) Start(context.Context)  {}
func (*Noop) LogMemoryUsage(string)  {}
func (*Noop) SetMemoryThreshold(int) {}
func (*Noop) Shutdown(string)        {}

func (n *Noop) HealthStatus() Health {
	return Health{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    FormatUptime(time.Since(n.started)),
		GoVersion: runtime.Version(),
		Platform:  platform(),
		PID:       os.Getpid(),
	}
}
