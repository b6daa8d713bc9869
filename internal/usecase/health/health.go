// Package health reports process and dependency health.
package health

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Dependency states
const (
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
	StateDisabled     = "disabled"
)

// Overall states
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Pinger is implemented by every dependency that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Report is the health snapshot of the running process.
type Report struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Uptime      float64           `json:"uptime"`
	Memory      Memory            `json:"memory"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Services    map[string]string `json:"services"`
}

// Memory holds a subset of runtime.MemStats, in bytes.
type Memory struct {
	Alloc      uint64 `json:"alloc"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapInuse  uint64 `json:"heapInuse"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

// Service probes registered dependencies.
type Service struct {
	env     string
	started time.Time
	deps    map[string]Pinger
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// New creates a health Service. A nil Pinger in deps marks that dependency disabled.
func New(env string, deps map[string]Pinger, log *zap.Logger) *Service {
	return &Service{
		env:     env,
		started: time.Now(),
		deps:    deps,
		timeout: 2 * time.Second,
		log:     log,
		now:     time.Now,
	}
}

// Check builds a Report. Unreachable dependencies make the status degraded
// but never fail the call.
func (s *Service) Check(ctx context.Context) *Report {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	now := s.now()
	r := &Report{
		Status:      StatusHealthy,
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(s.started).Seconds(),
		Version:     runtime.Version(),
		Environment: s.env,
		Services:    make(map[string]string, len(s.deps)),
		Memory: Memory{
			Alloc:      ms.Alloc,
			HeapAlloc:  ms.HeapAlloc,
			HeapInuse:  ms.HeapInuse,
			Sys:        ms.Sys,
			NumGC:      ms.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
	}

	for name, dep := range s.deps {
		if dep == nil {
			r.Services[name] = StateDisabled
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := dep.Ping(pingCtx)
		cancel()

		if err != nil {
			s.log.Warn("dependency unhealthy", zap.String("dependency", name), zap.Error(err))
			r.Services[name] = StateDisconnected
			r.Status = StatusDegraded
			continue
		}
		r.Services[name] = StateConnected
	}

	return r
}
