package monitor

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	_ Monitor = (*Runtime)(nil)
	_ Monitor = (*Noop)(nil)
)

// Options configures a Runtime monitor. Zero values use the defaults.
type Options struct {
	Interval    time.Duration
	ThresholdMB int
	// Registerer receives the monitor's gauges. Nil skips registration.
	Registerer prometheus.Registerer
}

// Runtime samples the Go runtime and exports what it sees to zap and
// Prometheus. Heap in use above the threshold triggers a warning and a GC.
type Runtime struct {
	log       *zap.Logger
	interval  time.Duration
	threshold atomic.Uint64
	started   time.Time

	now        func() time.Time
	readStats  func(*runtime.MemStats)
	gc         func()
	goroutines func() int

	heapAlloc      prometheus.Gauge
	heapSys        prometheus.Gauge
	sys            prometheus.Gauge
	goroutineGauge prometheus.Gauge
	forcedGC       prometheus.Counter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Runtime monitor and logs the process start.
func New(log *zap.Logger, opts Options) *Runtime {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ThresholdMB <= 0 {
		opts.ThresholdMB = DefaultThresholdMB
	}

	m := &Runtime{
		log:        log.Named("monitor"),
		interval:   opts.Interval,
		started:    time.Now(),
		now:        time.Now,
		readStats:  runtime.ReadMemStats,
		gc:         runtime.GC,
		goroutines: runtime.NumGoroutine,
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "serenify_process_heap_alloc_bytes",
			Help: "Bytes of allocated heap objects.",
		}),
		heapSys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "serenify_process_heap_sys_bytes",
			Help: "Bytes of heap memory obtained from the OS.",
		}),
		sys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "serenify_process_sys_bytes",
			Help: "Total bytes of memory obtained from the OS.",
		}),
		goroutineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "serenify_process_goroutines",
			Help: "Number of goroutines.",
		}),
		forcedGC: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "serenify_monitor_forced_gc_total",
			Help: "Garbage collections forced by the memory threshold.",
		}),
	}
	m.threshold.Store(uint64(opts.ThresholdMB) * mb)

	if opts.Registerer != nil {
		opts.Registerer.MustRegister(m.heapAlloc, m.heapSys, m.sys, m.goroutineGauge, m.forcedGC)
	}

	ms := m.sample()
	m.log.Info("process started",
		zap.Int("pid", os.Getpid()),
		zap.String("go_version", runtime.Version()),
		zap.String("platform", platform()),
		zap.Any("memory", memoryOf(ms)),
	)
	return m
}

func (m *Runtime) uptime() string {
	return FormatUptime(m.now().Sub(m.started))
}

// sample reads memory statistics and updates the gauges.
func (m *Runtime) sample() *runtime.MemStats {
	var ms runtime.MemStats
	m.readStats(&ms)
	m.heapAlloc.Set(float64(ms.HeapAlloc))
	m.heapSys.Set(float64(ms.HeapSys))
	m.sys.Set(float64(ms.Sys))
	m.goroutineGauge.Set(float64(m.goroutines()))
	return &ms
}

// check is one sampling tick.
func (m *Runtime) check() {
	ms := m.sample()
	threshold := m.threshold.Load()
	if ms.HeapInuse <= threshold {
		return
	}
	m.log.Warn("high memory usage detected",
		zap.String("uptime", m.uptime()),
		zap.Any("memory", memoryOf(ms)),
		zap.Uint64("threshold_mb", threshold/mb),
	)
	m.log.Info("running garbage collection")
	m.gc()
	m.forcedGC.Inc()
}

// Start replaces any running sampler with a new one bound to ctx.
func (m *Runtime) Start(ctx context.Context) {
	m.stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.mu.Lock()
	m.cancel, m.done = cancel, done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check()
			}
		}
	}()
}

func (m *Runtime) stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Runtime) LogMemoryUsage(label string) {
	if label == "" {
		label = "Manual"
	}
	m.log.Info("memory usage",
		zap.String("label", label),
		zap.String("uptime", m.uptime()),
		zap.Any("memory", memoryOf(m.sample())),
	)
}

func (m *Runtime) SetMemoryThreshold(thresholdMB int) {
	if thresholdMB <= 0 {
		return
	}
	m.threshold.Store(uint64(thresholdMB) * mb)
	m.log.Info("memory threshold set", zap.Int("threshold_mb", thresholdMB))
}

func (m *Runtime) HealthStatus() Health {
	return Health{
		Status:     StatusHealthy,
		Timestamp:  m.now().UTC(),
		Uptime:     m.uptime(),
		Memory:     memoryOf(m.sample()),
		GoVersion:  runtime.Version(),
		Platform:   platform(),
		PID:        os.Getpid(),
		Goroutines: m.goroutines(),
	}
}

func (m *Runtime) Shutdown(reason string) {
	m.stop()
	m.log.Info("process shutting down",
		zap.String("reason", reason),
		zap.String("uptime", m.uptime()),
		zap.Any("memory", memoryOf(m.sample())),
	)
}
