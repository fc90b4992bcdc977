// internal/app/system/workers/upstreamprobe.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"go.uber.org/zap"
)

// Pinger checks that the community API answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeStatus is the last result of an upstream probe.
type ProbeStatus struct {
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
	Latency   string    `json:"latency,omitempty"`
}

// UpstreamProbe is a background worker that pings the community API and
// keeps the last result for the health endpoint.
type UpstreamProbe struct {
	api      Pinger
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu   sync.RWMutex
	last ProbeStatus
	was  bool // previous OK, for transition logging
}

// NewUpstreamProbe creates a probe worker.
//
// Parameters:
//   - api: the community API client
//   - logger: zap logger for logging
//   - interval: how often to ping (e.g., 30 seconds)
//   - timeout: deadline for one ping
func NewUpstreamProbe(api Pinger, logger *zap.Logger, interval, timeout time.Duration) *UpstreamProbe {
	return &UpstreamProbe{
		api:      api,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
		was:      true,
	}
}

// Start runs one probe immediately and then begins the background loop.
func (w *UpstreamProbe) Start() {
	w.Probe()
	w.wg.Add(1)
	go w.run()
	w.log.Info("upstream probe started",
		zap.Duration("interval", w.interval),
		zap.Duration("timeout", w.timeout))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *UpstreamProbe) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("upstream probe stopped")
}

// Status returns the last probe result. Before the first probe it reports
// not OK with a zero CheckedAt.
func (w *UpstreamProbe) Status() ProbeStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *UpstreamProbe) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Probe()
		}
	}
}

// Probe pings once and records the result.
func (w *UpstreamProbe) Probe() ProbeStatus {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	err := w.api.Ping(ctx)
	st := ProbeStatus{OK: err == nil, CheckedAt: time.Now().UTC(), Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		st.Error = communityapi.UserMessage(err)
	}

	w.mu.Lock()
	w.last = st
	was := w.was
	w.was = st.OK
	w.mu.Unlock()

	switch {
	case was && !st.OK:
		w.log.Warn("community API unreachable", zap.Error(err))
	case !was && st.OK:
		w.log.Info("community API reachable again")
	}
	return st
}
