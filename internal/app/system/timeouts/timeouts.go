// Package timeouts holds the timeout values used for calls that leave the
// process: community API requests, audit writes, event publishing and
// health probes.
//
// Every remote call is bounded. Remote is the community API timeout and is
// set from the api_timeout config key at startup; the other values scale
// the work around it.
//
//   - Ping: health checks
//   - Short: single audit writes and event publishes
//   - Remote: one community API request (list, update, delete)
//   - Refresh: a full refresh of every collection
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultRemote  = 10 * time.Second
	DefaultRefresh = 30 * time.Second
)

// Config holds timeout values. Zero fields are ignored.
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Remote  time.Duration
	Refresh time.Duration
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

func defaults() Config {
	return Config{
		Ping:    DefaultPing,
		Short:   DefaultShort,
		Remote:  DefaultRemote,
		Refresh: DefaultRefresh,
	}
}

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(cur)
}

// Ping returns the health check timeout.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short returns the timeout for single audit writes and event publishes.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Remote returns the timeout for one community API request.
func Remote() time.Duration { return get(func(c Config) time.Duration { return c.Remote }) }

// Refresh returns the timeout for refreshing every collection.
func Refresh() time.Duration { return get(func(c Config) time.Duration { return c.Refresh }) }

// Configure overrides the non-zero values in cfg. A Remote longer than the
// current Refresh raises Refresh to three times Remote, since a full refresh
// makes three requests.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&cur, cfg)
	if cur.Refresh < 3*cur.Remote {
		cur.Refresh = 3 * cur.Remote
	}
}

func merge(dst *Config, src Config) {
	if src.Ping > 0 {
		dst.Ping = src.Ping
	}
	if src.Short > 0 {
		dst.Short = src.Short
	}
	if src.Remote > 0 {
		dst.Remote = src.Remote
	}
	if src.Refresh > 0 {
		dst.Refresh = src.Refresh
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// ConfigureFromEnv reads <prefix>_TIMEOUT_PING, _SHORT, _REMOTE and _REFRESH
// (Go durations such as "500ms" or "15s"). Unset or invalid values are
// skipped. It returns how many values were applied.
func ConfigureFromEnv(prefix string) int {
	var cfg Config
	fields := []struct {
		name string
		dst  *time.Duration
	}{
		{"PING", &cfg.Ping},
		{"SHORT", &cfg.Short},
		{"REMOTE", &cfg.Remote},
		{"REFRESH", &cfg.Refresh},
	}
	n := 0
	for _, f := range fields {
		v := os.Getenv(prefix + "_TIMEOUT_" + f.name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*f.dst = d
			n++
		}
	}
	if n > 0 {
		Configure(cfg)
	}
	return n
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Remote(), log, "list users")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
