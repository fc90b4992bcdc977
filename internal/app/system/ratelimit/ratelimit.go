// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. A key may spend up to limit
// attempts at once; the bucket refills fully over window.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	every   rate.Limit
	idle    time.Duration // buckets untouched this long are dropped
	pruned  time.Time
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// New creates a limiter allowing limit attempts per window and key.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		idle:    2 * window,
		now:     time.Now,
	}
}

// Allow reports whether one more attempt for key is allowed, and spends it.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Remaining returns how many attempts key has left right now.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return l.limit
	}
	n := int(b.lim.TokensAt(l.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// pruneLocked drops idle buckets at most once per idle period, so memory
// stays bounded without a background goroutine.
func (l *Limiter) pruneLocked(now time.Time) {
	if now.Sub(l.pruned) < l.idle {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.seen) >= l.idle {
			delete(l.buckets, key)
		}
	}
	l.pruned = now
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// Messages shown to a throttled operator.
const (
	MsgTooManyFromIP     = "Trop de tentatives de connexion. Veuillez patienter une minute."
	MsgTooManyForAccount = "Trop de tentatives pour ce compte. Veuillez réessayer dans quelques minutes."
)

const (
	DefaultIPAttempts    = 10
	DefaultEmailAttempts = 5

	defaultIPWindow    = time.Minute
	defaultEmailWindow = 5 * time.Minute
)

// LoginLimiter throttles sign-in attempts per client address and per email.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows ipAttempts per minute per address and emailAttempts
// per five minutes per email. A non-positive count disables that check.
func NewLoginLimiter(ipAttempts, emailAttempts int) *LoginLimiter {
	ll := &LoginLimiter{}
	if ipAttempts > 0 {
		ll.ip = New(ipAttempts, defaultIPWindow)
	}
	if emailAttempts > 0 {
		ll.email = New(emailAttempts, defaultEmailWindow)
	}
	return ll
}

// Check spends one attempt for the request's address and for email.
// It returns false and the message to show when either is exhausted.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if ll == nil {
		return true, ""
	}
	if ll.ip != nil && !ll.ip.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := emailKey(email); key != "" && ll.email != nil && !ll.email.Allow(key) {
		return false, MsgTooManyForAccount
	}
	return true, ""
}

// ResetEmail forgets failed attempts for email after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if ll == nil || ll.email == nil {
		return
	}
	if key := emailKey(email); key != "" {
		ll.email.Reset(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
