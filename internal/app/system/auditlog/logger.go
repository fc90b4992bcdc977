// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in and sign-out events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Moderation controls logging for edits, deletions and creations made
	// through the console. Same values as Auth.
	Moderation string
}

// Recorder persists audit events. *audit.Store is the production recorder.
type Recorder interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via a Recorder) and structured logs (via zap).
type Logger struct {
	store  Recorder
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when no database is
// configured; "db" destinations are then skipped.
func New(store Recorder, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type clientKey struct{}

type client struct {
	ip        string
	userAgent string
}

// Middleware records the client address and user agent in the request
// context so events raised deeper in the call (mutation observers) carry them.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := client{ip: ratelimit.ClientIP(r), userAgent: r.UserAgent()}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, c)))
	})
}

func clientFrom(ctx context.Context) client {
	c, _ := ctx.Value(clientKey{}).(client)
	return c
}

/*─────────────────────────────────────────────────────────────────────────────*
| Core                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor", event.ActorEmail))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("kind", event.Kind), zap.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryModeration:
		setting = l.config.Moderation
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if event.IP == "" {
		c := clientFrom(ctx)
		event.IP, event.UserAgent = c.ip, c.userAgent
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		ActorEmail: email,
		Success:    true,
	})
}

// LoginFailed logs a rejected sign-in attempt.
func (l *Logger) LoginFailed(ctx context.Context, attemptedEmail, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		ActorEmail:    attemptedEmail,
		Success:       false,
		FailureReason: reason,
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLogout,
		ActorEmail: email,
		Success:    true,
	})
}

// --- Moderation Events ---

// Observe records a mutation outcome. It makes the Logger a
// mutation.Observer.
func (l *Logger) Observe(ctx context.Context, o mutation.Outcome) {
	if l == nil {
		return
	}
	action := audit.ActionUpdated
	switch o.Op {
	case mutation.OpCreate:
		action = audit.ActionCreated
	case mutation.OpDelete:
		action = audit.ActionDeleted
	}

	ev := audit.Event{
		Timestamp:  o.At,
		Category:   audit.CategoryModeration,
		EventType:  audit.ModerationEventType(o.Kind, action),
		ActorEmail: o.Actor.Email,
		Kind:       o.Kind,
		TargetID:   o.ID.String(),
		Success:    o.Succeeded(),
	}
	if o.Err != nil {
		ev.FailureReason = o.Err.Error()
	}
	if o.Op == mutation.OpEdit && o.Succeeded() {
		if changed := ChangedFields(o.Before, o.After); len(changed) > 0 {
			ev.Details = map[string]string{"fields_changed": strings.Join(changed, ",")}
		}
	}
	l.Log(ctx, ev)
}

// ChangedFields returns the JSON field names whose values differ between
// two values of the same entity type, sorted.
func ChangedFields(before, after any) []string {
	b, okB := asMap(before)
	a, okA := asMap(after)
	if !okB || !okA {
		return nil
	}
	var out []string
	for k, av := range a {
		if bv, ok := b[k]; !ok || !reflect.DeepEqual(av, bv) {
			out = append(out, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func asMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}
