package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/app/system/auditlog"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/communityhub/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memRecorder) Log(_ context.Context, ev audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) all() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...)
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, "a@attijari.com")
	logger.Logout(ctx, "a@attijari.com")
	logger.Observe(ctx, mutation.Outcome{Kind: "comment", Op: mutation.OpDelete})
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		setting  string
		wantDB   int
		wantLogs int
	}{
		{"all", 1, 1},
		{"db", 1, 0},
		{"log", 0, 1},
		{"off", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			rec := &memRecorder{}
			core, logs := observer.New(zap.InfoLevel)
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: tt.setting, Moderation: tt.setting})

			logger.LoginSuccess(context.Background(), "a@attijari.com")

			if got := len(rec.all()); got != tt.wantDB {
				t.Errorf("db events = %d, want %d", got, tt.wantDB)
			}
			if got := logs.FilterMessage("audit event").Len(); got != tt.wantLogs {
				t.Errorf("log events = %d, want %d", got, tt.wantLogs)
			}
		})
	}
}

func TestLogger_NilStoreSkipsDB(t *testing.T) {
	logger := auditlog.New(nil, zap.NewNop(), auditlog.Config{Auth: "all"})
	logger.LoginFailed(context.Background(), "a@attijari.com", "invalid credentials")
}

func TestLogger_ObserveEdit(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Moderation: "db"})

	before := models.Comment{ID: "7", Content: "A", Status: models.StatusApproved}
	after := before
	after.Content = "B"

	logger.Observe(context.Background(), mutation.Outcome{
		Kind: "comment", Op: mutation.OpEdit, ID: "7",
		Actor:  mutation.Actor{Email: "admin@attijari.com"},
		Before: before, After: after, At: time.Now(),
	})

	events := rec.all()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.EventType != "comment_updated" || ev.TargetID != "7" || !ev.Success {
		t.Errorf("event = %+v", ev)
	}
	if ev.Details["fields_changed"] != "content" {
		t.Errorf("fields_changed = %q, want content", ev.Details["fields_changed"])
	}
}

func TestLogger_ObserveFailedDelete(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Moderation: "db"})

	logger.Observe(context.Background(), mutation.Outcome{
		Kind: "post", Op: mutation.OpDelete, ID: "3",
		Err: errors.New("Erreur HTTP 500"),
	})

	ev := rec.all()[0]
	if ev.EventType != "post_deleted" || ev.Success || ev.FailureReason != "Erreur HTTP 500" {
		t.Errorf("event = %+v", ev)
	}
}

func TestMiddleware_CarriesClient(t *testing.T) {
	rec := &memRecorder{}
	logger := auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: "db"})

	h := auditlog.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Logout(r.Context(), "a@attijari.com")
	}))
	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	ev := rec.all()[0]
	if ev.IP != "203.0.113.9" || ev.UserAgent != "TestBrowser/1.0" {
		t.Errorf("client = %q / %q", ev.IP, ev.UserAgent)
	}
}

func TestChangedFields(t *testing.T) {
	a := models.Tag{ID: "1", Name: "Finance", Color: "#3B82F6", PostCount: 245}
	b := a
	b.Name = "Finances"
	b.Color = "#10B981"
	if got, want := auditlog.ChangedFields(a, b), []string{"color", "name"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ChangedFields() = %v, want %v", got, want)
	}
	if got := auditlog.ChangedFields(nil, b); got != nil {
		t.Errorf("ChangedFields(nil, b) = %v, want nil", got)
	}
}

func TestLogger_WithStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Moderation: "db"})
	logger.Observe(ctx, mutation.Outcome{Kind: "tag", Op: mutation.OpCreate, ID: "11", After: models.Tag{ID: "11"}})

	events, err := store.GetByTarget(ctx, "tag", "11", 10)
	if err != nil {
		t.Fatalf("GetByTarget failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "tag_created" {
		t.Errorf("events = %+v", events)
	}
}
