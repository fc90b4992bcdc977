package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/testutil"
)

func moderation(kind, target, action string, success bool) audit.Event {
	return audit.Event{
		Category:   audit.CategoryModeration,
		EventType:  audit.ModerationEventType(kind, action),
		ActorEmail: "admin@attijari.com",
		Kind:       kind,
		TargetID:   target,
		IP:         "10.0.0.1",
		Success:    success,
	}
}

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, moderation("comment", "7", audit.ActionUpdated, true)); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByTarget(ctx, "comment", "7", 10)
	if err != nil {
		t.Fatalf("GetByTarget failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != "comment_updated" {
		t.Errorf("event type = %q", events[0].EventType)
	}
}

func TestStore_Log_AutoFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	after := time.Now().Add(time.Second)

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.Before(before) || events[0].Timestamp.After(after) {
		t.Errorf("expected timestamp to be set to current time, got %v", events[0].Timestamp)
	}
}

func TestStore_Log_WithDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ev := moderation("post", "3", audit.ActionUpdated, true)
	ev.Details = map[string]string{"fields_changed": "status"}
	if err := store.Log(ctx, ev); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByTarget(ctx, "post", "3", 10)
	if err != nil {
		t.Fatalf("GetByTarget failed: %v", err)
	}
	if len(events) != 1 || events[0].Details["fields_changed"] != "status" {
		t.Errorf("details = %v", events)
	}
}

func TestStore_Query(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().Add(-time.Hour)
	seed := []audit.Event{
		moderation("comment", "1", audit.ActionDeleted, true),
		moderation("comment", "2", audit.ActionUpdated, false),
		moderation("user", "5", audit.ActionCreated, true),
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, ActorEmail: "x@attijari.com"},
	}
	for i, ev := range seed {
		ev.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"by category", audit.QueryFilter{Category: audit.CategoryModeration}, 3},
		{"by kind", audit.QueryFilter{Kind: "comment"}, 2},
		{"by event type", audit.QueryFilter{EventType: "user_created"}, 1},
		{"by actor", audit.QueryFilter{ActorEmail: "x@attijari.com"}, 1},
		{"with offset", audit.QueryFilter{Offset: 3}, 1},
		{"with limit", audit.QueryFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}

	t.Run("newest first", func(t *testing.T) {
		events, _ := store.GetRecent(ctx, 10)
		if len(events) > 0 && events[0].Category != audit.CategoryAuth {
			t.Errorf("first event = %+v, want the login failure", events[0])
		}
	})

	t.Run("time range", func(t *testing.T) {
		start := base.Add(90 * time.Second)
		events, err := store.Query(ctx, audit.QueryFilter{StartTime: &start})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("got %d events, want 2", len(events))
		}
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.CountByFilter(ctx, audit.QueryFilter{Kind: "comment"})
		if err != nil || n != 2 {
			t.Errorf("CountByFilter() = %d, %v", n, err)
		}
	})

	t.Run("failed", func(t *testing.T) {
		events, err := store.GetFailed(ctx, base.Add(-time.Minute), 10)
		if err != nil {
			t.Fatalf("GetFailed failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("got %d failed events, want 2", len(events))
		}
	})
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	// idempotent
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("second EnsureIndexes failed: %v", err)
	}
}
