package login_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/dalemusser/communityhub/internal/app/features/login"
	"github.com/dalemusser/communityhub/internal/app/store/audit"
	"github.com/dalemusser/communityhub/internal/app/system/auditlog"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/communityhub/internal/testutil"
	"go.uber.org/zap"
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

func newTestHandler(t *testing.T) (*login.Handler, *memRecorder) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 0, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	rec := &memRecorder{}
	audit := auditlog.New(rec, logger, auditlog.Config{Auth: "db", Moderation: "off"})
	return login.NewHandler(sessionMgr, audit, ratelimit.NewLoginLimiter(100, 2), logger), rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, events := newTestHandler(t)

	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    " Admin@Attijari.com ",
		"password": "secret",
	})
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	var body struct {
		SignedIn bool   `json:"signed_in"`
		Email    string `json:"email"`
		Role     string `json:"role"`
		ReturnTo string `json:"return_to"`
	}
	rec.DecodeJSON(t, &body)
	if !body.SignedIn || body.Email != "admin@attijari.com" || body.Role != "administrator" || body.ReturnTo != "/dashboard" {
		t.Errorf("body = %+v", body)
	}

	if len(events.events) != 1 || events.events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("audit events = %+v", events.events)
	}
}

func TestHandleLoginPost_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret"}},
		{"empty password", map[string]string{"email": "admin@attijari.com", "password": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, events := newTestHandler(t)
			rec := testutil.NewRecorder()
			handler.HandleLoginPost(rec, testutil.NewJSONRequest("POST", "/login", tt.body))

			rec.AssertStatus(t, http.StatusUnauthorized)
			rec.AssertContains(t, "invalid_credentials")
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no cookie should be set")
			}
			if len(events.events) != 1 || events.events[0].EventType != audit.EventLoginFailed {
				t.Errorf("audit events = %+v", events.events)
			}
		})
	}
}

func TestHandleLoginPost_Throttled(t *testing.T) {
	handler, events := newTestHandler(t)
	body := map[string]string{"email": "karim@attijari.com", "password": ""}

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		handler.HandleLoginPost(rec, testutil.NewJSONRequest("POST", "/login", body))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	body["password"] = "secret"
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, testutil.NewJSONRequest("POST", "/login", body))
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "too_many_attempts")
	if len(events.events) != 3 || events.events[2].EventType != audit.EventLoginFailed {
		t.Errorf("audit events = %+v", events.events)
	}
}

func TestHandleLoginPost_BadBody(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, testutil.NewJSONRequest("POST", "/login", map[string]any{"user": 1}))

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeLogin(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	handler.ServeLogin(rec, testutil.NewRequest("GET", "/login"))
	rec.AssertContains(t, `"signed_in":false`)

	rec = testutil.NewRecorder()
	handler.ServeLogin(rec, testutil.NewAuthenticatedRequest("GET", "/login", testutil.ModeratorUser()))
	rec.AssertContains(t, `"role":"moderator"`)
}
