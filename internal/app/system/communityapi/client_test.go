package communityapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", srv.Client(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	tests := []string{"", "ftp://example.com", "::bad"}
	for _, raw := range tests {
		if _, err := New(raw, nil, nil); err == nil {
			t.Errorf("New(%q) expected error", raw)
		}
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c, err := New("http://localhost:8081/api/", nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.BaseURL(); got != "http://localhost:8081/api" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestListUsers_BareArray(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"name":"Fatima"},{"id":"2","name":"Karim"}]`)
	}))

	recs, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if n, ok := recs[0]["id"].(json.Number); !ok || n.String() != "1" {
		t.Errorf("id decoded as %T %v, want json.Number 1", recs[0]["id"], recs[0]["id"])
	}
	if recs[1]["id"] != "2" {
		t.Errorf("string id = %v", recs[1]["id"])
	}
}

func TestListPosts_Envelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"posts":[{"id":10,"title":"Bonjour"}],"total":1}`)
	}))

	recs, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(recs) != 1 || recs[0]["title"] != "Bonjour" {
		t.Errorf("recs = %v", recs)
	}
}

func TestListComments_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, `oops`, 500},
		{"not json", http.StatusOK, `<html>`, 0},
		{"envelope without list", http.StatusOK, `{"items":[]}`, 0},
		{"empty body", http.StatusOK, ``, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			_, err := c.ListComments(context.Background())
			var ne *NetworkError
			if !errors.As(err, &ne) {
				t.Fatalf("err = %v, want *NetworkError", err)
			}
			if ne.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", ne.StatusCode, tt.wantStatus)
			}
			if ne.Op != "list comments" {
				t.Errorf("Op = %q", ne.Op)
			}
		})
	}
}

func TestListUsers_LargeBody(t *testing.T) {
	// Three users with 12 MiB bios put the page well past 32 MiB.
	bio := strings.Repeat("a", 12<<20)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, "[")
		for i := 1; i <= 3; i++ {
			if i > 1 {
				io.WriteString(w, ",")
			}
			fmt.Fprintf(w, `{"id":%d,"name":"User %d","bio":%q}`, i, i, bio)
		}
		io.WriteString(w, "]")
	}))

	recs, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if got, _ := recs[2]["bio"].(string); len(got) != len(bio) {
		t.Errorf("bio length = %d, want %d", len(got), len(bio))
	}
}

func TestList_Timeout(t *testing.T) {
	block := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListUsers(ctx)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
	if !ne.Timeout() {
		t.Errorf("Timeout() = false for %v", err)
	}
}

func TestUpdateComment(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/comments/7" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"id":7,"content":"B","likes":3}`)
	}))

	rec, err := c.UpdateComment(context.Background(), "7", "B")
	if err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	if gotBody["content"] != "B" {
		t.Errorf("sent body = %v", gotBody)
	}
	if rec["content"] != "B" {
		t.Errorf("echoed record = %v", rec)
	}
}

func TestUpdateComment_EmptyResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec, err := c.UpdateComment(context.Background(), "7", "B")
	if err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	if rec["id"] != "7" || rec["content"] != "B" {
		t.Errorf("rec = %v", rec)
	}
}

func TestDeleteComment(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"not found", http.StatusNotFound, true},
		{"server error", http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/api/comments/3" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			err := c.DeleteComment(context.Background(), "3")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.status == http.StatusNotFound {
				var ne *NetworkError
				if !errors.As(err, &ne) || !ne.NotFound() {
					t.Errorf("expected NotFound network error, got %v", err)
				}
			}
		})
	}
}

func TestPing(t *testing.T) {
	ok := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	if err := ok.Ping(context.Background()); err != nil {
		t.Errorf("Ping on 405: %v", err)
	}

	down := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	if err := down.Ping(context.Background()); !IsNetworkError(err) {
		t.Errorf("Ping on 503 = %v, want NetworkError", err)
	}
}

func TestNetworkError_Message(t *testing.T) {
	tests := []struct {
		err  *NetworkError
		want string
	}{
		{&NetworkError{Op: "list users", StatusCode: 500}, "list users: HTTP 500"},
		{&NetworkError{Op: "list users", Err: errors.New("refused")}, "list users: refused"},
		{&NetworkError{Op: "ping"}, "ping: request failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("x"), "Une erreur est survenue"},
		{&NetworkError{Op: "list users", StatusCode: 500}, "Erreur HTTP 500"},
		{&NetworkError{Op: "list users", Err: context.DeadlineExceeded}, "Le serveur ne répond pas (délai dépassé)"},
		{&NetworkError{Op: "list users", Err: errors.New("decode response: bad")}, "Réponse du serveur illisible"},
		{&NetworkError{Op: "list users", Err: errors.New("connection refused")}, "Impossible de joindre le serveur"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
