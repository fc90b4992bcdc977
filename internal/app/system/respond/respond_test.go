package respond_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/communityhub/internal/app/ingest"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/communityapi"
	"github.com/dalemusser/communityhub/internal/app/system/inputval"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	_, verr := inputval.ValidateTag(inputval.TagInput{Name: " "})
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", verr, http.StatusUnprocessableEntity},
		{"not found", mutation.ErrNotFound, http.StatusNotFound},
		{"store not found", fmt.Errorf("get: %w", viewstate.ErrNotFound), http.StatusNotFound},
		{"busy", mutation.ErrBusy, http.StatusConflict},
		{"not confirmed", mutation.ErrNotConfirmed, http.StatusPreconditionRequired},
		{"unauthenticated", mutation.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", respond.ErrForbidden, http.StatusForbidden},
		{"network", &communityapi.NetworkError{Op: "list users", StatusCode: 500}, http.StatusBadGateway},
		{"network timeout", &communityapi.NetworkError{Op: "list users", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"malformed", &ingest.MalformedRecordError{Kind: "post", Index: 2, Reason: "missing id"}, http.StatusBadGateway},
		{"unsupported", errors.ErrUnsupported, http.StatusMethodNotAllowed},
		{"bad request", &respond.BadRequestError{Err: errors.New("x")}, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := respond.Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_ValidationFields(t *testing.T) {
	_, err := inputval.ValidateUser(inputval.UserInput{Name: "Al", Email: "bad", Role: "member", Status: "active"})

	rec := httptest.NewRecorder()
	respond.Error(rec, httptest.NewRequest("POST", "/users", nil), zap.NewNop(), err)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var body respond.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "validation" {
		t.Errorf("code = %q", body.Code)
	}
	if body.Fields["name"] != "Le nom doit contenir au moins 3 caractères" || body.Fields["email"] != "Adresse email invalide" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestError_NetworkMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, httptest.NewRequest("POST", "/comments/refresh", nil), nil, &communityapi.NetworkError{StatusCode: 503})

	var body respond.ErrorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "Erreur HTTP 503" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestDecode(t *testing.T) {
	var in inputval.CommentInput

	req := httptest.NewRequest("PATCH", "/comments/1", strings.NewReader(`{"content":"ok"}`))
	if err := respond.Decode(httptest.NewRecorder(), req, &in); err != nil || in.Content != "ok" {
		t.Errorf("Decode() = %v, %+v", err, in)
	}

	for _, body := range []string{"", `{"content":`, `{"unknown":1}`} {
		req := httptest.NewRequest("PATCH", "/comments/1", strings.NewReader(body))
		err := respond.Decode(httptest.NewRecorder(), req, &in)
		if status, _ := respond.Status(err); status != http.StatusBadRequest {
			t.Errorf("Decode(%q) status = %d, want 400", body, status)
		}
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, http.StatusCreated, map[string]string{"id": "11"})
	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("status %d, content-type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}
