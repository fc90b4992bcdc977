// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/system/auditlog"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/dalemusser/communityhub/internal/app/system/navigation"
	"github.com/dalemusser/communityhub/internal/app/system/ratelimit"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Limiter:    limiter,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// operatorView is the signed-in operator as the dashboard sees it.
type operatorView struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	ReturnTo string `json:"return_to,omitempty"`
}

func viewOf(u *auth.SessionUser) operatorView {
	return operatorView{SignedIn: true, Email: u.LoginID, Name: u.Name, Role: u.Role}
}

// ServeLogin handles GET /login: it reports who is signed in.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.OK(w, operatorView{})
		return
	}
	respond.OK(w, viewOf(u))
}

// HandleLoginPost handles POST /login with {"email","password"}.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := respond.Decode(w, r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if ok, msg := h.Limiter.Check(r, in.Email); !ok {
		h.AuditLog.LoginFailed(r.Context(), in.Email, "rate limited")
		respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Error: msg, Code: "too_many_attempts"})
		return
	}

	u, err := h.SessionMgr.Login(w, r, in.Email, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.AuditLog.LoginFailed(r.Context(), in.Email, "invalid credentials")
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{
			Error: "Email ou mot de passe invalide",
			Code:  "invalid_credentials",
		})
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	h.Limiter.ResetEmail(u.LoginID)
	h.AuditLog.LoginSuccess(r.Context(), u.LoginID)
	view := viewOf(u)
	view.ReturnTo = navigation.ReturnTo(r, navigation.DefaultLanding)
	respond.OK(w, view)
}
