// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/aggregate"
	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"go.uber.org/zap"
)

type Handler struct {
	Console *console.Console
	Log     *zap.Logger
}

func NewHandler(c *console.Console, logger *zap.Logger) *Handler {
	return &Handler{
		Console: c,
		Log:     logger,
	}
}

// collectionStatus is the load state of one collection.
type collectionStatus struct {
	Count   int    `json:"count"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

type dashboardView struct {
	Operator    operator                          `json:"operator"`
	Overview    aggregate.OverviewStats           `json:"overview"`
	Collections map[console.Kind]collectionStatus `json:"collections"`
}

type operator struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	CanModerate    bool   `json:"can_moderate"`
	CanManageUsers bool   `json:"can_manage_users"`
}

// ServeDashboard handles GET /dashboard: the overview cards and charts
// computed from whatever the console currently holds.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, name, email, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, mutation.ErrUnauthenticated)
		return
	}

	c := h.Console
	respond.OK(w, dashboardView{
		Operator: operator{
			Name:           name,
			Email:          email,
			Role:           role,
			CanModerate:    authz.CanModerate(r),
			CanManageUsers: authz.CanManageUsers(r),
		},
		Overview: c.Stats(),
		Collections: map[console.Kind]collectionStatus{
			console.Users:    {Count: c.UserStore().Len(), Loading: c.UserStore().Loading(), Error: c.UserStore().Err()},
			console.Posts:    {Count: c.PostStore().Len(), Loading: c.PostStore().Loading(), Error: c.PostStore().Err()},
			console.Comments: {Count: c.CommentStore().Len(), Loading: c.CommentStore().Loading(), Error: c.CommentStore().Err()},
			console.Tags:     {Count: c.TagStore().Len(), Loading: c.TagStore().Loading(), Error: c.TagStore().Err()},
		},
	})
}

// HandleRefresh handles POST /dashboard/refresh. Each collection reports
// its own outcome; one failing source does not fail the request.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	results, err := h.Console.RefreshAll(r.Context())
	if err != nil {
		h.Log.Warn("dashboard refresh incomplete", zap.Error(err))
	}
	respond.OK(w, map[string]any{"results": results})
}
