package collections

import (
	"net/http"
	"time"

	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/paging"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listView[T any] struct {
	Kind     console.Kind                    `json:"kind"`
	Term     string                          `json:"term"`
	Loading  bool                            `json:"loading"`
	Error    string                          `json:"error,omitempty"`
	LoadedAt time.Time                       `json:"loaded_at"`
	Selected *viewstate.Selection[T]         `json:"selected,omitempty"`
	Rows     map[models.ID]mutation.RowState `json:"rows,omitempty"`
	Page     paging.Page[T]                  `json:"page"`
}

// serveList handles GET /{kind}?q=&start=&size=.
//
// A q parameter (even empty) replaces the collection's search term; without
// it the last term stays in effect.
func (res *resource[T]) serveList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("q") {
		res.store.SetTerm(query.Get(r, "q"))
	}
	st := res.store.Snapshot()
	respond.OK(w, listView[T]{
		Kind:     res.kind,
		Term:     st.Term,
		Loading:  st.Loading,
		Error:    st.Error,
		LoadedAt: st.LoadedAt,
		Selected: st.Selected,
		Rows:     res.edits.States(),
		Page:     paging.FromRequest(r, st.Items),
	})
}

// handleDismissError handles DELETE /{kind}/error. The collection itself
// is left as it is.
func (res *resource[T]) handleDismissError(w http.ResponseWriter, r *http.Request) {
	res.store.ClearError()
	respond.NoContent(w)
}

// serveStats handles GET /{kind}/stats.
func (res *resource[T]) serveStats(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, res.h.Console.KindStats(res.kind))
}

// handleRefresh handles POST /{kind}/refresh. On failure the collection
// keeps what it had and the message is also recorded on the store.
func (res *resource[T]) handleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := res.h.Console.Refresh(r.Context(), res.kind)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	respond.OK(w, result)
}
