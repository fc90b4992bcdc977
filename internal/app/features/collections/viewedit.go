package collections

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"github.com/dalemusser/communityhub/internal/domain/models"
)

type itemView[T any] struct {
	ID    models.ID         `json:"id"`
	Mode  viewstate.Mode    `json:"mode"`
	State mutation.RowState `json:"state"`
	Item  T                 `json:"item"`
}

type selectionView[T any] struct {
	Selected *viewstate.Selection[T] `json:"selected"`
}

// serveView handles GET /{kind}/{id}: the item is opened read-only.
func (res *resource[T]) serveView(w http.ResponseWriter, r *http.Request) {
	res.open(w, r, viewstate.ModeView)
}

// serveEdit handles GET /{kind}/{id}/edit: the item is opened in the edit
// form.
func (res *resource[T]) serveEdit(w http.ResponseWriter, r *http.Request) {
	if !res.writable(w, r) {
		return
	}
	res.open(w, r, viewstate.ModeEdit)
}

func (res *resource[T]) open(w http.ResponseWriter, r *http.Request, mode viewstate.Mode) {
	id := idParam(r)
	item, err := res.edits.Open(id, mode)
	if err != nil {
		res.fail(w, r, err)
		return
	}
	respond.OK(w, itemView[T]{ID: id, Mode: mode, State: res.edits.State(id), Item: item})
}

// handleEdit handles PATCH /{kind}/{id}. The change shows immediately and
// is rolled back if the community API rejects it.
func (res *resource[T]) handleEdit(w http.ResponseWriter, r *http.Request) {
	if !res.writable(w, r) {
		return
	}
	id := idParam(r)
	item, err := res.edit(r.Context(), id, func(v any) error { return respond.Decode(w, r, v) })
	if err != nil {
		res.fail(w, r, err)
		return
	}
	respond.OK(w, itemView[T]{ID: id, State: res.edits.State(id), Item: item})
}

// serveSelection handles GET /{kind}/selection.
func (res *resource[T]) serveSelection(w http.ResponseWriter, r *http.Request) {
	var out selectionView[T]
	if sel, ok := res.store.Selection(); ok {
		out.Selected = &sel
	}
	respond.OK(w, out)
}

// handleCloseSelection handles DELETE /{kind}/selection: the open modal is
// dismissed. A failed row is acknowledged at the same time.
func (res *resource[T]) handleCloseSelection(w http.ResponseWriter, r *http.Request) {
	if sel, ok := res.store.Selection(); ok {
		res.edits.Close(sel.ID)
	} else {
		res.store.Deselect()
	}
	respond.NoContent(w)
}

// serveState handles GET /{kind}/{id}/state.
func (res *resource[T]) serveState(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, res.edits.State(idParam(r)))
}

// serveStates handles GET /{kind}/states: every row that is not idle.
func (res *resource[T]) serveStates(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, res.edits.States())
}
