package collections

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"github.com/dalemusser/waffle/pantry/query"
)

// handleDelete handles DELETE /{kind}/{id}?confirm=true.
//
// Without confirm the row moves to the confirmation step and 428 is
// returned; the item stays in the list until a confirmed request arrives.
func (res *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !res.writable(w, r) {
		return
	}
	confirm, _ := strconv.ParseBool(query.Get(r, "confirm"))
	if err := res.edits.Delete(r.Context(), idParam(r), confirm); err != nil {
		res.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

// handleCancelDelete handles POST /{kind}/{id}/cancel-delete.
func (res *resource[T]) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	if !res.writable(w, r) {
		return
	}
	if err := res.edits.CancelDelete(idParam(r)); err != nil {
		res.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}
