package collections

import (
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/system/respond"
)

// handleCreate handles POST /{kind} for collections with a create form.
func (res *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !res.writable(w, r) {
		return
	}
	item, err := res.create(r.Context(), func(v any) error { return respond.Decode(w, r, v) })
	if err != nil {
		res.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, item)
}
