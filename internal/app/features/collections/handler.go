// internal/app/features/collections/handler.go

// Package collections serves the console's entity collections (users,
// posts, comments and tags) as JSON: search and paging, the view/edit
// selection, optimistic edits and confirmed deletes.
package collections

import (
	"context"
	"net/http"

	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/mutation"
	"github.com/dalemusser/communityhub/internal/app/store/viewstate"
	"github.com/dalemusser/communityhub/internal/app/system/authz"
	"github.com/dalemusser/communityhub/internal/app/system/respond"
	"github.com/dalemusser/communityhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
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

// editFunc decodes a form with decode and applies it to id.
type editFunc[T any] func(ctx context.Context, id models.ID, decode func(any) error) (T, error)

// createFunc decodes a form with decode and adds the item it describes.
type createFunc[T any] func(ctx context.Context, decode func(any) error) (T, error)

// resource is one collection as the handlers see it.
type resource[T any] struct {
	h        *Handler
	kind     console.Kind
	store    *viewstate.Store[T]
	edits    *mutation.Coordinator[T]
	canWrite func(*http.Request) bool
	edit     editFunc[T]
	create   createFunc[T] // nil when the collection has no create form
	columns  columns[T]
}

func editWith[I, T any](fn func(context.Context, models.ID, I) (T, error)) editFunc[T] {
	return func(ctx context.Context, id models.ID, decode func(any) error) (T, error) {
		var in I
		if err := decode(&in); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, id, in)
	}
}

func createWith[I, T any](fn func(context.Context, I) (T, error)) createFunc[T] {
	return func(ctx context.Context, decode func(any) error) (T, error) {
		var in I
		if err := decode(&in); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, in)
	}
}

func (h *Handler) users() *resource[models.User] {
	c := h.Console
	return &resource[models.User]{
		h: h, kind: console.Users, store: c.UserStore(), edits: c.UserEdits(),
		canWrite: authz.CanManageUsers,
		edit:     editWith(c.EditUser),
		create:   createWith(c.CreateUser),
		columns:  userColumns,
	}
}

func (h *Handler) posts() *resource[models.Post] {
	c := h.Console
	return &resource[models.Post]{
		h: h, kind: console.Posts, store: c.PostStore(), edits: c.PostEdits(),
		canWrite: authz.CanModerate,
		edit:     editWith(c.EditPost),
		columns:  postColumns,
	}
}

func (h *Handler) comments() *resource[models.Comment] {
	c := h.Console
	return &resource[models.Comment]{
		h: h, kind: console.Comments, store: c.CommentStore(), edits: c.CommentEdits(),
		canWrite: authz.CanModerate,
		edit:     editWith(c.EditComment),
		columns:  commentColumns,
	}
}

func (h *Handler) tags() *resource[models.Tag] {
	c := h.Console
	return &resource[models.Tag]{
		h: h, kind: console.Tags, store: c.TagStore(), edits: c.TagEdits(),
		canWrite: authz.CanModerate,
		edit:     editWith(c.EditTag),
		create:   createWith(c.CreateTag),
		columns:  tagColumns,
	}
}

// writable rejects operators whose role may not change this collection.
func (res *resource[T]) writable(w http.ResponseWriter, r *http.Request) bool {
	if res.canWrite(r) {
		return true
	}
	respond.Error(w, r, res.h.Log, respond.ErrForbidden)
	return false
}

func (res *resource[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	respond.Error(w, r, res.h.Log.With(zap.String("kind", string(res.kind))), err)
}

func idParam(r *http.Request) models.ID {
	return models.ParseID(chi.URLParam(r, "id"))
}
