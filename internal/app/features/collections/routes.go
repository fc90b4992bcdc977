// internal/app/features/collections/routes.go
package collections

import (
	"github.com/dalemusser/communityhub/internal/app/console"
	"github.com/dalemusser/communityhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter for one collection. Typically:
//
//	r.Mount("/users", collections.Routes(h, sm, console.Users))
func Routes(h *Handler, sm *auth.SessionManager, k console.Kind) chi.Router {
	switch k {
	case console.Users:
		return mount(h.users(), sm)
	case console.Posts:
		return mount(h.posts(), sm)
	case console.Comments:
		return mount(h.comments(), sm)
	default:
		return mount(h.tags(), sm)
	}
}

func mount[T any](res *resource[T], sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", res.serveList)
		if res.create != nil {
			pr.Post("/", res.handleCreate)
		}
		pr.Get("/stats", res.serveStats)
		pr.Get("/export.csv", res.serveExport)
		pr.Post("/refresh", res.handleRefresh)
		pr.Delete("/error", res.handleDismissError)
		pr.Get("/states", res.serveStates)
		pr.Get("/selection", res.serveSelection)
		pr.Delete("/selection", res.handleCloseSelection)

		// View / Edit / Delete single item
		pr.Get("/{id}", res.serveView)
		pr.Get("/{id}/edit", res.serveEdit)
		pr.Get("/{id}/state", res.serveState)
		pr.Patch("/{id}", res.handleEdit)
		pr.Delete("/{id}", res.handleDelete)
		pr.Post("/{id}/cancel-delete", res.handleCancelDelete)
	})

	return r
}
