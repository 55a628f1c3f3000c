// internal/app/features/items/routes.go
package items

import (
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /items.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Get("/{id}/delete", h.ServeDelete)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}

// CreateRoutes mounts under /create.
func CreateRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeNew)
	r.Post("/", h.HandleCreate)
	return r
}
