// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the role dispatcher at "/dashboard".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeDashboard)
	return r
}

// AdminRoutes wires "/admin-dashboard".
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeAdmin)
	return r
}

// UserRoutes wires "/user-dashboard".
func UserRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeUser)
	return r
}
