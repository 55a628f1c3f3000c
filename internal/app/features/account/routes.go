// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /delete-account.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeDelete)
	r.Post("/", h.HandleDelete)
	return r
}
