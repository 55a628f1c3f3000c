// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status    int
	Message   string
	Reference string
	BackLabel string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/dashboard")
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

func newPage(r *http.Request, status int, title, msg, backURL string) pageData {
	base := viewdata.NewBaseVM(r, title, backURL)
	base.BackURL = backURL
	return pageData{
		BaseVM:    base,
		Status:    status,
		Message:   msg,
		BackLabel: "Go back",
	}
}
