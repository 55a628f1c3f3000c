// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

func render(w http.ResponseWriter, r *http.Request, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(data.Status)
	templates.Render(w, r, "error_page", data)
}

func backOr(r *http.Request, backURL, fallback string) string {
	if backURL != "" {
		return backURL
	}
	return httpnav.ResolveBackURL(r, fallback)
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	data := newPage(r, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.", backURL)
	data.BackLabel = "Sign in"
	render(w, r, data)
}

// RenderForbidden shows a friendly access error page with a message.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, newPage(r, http.StatusForbidden, "Access denied", msg, backOr(r, backURL, "/")))
}

// RenderNotFound shows the not-found state.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "We couldn't find what you were looking for."
	}
	render(w, r, newPage(r, http.StatusNotFound, "Not found", msg, backOr(r, backURL, "/")))
}

// RenderBadRequest shows a 400 page with msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, newPage(r, http.StatusBadRequest, "Bad request", msg, backOr(r, backURL, "/")))
}

// RenderServerError shows a 500 page with msg.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	render(w, r, newPage(r, http.StatusInternalServerError, "Something went wrong", msg, backOr(r, backURL, "/")))
}

/*─────────────────────────────────────────────────────────────────────────────*
| HTMX variants                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// IsHTMX reports whether r came from an HTMX swap.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// HTMXError writes an inline error banner for HTMX requests. For full page
// requests it calls fallback instead.
func HTMXError(w http.ResponseWriter, r *http.Request, status int, msg string, fallback func()) {
	if !IsHTMX(r) {
		fallback()
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#flash")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(status)
	templates.RenderSnippet(w, "error_banner", pageData{Status: status, Message: msg})
}

// HTMXBadRequest is HTMXError with a 400 that falls back to RenderBadRequest.
func HTMXBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusBadRequest, msg, func() { RenderBadRequest(w, r, msg, backURL) })
}

// HTMXForbidden is HTMXError with a 403 that falls back to RenderForbidden.
func HTMXForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusForbidden, msg, func() { RenderForbidden(w, r, msg, backURL) })
}

// HTMXNotFound is HTMXError with a 404 that falls back to RenderNotFound.
func HTMXNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	HTMXError(w, r, http.StatusNotFound, msg, func() { RenderNotFound(w, r, msg, backURL) })
}
