// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Broker     *authstate.Broker
}

func NewHandler(sessionMgr *auth.SessionManager, broker *authstate.Broker, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Broker:     broker,
	}
}

// ServeLogout handles GET /logout. It works for visitors too: the cookie is
// cleared either way, but SignedOut is only published for a real session.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if signedIn {
		h.Broker.Publish(authstate.Event{
			Kind:      authstate.SignedOut,
			AccountID: u.ID,
			Email:     u.Email,
			IP:        ratelimit.ClientIP(r),
		})
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
