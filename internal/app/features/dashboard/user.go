// internal/app/features/dashboard/user.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type userData struct {
	viewdata.BaseVM

	AccountID   string
	Email       string
	DisplayName string
}

// ServeUser shows the signed-in account. Everything comes from the
// request context, so no store call is made.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := userData{
		BaseVM:      viewdata.NewBaseVM(r, "Dashboard", "/"),
		AccountID:   u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
	}

	h.Log.Debug("user dashboard served", zap.String("user", u.ID))

	templates.Render(w, r, "user_dashboard", data)
}
