// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/itemmanager/internal/app/store/metrics"
	"github.com/dalemusser/itemmanager/internal/app/system/gates"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type adminData struct {
	viewdata.BaseVM

	UsersCount int64
	ItemsCount int64
	Partial    bool
}

// ServeAdmin shows the user and item totals. Anyone who is not an admin is
// sent to the user dashboard.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	if res := gates.RequireAdminOrRedirect(w, r, "/user-dashboard"); !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, h.Profiles, h.Items)
	if r.Context().Err() != nil {
		return
	}
	if counts.Partial {
		h.Log.Warn("admin dashboard counts incomplete")
	}

	data := adminData{
		BaseVM:     viewdata.NewBaseVM(r, "Admin Dashboard", "/"),
		UsersCount: counts.Users,
		ItemsCount: counts.Items,
		Partial:    counts.Partial,
	}

	h.Log.Debug("admin dashboard served", zap.String("user", data.UserName))

	templates.Render(w, r, "admin_dashboard", data)
}
