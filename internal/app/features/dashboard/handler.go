// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	metricsstore "github.com/dalemusser/itemmanager/internal/app/store/metrics"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const dashboardTimeout = 5 * time.Second

type Handler struct {
	Profiles metricsstore.Counter
	Items    metricsstore.Counter
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profilestore.New(db),
		Items:    itemstore.New(db),
		Log:      logger,
	}
}

// ServeDashboard sends the user to the dashboard for their role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if authz.ParseRole(role).IsAdmin() {
		http.Redirect(w, r, "/admin-dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/user-dashboard", http.StatusSeeOther)
}
