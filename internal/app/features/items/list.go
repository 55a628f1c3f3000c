// internal/app/features/items/list.go
package items

import (
	"context"
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/policy/itempolicy"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeList shows the viewer's items, or every item for an admin, newest
// first. A successful fetch replaces the viewer's mirror.
//
// Route: GET /items
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, uid, ok := itempolicy.Actor(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/items", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		list []models.Item
		err  error
	)
	if role.IsAdmin() {
		list, err = h.Items.ListAll(ctx)
	} else {
		list, err = h.Items.ListByOwner(ctx, uid)
	}
	if err != nil {
		if clientGone(r) {
			return
		}
		h.ErrLog.LogServerError(w, r, "list items failed", err, "Failed to load items.", "/dashboard")
		return
	}

	viewer := uid.Hex()
	h.Mirror.Set(viewer, list)
	h.Log.Debug("items listed", zap.String("viewer", viewer), zap.Int("count", len(list)))

	h.renderList(w, r, list, "", http.StatusOK)
}

// renderList renders the list page, or only the table for HTMX requests.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, list []models.Item, errMsg string, status int) {
	data := listData{
		BaseVM:   viewdata.NewBaseVM(r, "Items", "/dashboard"),
		Items:    list,
		Error:    errMsg,
		AllItems: authz.IsAdmin(r),
	}

	if r.Header.Get("HX-Request") == "true" {
		if status != http.StatusOK {
			w.WriteHeader(status)
		}
		templates.RenderSnippet(w, "items_table", data)
		return
	}

	data.BaseVM = data.BaseVM.WithFlash(h.popFlash(w, r))
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, "items_list", data)
}

// renderMirror re-renders the list from the viewer's mirror with msg.
func (h *Handler) renderMirror(w http.ResponseWriter, r *http.Request, viewer, msg string, status int) {
	list, _ := h.Mirror.List(viewer)
	h.renderList(w, r, list, msg, status)
}
