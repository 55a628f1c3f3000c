// internal/app/features/items/view.go
package items

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	"github.com/dalemusser/itemmanager/internal/app/policy/itempolicy"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/htmlsanitize"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgNotFound = "Item not found"

// loadForActor fetches the item named by the {id} URL param and checks
// that the request user may see it. It writes the response itself and
// returns ok=false on any failure. Items the actor may not see are reported
// as not found.
func (h *Handler) loadForActor(w http.ResponseWriter, r *http.Request) (models.Item, bool) {
	role, uid, ok := itempolicy.Actor(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return models.Item{}, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, msgNotFound, "/items")
		return models.Item{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	switch {
	case errors.Is(err, itemstore.ErrNotFound):
		uierrors.RenderNotFound(w, r, msgNotFound, "/items")
		return models.Item{}, false
	case err != nil:
		if clientGone(r) {
			return models.Item{}, false
		}
		h.ErrLog.LogServerError(w, r, "get item failed", err, "Failed to load item.", "/items")
		return models.Item{}, false
	}

	if !itempolicy.CanView(role, it.UserID, uid) {
		uierrors.RenderNotFound(w, r, msgNotFound, "/items")
		return models.Item{}, false
	}
	return it, true
}

// ServeView shows one item.
//
// Route: GET /items/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadForActor(w, r)
	if !ok {
		return
	}
	role, uid, _ := itempolicy.Actor(r)

	data := viewData{
		BaseVM:      viewdata.NewBaseVM(r, it.Title, "/items").WithFlash(h.popFlash(w, r)),
		Item:        it,
		Description: htmlsanitize.PrepareForDisplay(it.Description),
		CanEdit:     itempolicy.CanEdit(role, it.UserID, uid),
		CanDelete:   itempolicy.CanDelete(role, it.UserID, uid),
	}
	templates.Render(w, r, "item_view", data)
}
