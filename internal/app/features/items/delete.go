// internal/app/features/items/delete.go
package items

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/policy/itempolicy"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgConfirmDelete = "Please confirm deletion"
	msgDeleteOwn     = "You can only delete your own items"
	msgDeleteFailed  = "Failed to delete item"
)

// ServeDelete renders the delete confirmation page.
//
// Route: GET /items/{id}/delete
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadForActor(w, r)
	if !ok {
		return
	}
	data := deleteData{
		BaseVM: viewdata.NewBaseVM(r, "Delete Item", "/items/"+it.ID.Hex()),
		Item:   it,
	}
	templates.Render(w, r, "item_delete", data)
}

// HandleDelete removes an item. The row leaves the viewer's list before
// the store call and is put back if the store reports a failure.
//
// Route: POST /items/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	role, uid, ok := itempolicy.Actor(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	viewer := uid.Hex()

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/items")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.renderMirror(w, r, viewer, msgNotFound, http.StatusNotFound)
		return
	}

	if r.PostFormValue("confirm") != "yes" {
		h.renderMirror(w, r, viewer, msgConfirmDelete, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	owner := primitive.NilObjectID
	if it, found := h.Mirror.Find(viewer, id); found {
		owner = it.UserID
	} else {
		it, err := h.Items.GetByID(ctx, id)
		switch {
		case errors.Is(err, itemstore.ErrNotFound):
			h.renderMirror(w, r, viewer, msgNotFound, http.StatusNotFound)
			return
		case err != nil:
			if clientGone(r) {
				return
			}
			h.Log.Error("get item for delete failed", zap.Error(err), zap.String("item_id", id.Hex()))
			h.renderMirror(w, r, viewer, msgDeleteFailed, http.StatusInternalServerError)
			return
		}
		owner = it.UserID
	}

	if !itempolicy.CanDelete(role, owner, uid) {
		h.Log.Warn("delete refused",
			zap.String("item_id", id.Hex()),
			zap.String("actor", viewer),
			zap.String("owner", owner.Hex()))
		h.renderMirror(w, r, viewer, msgDeleteOwn, http.StatusForbidden)
		return
	}

	restore := h.Mirror.Remove(viewer, id)
	if err := h.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, itemstore.ErrNotFound) {
			// Already gone; the list is right without it.
			h.Log.Info("item already deleted", zap.String("item_id", id.Hex()))
		} else {
			restore()
			h.Log.Error("delete item failed", zap.Error(err), zap.String("item_id", id.Hex()))
			if clientGone(r) {
				return
			}
			h.renderMirror(w, r, viewer, msgDeleteFailed, http.StatusInternalServerError)
			return
		}
	}

	h.Log.Debug("item deleted", zap.String("item_id", id.Hex()), zap.String("actor", viewer))

	if r.Header.Get("HX-Request") == "true" {
		h.renderMirror(w, r, viewer, "", http.StatusOK)
		return
	}
	h.setFlash(w, r, "Item deleted successfully!")
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}
