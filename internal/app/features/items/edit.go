// internal/app/features/items/edit.go
package items

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	"github.com/dalemusser/itemmanager/internal/app/policy/itempolicy"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/formutil"
	"github.com/dalemusser/itemmanager/internal/app/system/inputval"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const msgFillRequiredValid = "Please fill in all required fields with valid values"

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f", p)
}

func (h *Handler) editForm(r *http.Request, it models.Item, in inputval.ItemInput) formData {
	data := formData{
		IsEdit:     true,
		Action:     "/items/" + it.ID.Hex() + "/edit",
		ID:         it.ID.Hex(),
		ItemTitle:  in.Title,
		Desc:       in.Description,
		Price:      in.Price,
		Category:   in.Category,
		Categories: models.ItemCategories,
	}
	formutil.SetBase(&data.Base, r, "Edit Item", "/items/"+it.ID.Hex())
	return data
}

// loadEditable loads the item and checks the actor may edit it.
func (h *Handler) loadEditable(w http.ResponseWriter, r *http.Request) (models.Item, bool) {
	it, ok := h.loadForActor(w, r)
	if !ok {
		return models.Item{}, false
	}
	role, uid, _ := itempolicy.Actor(r)
	if !itempolicy.CanEdit(role, it.UserID, uid) {
		uierrors.RenderForbidden(w, r, "You can only edit your own items", "/items/"+it.ID.Hex())
		return models.Item{}, false
	}
	return it, true
}

// ServeEdit renders the edit form prefilled with the stored item.
//
// Route: GET /items/{id}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadEditable(w, r)
	if !ok {
		return
	}
	in := inputval.ItemInput{
		Title:       it.Title,
		Description: it.Description,
		Price:       formatPrice(it.Price),
		Category:    it.Category,
	}
	templates.Render(w, r, "item_form", h.editForm(r, it, in))
}

// HandleEdit validates and saves the edit. On failure the form stays
// editable with the error shown.
//
// Route: POST /items/{id}/edit
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/items")
		return
	}

	it, ok := h.loadEditable(w, r)
	if !ok {
		return
	}

	in := readItemForm(r)
	renderWithError := func(msg string) {
		data := h.editForm(r, it, in)
		data.SetError(msg)
		templates.Render(w, r, "item_form", data)
	}

	if res := inputval.Validate(in); res.HasErrors() {
		if res.MissingRequired() {
			renderWithError(msgFillRequiredValid)
		} else {
			renderWithError(res.First())
		}
		return
	}
	if blankText(in) {
		renderWithError(msgFillRequiredValid)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Items.Update(ctx, it.ID, fieldsFrom(in)); err != nil {
		if clientGone(r) {
			return
		}
		if errors.Is(err, itemstore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, msgNotFound, "/items")
			return
		}
		h.Log.Error("update item failed", zap.Error(err), zap.String("item_id", it.ID.Hex()))
		renderWithError("Failed to update item: " + err.Error())
		return
	}

	h.setFlash(w, r, "Item updated successfully!")
	dest := "/items/" + it.ID.Hex()
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
