// internal/app/features/items/create.go
package items

import (
	"context"
	"net/http"

	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/formutil"
	"github.com/dalemusser/itemmanager/internal/app/system/htmlsanitize"
	"github.com/dalemusser/itemmanager/internal/app/system/inputval"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgFillRequired = "Please fill in all required fields"

// readItemForm parses the item fields. The free text is kept as typed;
// templates escape it on output.
func readItemForm(r *http.Request) inputval.ItemInput {
	return inputval.ItemFromForm(r)
}

// blankText reports whether the title or description has no visible text,
// so a title made only of tags counts as missing.
func blankText(in inputval.ItemInput) bool {
	return htmlsanitize.IsBlank(in.Title) || htmlsanitize.IsBlank(in.Description)
}

func fieldsFrom(in inputval.ItemInput) itemstore.Fields {
	return itemstore.Fields{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.PriceValue(),
		Category:    in.Category,
	}
}

func (h *Handler) newForm(r *http.Request, in inputval.ItemInput) formData {
	data := formData{
		Action:     "/create",
		ItemTitle:  in.Title,
		Desc:       in.Description,
		Price:      in.Price,
		Category:   in.Category,
		Categories: models.ItemCategories,
	}
	formutil.SetBase(&data.Base, r, "New Item", "/items")
	return data
}

// ServeNew renders the "New Item" form.
//
// Route: GET /create
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "item_form", h.newForm(r, inputval.ItemInput{}))
}

// HandleCreate validates the form and inserts the item. The insert is
// acknowledged before the redirect, so the list that follows includes it.
//
// Route: POST /create
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/create")
		return
	}

	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login?return=/create", http.StatusSeeOther)
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad session user id", err, "Your session is invalid. Please log in again.", "/login")
		return
	}

	in := readItemForm(r)
	renderWithError := func(msg string) {
		data := h.newForm(r, in)
		data.SetError(msg)
		templates.Render(w, r, "item_form", data)
	}

	if res := inputval.Validate(in); res.HasErrors() {
		if res.MissingRequired() {
			renderWithError(msgFillRequired)
		} else {
			renderWithError(res.First())
		}
		return
	}
	if blankText(in) {
		renderWithError(msgFillRequired)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	owner := models.Account{ID: ownerID, Email: u.Email, DisplayName: u.Name}
	created, err := h.Items.Create(ctx, owner, fieldsFrom(in))
	if err != nil {
		if clientGone(r) {
			return
		}
		h.Log.Error("create item failed", zap.Error(err), zap.String("user_id", u.ID))
		renderWithError("Failed to create item: " + err.Error())
		return
	}

	h.Log.Debug("item created", zap.String("item_id", created.ID.Hex()), zap.String("user_id", u.ID))
	h.setFlash(w, r, "Item created successfully!")

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/items")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}
