// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
//   - The user's previously entered values (echoed back)
//   - An error message explaining what went wrong
//
// Embed Base in a form's view model and populate it with SetBase:
//
//	type itemFormData struct {
//		formutil.Base
//		Title string
//		Price string
//	}
//
//	data := itemFormData{Title: title, Price: price}
//	formutil.SetBase(&data.Base, r, "New Item", "/items")
//	data.SetError("Please fill in all required fields")
//	templates.Render(w, r, "item_form", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error string
}

// SetBase populates the common Base fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = msg
}

// HasError reports whether an error message is set.
func (b *Base) HasError() bool {
	return b.Error != ""
}
