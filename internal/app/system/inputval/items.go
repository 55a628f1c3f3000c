// internal/app/system/inputval/items.go
package inputval

import (
	"net/http"
	"strings"
)

// ItemInput is the create/edit item form.
type ItemInput struct {
	Title       string `validate:"required,max=200" label:"Title"`
	Description string `validate:"required,max=5000" label:"Description"`
	Price       string `validate:"required,price" label:"Price"`
	Category    string `validate:"omitempty,category" label:"Category"`
}

// ItemFromForm reads and trims the item fields from a parsed form.
func ItemFromForm(r *http.Request) ItemInput {
	return ItemInput{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
	}
}

// PriceValue returns the parsed price. Call it only after Validate passed.
func (in ItemInput) PriceValue() float64 {
	p, _ := ParsePrice(in.Price)
	return p
}

// MissingRequired reports whether the failures are the "fill in the form"
// kind (a blank field or a bad price) rather than a length or enum problem.
func (r *Result) MissingRequired() bool {
	return r.HasTag("required", "price")
}

// SignupInput is the signup form.
type SignupInput struct {
	Email       string `validate:"required,emailaddr,max=254" label:"Email"`
	DisplayName string `validate:"required,max=100" label:"Display name"`
	Password    string `validate:"required" label:"Password"`
	Confirm     string `validate:"required,eqfield=Password" label:"Password confirmation"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `validate:"required,emailaddr" label:"Email"`
	Password string `validate:"required" label:"Password"`
}
