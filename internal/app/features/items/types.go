// internal/app/features/items/types.go
package items

import (
	"html/template"

	"github.com/dalemusser/itemmanager/internal/app/system/formutil"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/itemmanager/internal/domain/models"
)

// listData is the view model for the items list page and its table partial.
type listData struct {
	viewdata.BaseVM

	Items []models.Item
	Error string
	// AllItems is set for admins, whose list spans every owner.
	AllItems bool
}

// viewData is the view model for the single item page.
type viewData struct {
	viewdata.BaseVM

	Item        models.Item
	Description template.HTML
	CanEdit     bool
	CanDelete   bool
}

// formData is shared by the create and edit forms.
type formData struct {
	formutil.Base

	IsEdit     bool
	Action     string
	ID         string
	ItemTitle  string
	Desc       string
	Price      string
	Category   string
	Categories []string
}

// deleteData is the view model for the delete confirmation page.
type deleteData struct {
	viewdata.BaseVM

	Item  models.Item
	Error string
}
