// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/app/system/paging"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	ID            string
	Timestamp     time.Time
	Category      string
	EventType     string
	Account       string // email, else the account id, else empty
	IP            string
	Success       bool
	FailureReason string
	Details       map[string]string
}

type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	Categories []categoryOption
	EventTypes []string

	Total int64
	Shown int
	paging.Pages
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAccount, Label: "Account"},
	}
}

// eventTypesForCategory returns the event types for a category, or every
// type when category is empty. Unknown categories have none.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventSignup,
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
	}
	accountEvents := []string{
		audit.EventAccountDeleted,
		audit.EventAccountDeleteFailed,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAccount:
		return accountEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(accountEvents))
		all = append(all, authEvents...)
		return append(all, accountEvents...)
	default:
		return nil
	}
}

func toListItem(e audit.Event) listItem {
	item := listItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		Account:       e.Email,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if item.Account == "" && e.AccountID != nil {
		item.Account = e.AccountID.Hex()
	}
	return item
}
