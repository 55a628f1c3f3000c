// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/app/system/gates"
	"github.com/dalemusser/itemmanager/internal/app/system/paging"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// listQuery is the parsed query string of GET /audit.
type listQuery struct {
	Category  string
	EventType string
	StartDate string
	EndDate   string
	Page      int
}

func parseListQuery(r *http.Request) listQuery {
	q := r.URL.Query()
	return listQuery{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
		Page:      paging.ParsePage(r),
	}
}

// filter converts the query to a store filter. Unparseable dates are
// ignored; the end date covers its whole day.
func (lq listQuery) filter() audit.QueryFilter {
	f := audit.QueryFilter{
		Category:  lq.Category,
		EventType: lq.EventType,
		Limit:     paging.PageSize,
		Offset:    paging.Offset(lq.Page),
	}
	if t, err := time.Parse(dateLayout, lq.StartDate); err == nil {
		f.StartTime = &t
	}
	if t, err := time.Parse(dateLayout, lq.EndDate); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	}
	return f
}

// ServeList handles GET /audit: recent audit events, newest first, with
// category, type and date filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireAdmin(w, r, "Only admins can view the audit log.", "/dashboard").OK {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	lq := parseListQuery(r)
	data, err := h.load(ctx, lq)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.LogServerError(w, r, "database error", err, "A database error occurred.", "/dashboard")
		return
	}
	data.BaseVM = viewdata.NewBaseVM(r, "Audit Log", "/admin-dashboard")

	templates.Render(w, r, "audit_list", data)
}

func (h *Handler) load(ctx context.Context, lq listQuery) (listData, error) {
	f := lq.filter()

	events, err := h.Store.Query(ctx, f)
	if err != nil {
		return listData{}, err
	}
	total, err := h.Store.CountByFilter(ctx, f)
	if err != nil {
		return listData{}, err
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, toListItem(e))
	}

	return listData{
		Items:      items,
		Category:   lq.Category,
		EventType:  lq.EventType,
		StartDate:  lq.StartDate,
		EndDate:    lq.EndDate,
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(lq.Category),
		Total:      total,
		Shown:      len(items),
		Pages:      paging.Compute(lq.Page, total, len(items)),
	}, nil
}
