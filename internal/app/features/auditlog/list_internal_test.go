package auditlog

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/app/system/paging"
	"github.com/dalemusser/itemmanager/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseListQuery(t *testing.T) {
	lq := parseListQuery(httptest.NewRequest("GET",
		"/audit?category=+auth+&event_type=logout&start_date=2026-01-02&end_date=2026-01-03&page=3", nil))
	assert.Equal(t, "auth", lq.Category)
	assert.Equal(t, 3, lq.Page)

	f := lq.filter()
	assert.Equal(t, int64(paging.PageSize), f.Limit)
	assert.Equal(t, int64(2*paging.PageSize), f.Offset)
	require.NotNil(t, f.StartTime)
	require.NotNil(t, f.EndTime)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), *f.StartTime)
	assert.Equal(t, 3, f.EndTime.Day())
	assert.Equal(t, 23, f.EndTime.Hour())
}

func TestParseListQuery_BadInputFallsBack(t *testing.T) {
	lq := parseListQuery(httptest.NewRequest("GET", "/audit?page=-1&start_date=yesterday", nil))
	assert.Equal(t, 1, lq.Page)

	f := lq.filter()
	assert.Zero(t, f.Offset)
	assert.Nil(t, f.StartTime)
	assert.Nil(t, f.EndTime)
}

func TestEventTypesForCategory(t *testing.T) {
	assert.Contains(t, eventTypesForCategory(audit.CategoryAuth), audit.EventLoginSuccess)
	assert.NotContains(t, eventTypesForCategory(audit.CategoryAuth), audit.EventAccountDeleted)
	assert.Contains(t, eventTypesForCategory(""), audit.EventAccountDeleted)
	assert.Nil(t, eventTypesForCategory("nope"))
}

func TestLoad_PagesAndLabels(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := &Handler{Store: audit.New(db)}
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	require.NoError(t, h.Store.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventAccountDeleted,
		AccountID: &id,
		Success:   true,
	}))
	for i := 0; i < paging.PageSize; i++ {
		require.NoError(t, h.Store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			Email:     "a@example.com",
			Success:   true,
		}))
	}

	first, err := h.load(ctx, listQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(paging.PageSize+1), first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	assert.Len(t, first.Items, paging.PageSize)

	accounts, err := h.load(ctx, listQuery{Category: audit.CategoryAccount, Page: 1})
	require.NoError(t, err)
	require.Len(t, accounts.Items, 1)
	assert.Equal(t, id.Hex(), accounts.Items[0].Account)
	assert.False(t, accounts.HasNext)
}
