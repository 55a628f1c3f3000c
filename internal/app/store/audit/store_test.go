package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		AccountID: &accountID,
		Email:     "a@example.com",
		IP:        "192.168.1.1",
		Success:   true,
	}

	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.ListByAccount(ctx, accountID, 10)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Email != "a@example.com" {
		t.Errorf("Email: got %q", events[0].Email)
	}
}

func TestStore_Log_AutoSetsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	accountID := primitive.NewObjectID()
	if err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		AccountID: &accountID,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.ListByAccount(ctx, accountID, 0)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v is before %v", events[0].Timestamp, before)
	}
}

func TestStore_ListByAccount_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	accountID := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)
	for i, typ := range []string{audit.EventSignup, audit.EventLoginSuccess, audit.EventLogout} {
		if err := store.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: typ,
			AccountID: &accountID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.ListByAccount(ctx, accountID, 2)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventLogout {
		t.Errorf("first event: got %q, want %q", events[0].EventType, audit.EventLogout)
	}
}

func TestStore_CountByType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 3; i++ {
		_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword})
	}
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Success: true})

	n, err := store.CountByType(ctx, audit.EventLoginFailedWrongPassword)
	if err != nil {
		t.Fatalf("CountByType failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count: got %d, want 3", n)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, ts := range []time.Time{now.AddDate(0, 0, -100), now.AddDate(0, 0, -91), now.AddDate(0, 0, -1)} {
		if err := store.Log(ctx, audit.Event{
			Timestamp: ts,
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	n, err := store.DeleteBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}
	left, err := store.CountByType(ctx, audit.EventLogout)
	if err != nil {
		t.Fatalf("CountByType failed: %v", err)
	}
	if left != 1 {
		t.Errorf("remaining: got %d, want 1", left)
	}
}

func TestStore_Query_FiltersAndPages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		ev := audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			Success:   true,
		}
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{
		Timestamp: base,
		Category:  audit.CategoryAccount,
		EventType: audit.EventAccountDeleted,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	f := audit.QueryFilter{Category: audit.CategoryAuth, Limit: 2}
	page, err := store.Query(ctx, f)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page))
	}
	if !page[0].Timestamp.After(page[1].Timestamp) {
		t.Error("expected newest first")
	}

	f.Offset = 4
	rest, err := store.Query(ctx, f)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 event on last page, got %d", len(rest))
	}

	total, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected 5 auth events, got %d", total)
	}

	start := base.Add(3 * time.Minute)
	recent, err := store.CountByFilter(ctx, audit.QueryFilter{StartTime: &start})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if recent != 2 {
		t.Errorf("expected 2 events since start, got %d", recent)
	}
}
