package account_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/features/account"
	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/app/system/accountdeletion"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeDeleter struct {
	calls    []primitive.ObjectID
	err      error
	onDelete func()
}

func (f *fakeDeleter) Delete(_ context.Context, id primitive.ObjectID) (int, error) {
	f.calls = append(f.calls, id)
	if f.onDelete != nil {
		f.onDelete()
	}
	return 0, f.err
}

func newTestHandler(t *testing.T, del account.Deleter) (*account.Handler, *authstate.Broker) {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	broker := authstate.NewBroker()
	return &account.Handler{
		Deleter:    del,
		SessionMgr: sm,
		ErrLog:     uierrors.NewErrorLogger(logger),
		Broker:     broker,
		Log:        logger,
	}, broker
}

func postDelete(h *account.Handler, user testutil.TestUser, form url.Values) *httptest.ResponseRecorder {
	req := testutil.WithUser(testutil.NewFormRequest("/delete-account", form), user)
	rec := httptest.NewRecorder()
	testutil.RenderSafely(func() { h.HandleDelete(rec, req) })
	return rec
}

func TestHandleDelete_RequiresConfirm(t *testing.T) {
	del := &fakeDeleter{}
	h, broker := newTestHandler(t, del)

	var events []authstate.Event
	broker.Subscribe(func(e authstate.Event) { events = append(events, e) })

	rec := postDelete(h, testutil.RegularUser(), url.Values{})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if len(del.calls) != 0 {
		t.Errorf("deleter should not run without confirmation, got %d calls", len(del.calls))
	}
	if len(events) != 0 {
		t.Errorf("no events expected, got %+v", events)
	}
}

func TestHandleDelete_Success(t *testing.T) {
	del := &fakeDeleter{}
	h, broker := newTestHandler(t, del)
	user := testutil.RegularUser()

	var events []authstate.Event
	broker.Subscribe(func(e authstate.Event) { events = append(events, e) })

	rec := postDelete(h, user, url.Values{"confirm": {"yes"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signup" {
		t.Errorf("Location: got %q, want %q", loc, "/signup")
	}
	if len(del.calls) != 1 || del.calls[0] != user.OID() {
		t.Errorf("expected one delete for %s, got %v", user.ID, del.calls)
	}
	if len(events) != 1 || events[0].Kind != authstate.AccountDeleted || events[0].AccountID != user.ID {
		t.Errorf("expected one AccountDeleted event, got %+v", events)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be cleared")
	}
}

func TestHandleDelete_FailureKeepsSession(t *testing.T) {
	del := &fakeDeleter{err: &accountdeletion.StepError{
		Step: accountdeletion.StepDeleteProfile,
		Err:  errors.New("write concern timeout"),
	}}
	h, broker := newTestHandler(t, del)

	var events []authstate.Event
	broker.Subscribe(func(e authstate.Event) { events = append(events, e) })

	rec := postDelete(h, testutil.RegularUser(), url.Values{"confirm": {"yes"}})

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			t.Error("session must not be cleared when deletion fails")
		}
	}
	if len(events) != 0 {
		t.Errorf("no events expected on failure, got %+v", events)
	}
}

func TestHandleDelete_FailureAuditedAfterClientLeaves(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reqCtx, leave := context.WithCancel(context.Background())
	defer leave()

	del := &fakeDeleter{
		err:      &accountdeletion.StepError{Step: accountdeletion.StepDeleteItem, Err: context.Canceled},
		onDelete: leave,
	}
	h, _ := newTestHandler(t, del)
	store := audit.New(db)
	h.AuditLog = auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	user := testutil.RegularUser()
	req := testutil.NewFormRequest("/delete-account", url.Values{"confirm": {"yes"}}).WithContext(reqCtx)
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	testutil.RenderSafely(func() { h.HandleDelete(rec, req) })

	n, err := store.CountByFilter(ctx, audit.QueryFilter{
		Category:  audit.CategoryAccount,
		EventType: audit.EventAccountDeleteFailed,
	})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 account_delete_failed event, got %d", n)
	}
}

func TestHandleDelete_NotSignedIn(t *testing.T) {
	del := &fakeDeleter{}
	h, _ := newTestHandler(t, del)

	rec := httptest.NewRecorder()
	h.HandleDelete(rec, testutil.NewFormRequest("/delete-account", url.Values{"confirm": {"yes"}}))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if len(del.calls) != 0 {
		t.Error("deleter should not run for an anonymous request")
	}
}

func TestHandleDelete_CascadeAgainstMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acct := fixtures.CreateAccount(ctx, "gone@example.com", "Gone", "user")
	fixtures.CreateItem(ctx, acct, "Lamp", 10, time.Minute)
	fixtures.CreateItem(ctx, acct, "Chair", 20, 0)

	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := account.NewHandler(db, sm, uierrors.NewErrorLogger(logger), nil, authstate.NewBroker(), logger)

	rec := postDelete(h, testutil.UserFor(acct, "user"), url.Values{"confirm": {"yes"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	for coll, filter := range map[string]any{
		"accounts": map[string]any{"_id": acct.ID},
		"users":    map[string]any{"_id": acct.ID},
		"items":    map[string]any{"userId": acct.ID},
	} {
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 documents left, got %d", coll, n)
		}
	}
}
