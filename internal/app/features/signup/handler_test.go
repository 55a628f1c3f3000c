package signup_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	"github.com/dalemusser/itemmanager/internal/app/features/signup"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/indexes"
	"github.com/dalemusser/itemmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*signup.Handler, *mongo.Database, *authstate.Broker) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	broker := authstate.NewBroker()
	return signup.NewHandler(db, sessionMgr, uierrors.NewErrorLogger(logger), nil, broker, logger), db, broker
}

func postSignup(h *signup.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	testutil.RenderSafely(func() { h.HandleSignup(rec, req) })
	return rec
}

func validForm() url.Values {
	return url.Values{
		"email":        {"new@example.com"},
		"display_name": {"New Person"},
		"password":     {"long-enough-1"},
		"confirm":      {"long-enough-1"},
	}
}

func countAccounts(t *testing.T, db *mongo.Database) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := db.Collection("accounts").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	return n
}

func TestHandleSignup_Success(t *testing.T) {
	handler, db, broker := newTestHandler(t)

	var events []authstate.Event
	broker.Subscribe(func(e authstate.Event) { events = append(events, e) })

	rec := postSignup(handler, validForm())

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/user-dashboard" {
		t.Errorf("Location: got %q, want /user-dashboard", loc)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	acct, err := accountstore.New(db).GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if acct.PasswordHash == nil || *acct.PasswordHash == "long-enough-1" {
		t.Error("password should be stored hashed")
	}

	role, err := profilestore.New(db).RoleOf(ctx, acct.ID)
	if err != nil {
		t.Fatalf("RoleOf: %v", err)
	}
	if role != "user" {
		t.Errorf("profile role: got %q, want user", role)
	}

	if len(events) != 1 || events[0].Kind != authstate.SignedIn {
		t.Errorf("expected one SignedIn event, got %+v", events)
	}
}

func TestHandleSignup_ValidationFailures(t *testing.T) {
	cases := map[string]func(url.Values){
		"bad email":        func(v url.Values) { v.Set("email", "nope") },
		"missing name":     func(v url.Values) { v.Set("display_name", "") },
		"short password":   func(v url.Values) { v.Set("password", "short"); v.Set("confirm", "short") },
		"mismatched":       func(v url.Values) { v.Set("confirm", "something-else") },
		"missing password": func(v url.Values) { v.Del("password") },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			handler, db, _ := newTestHandler(t)
			form := validForm()
			mutate(form)

			rec := postSignup(handler, form)

			if rec.Code == http.StatusSeeOther {
				t.Error("invalid signup should re-render, not redirect")
			}
			if n := countAccounts(t, db); n != 0 {
				t.Errorf("no account should be written, got %d", n)
			}
		})
	}
}

func TestHandleSignup_DuplicateEmail(t *testing.T) {
	handler, db, _ := newTestHandler(t)

	postSignup(handler, validForm())

	form := validForm()
	form.Set("email", "NEW@example.com")
	rec := postSignup(handler, form)

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate signup should not redirect")
	}
	if n := countAccounts(t, db); n != 1 {
		t.Errorf("accounts: got %d, want 1", n)
	}
}

func TestServeSignup_SignedInRedirects(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeSignup(rec, testutil.NewAuthenticatedRequest("GET", "/signup", testutil.RegularUser()))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("Location: got %q", rec.Header().Get("Location"))
	}
}
