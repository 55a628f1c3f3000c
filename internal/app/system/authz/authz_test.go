package authz_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

type fakeRoles struct {
	role string
	err  error
}

func (f fakeRoles) RoleOf(ctx context.Context, id primitive.ObjectID) (string, error) {
	return f.role, f.err
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, id, ok := authz.UserCtx(req)
	if ok {
		t.Fatal("expected ok=false with no user")
	}
	if role != "visitor" || name != "" || !id.IsZero() {
		t.Errorf("unexpected values: %q %q %v", role, name, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-hex", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected malformed id to fail closed")
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Name: "Ann", Role: "ADMIN"})

	role, name, _, ok := authz.UserCtx(req)
	if !ok || role != "admin" || name != "Ann" {
		t.Errorf("got role=%q name=%q ok=%v", role, name, ok)
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"Admin", true},
		{"user", false},
		{"superadmin", false},
		{"", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/test", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: testUserID(), Role: tt.role})
		if got := authz.IsAdmin(req); got != tt.want {
			t.Errorf("IsAdmin(role=%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestIsAdmin_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin false when no user")
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]authz.Role{
		"admin":   authz.RoleAdmin,
		" ADMIN ": authz.RoleAdmin,
		"user":    authz.RoleUser,
		"":        authz.RoleUser,
		"editor":  authz.RoleUser,
	}
	for in, want := range tests {
		if got := authz.ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveRole_Admin(t *testing.T) {
	got := authz.ResolveRole(context.Background(), fakeRoles{role: "admin"}, primitive.NewObjectID(), zap.NewNop())
	if got != authz.RoleAdmin {
		t.Errorf("got %q, want admin", got)
	}
}

func TestResolveRole_MissingProfileIsUser(t *testing.T) {
	got := authz.ResolveRole(context.Background(), fakeRoles{}, primitive.NewObjectID(), zap.NewNop())
	if got != authz.RoleUser {
		t.Errorf("got %q, want user", got)
	}
}

func TestResolveRole_ErrorIsUser(t *testing.T) {
	src := fakeRoles{role: "admin", err: errors.New("network down")}
	got := authz.ResolveRole(context.Background(), src, primitive.NewObjectID(), zap.NewNop())
	if got != authz.RoleUser {
		t.Errorf("got %q, want user on lookup failure", got)
	}
}
