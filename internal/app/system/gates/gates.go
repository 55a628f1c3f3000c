// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering or redirecting
// when checks fail.
//
// # Three-Tier Authorization Pattern
//
//  1. Route-Level Middleware (auth.RequireSignedIn, auth.RequireRole)
//     Applied in routes.go files for coarse-grained access control.
//
//  2. Handler-Level Gates (this package)
//     Used in handlers that need a role check with a different outcome than
//     the route group gives, such as the admin dashboard sending users to
//     their own dashboard instead of a 403.
//
//  3. Policy Layer (internal/app/policy/*)
//     Used for resource-specific authorization such as "may this account
//     delete this item". Policies return a bool and callers render.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   authz.Role
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Role: authz.ParseRole(role), Name: name, UserID: uid, OK: true}
}

// RequireAdmin ensures the user is authenticated and has the admin role.
// If authenticated but not admin, it renders forbidden with the message.
func RequireAdmin(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	res := RequireAuth(w, r, "/login")
	if !res.OK {
		return res
	}
	if !res.Role.IsAdmin() {
		uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
		return Result{OK: false}
	}
	return res
}

// RequireAdminOrRedirect ensures the user is an admin. Anyone else gets a
// 303 to redirectURL.
func RequireAdminOrRedirect(w http.ResponseWriter, r *http.Request, redirectURL string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return Result{OK: false}
	}
	if !authz.ParseRole(role).IsAdmin() {
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
		return Result{OK: false}
	}
	return Result{Role: authz.RoleAdmin, Name: name, UserID: uid, OK: true}
}
