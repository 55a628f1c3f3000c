// internal/app/policy/itempolicy/itempolicy.go
package itempolicy

import (
	"net/http"

	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanView reports whether actor may see an item owned by owner.
// Admins can see every item; everyone else only their own.
func CanView(role authz.Role, owner, actor primitive.ObjectID) bool {
	return isOwnerOrAdmin(role, owner, actor)
}

// CanEdit reports whether actor may change an item owned by owner.
func CanEdit(role authz.Role, owner, actor primitive.ObjectID) bool {
	return isOwnerOrAdmin(role, owner, actor)
}

// CanDelete reports whether actor may delete an item owned by owner.
// It is checked before any write is issued.
func CanDelete(role authz.Role, owner, actor primitive.ObjectID) bool {
	return isOwnerOrAdmin(role, owner, actor)
}

func isOwnerOrAdmin(role authz.Role, owner, actor primitive.ObjectID) bool {
	if actor.IsZero() {
		return false
	}
	if role.IsAdmin() {
		return true
	}
	return !owner.IsZero() && owner == actor
}

// Actor returns the request user's role and id. ok is false for visitors.
func Actor(r *http.Request) (role authz.Role, id primitive.ObjectID, ok bool) {
	roleStr, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return authz.RoleUser, primitive.NilObjectID, false
	}
	return authz.ParseRole(roleStr), uid, true
}
