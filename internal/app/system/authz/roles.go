// internal/app/system/authz/roles.go
package authz

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Role is the closed set of roles a profile can carry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string onto Role. Anything unknown is a user.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

func (r Role) String() string { return string(r) }

// IsAdmin reports whether r is the admin role.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// RoleSource reads the stored role for an account. A missing profile is
// reported as ("", nil).
type RoleSource interface {
	RoleOf(ctx context.Context, accountID primitive.ObjectID) (string, error)
}

// ResolveRole looks up the role for accountID. It never fails: a missing
// profile or a lookup error both yield RoleUser, and the error is logged.
func ResolveRole(ctx context.Context, src RoleSource, accountID primitive.ObjectID, log *zap.Logger) Role {
	raw, err := src.RoleOf(ctx, accountID)
	if err != nil {
		log.Warn("role lookup failed; defaulting to user",
			zap.String("account_id", accountID.Hex()),
			zap.Error(err))
		return RoleUser
	}
	return ParseRole(raw)
}
