// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods an Account can use to sign in.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// Account is the authentication record. It owns credentials only; the role
// lives on the Profile stored in the users collection.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // folded, unique
	DisplayName  string             `bson:"display_name" json:"display_name"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"`
	PasswordHash *string            `bson:"password_hash,omitempty" json:"-"`
	GoogleSub    string             `bson:"google_sub,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Label is what gets shown as the creator of an item.
func (a Account) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Email
}
