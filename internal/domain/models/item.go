// internal/domain/models/item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a user-owned record. Its fields are stored camelCase, unlike the
// snake_case used by accounts and profiles.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`

	UserID    primitive.ObjectID `bson:"userId" json:"userId"`       // owning account
	CreatedBy string             `bson:"createdBy" json:"createdBy"` // display label of the owner at create time

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ItemCategories lists the selectable categories in display order.
// An empty category is allowed and means "uncategorized".
var ItemCategories = []string{"Electronics", "Clothing", "Books", "Home", "Other"}
