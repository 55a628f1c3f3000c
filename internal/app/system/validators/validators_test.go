package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/system/validators"
	"github.com/dalemusser/itemmanager/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) (*mongo.Database, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db, ctx
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db, ctx := setup(t)

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db, ctx := setup(t)

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"accounts", "users", "items", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func validItem() bson.M {
	now := time.Now().UTC()
	return bson.M{
		"title":       "Lamp",
		"description": "A desk lamp",
		"price":       19.99,
		"category":    "Home",
		"userId":      primitive.NewObjectID(),
		"createdBy":   "Alice",
		"createdAt":   now,
		"updatedAt":   now,
	}
}

func TestItemsValidator(t *testing.T) {
	db, ctx := setup(t)

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid", func(bson.M) {}, false},
		{"no category", func(d bson.M) { delete(d, "category") }, false},
		{"blank title", func(d bson.M) { d["title"] = "   " }, true},
		{"missing description", func(d bson.M) { delete(d, "description") }, true},
		{"zero price", func(d bson.M) { d["price"] = 0.0 }, true},
		{"negative price", func(d bson.M) { d["price"] = -3.5 }, true},
		{"string price", func(d bson.M) { d["price"] = "12" }, true},
		{"unknown category", func(d bson.M) { d["category"] = "Toys" }, true},
		{"missing owner", func(d bson.M) { delete(d, "userId") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validItem()
			tt.mutate(doc)
			_, err := db.Collection("items").InsertOne(ctx, doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}

func TestProfilesValidator_Role(t *testing.T) {
	db, ctx := setup(t)

	for role, wantErr := range map[string]bool{"user": false, "admin": false, "superadmin": true} {
		_, err := db.Collection("users").InsertOne(ctx, bson.M{
			"_id":   primitive.NewObjectID(),
			"email": role + "@example.com",
			"role":  role,
		})
		if wantErr && err == nil {
			t.Errorf("role %q: expected validation error", role)
		}
		if !wantErr && err != nil {
			t.Errorf("role %q: insert failed: %v", role, err)
		}
	}
}

func TestAccountsValidator(t *testing.T) {
	db, ctx := setup(t)

	_, err := db.Collection("accounts").InsertOne(ctx, bson.M{
		"email":       "a@example.com",
		"email_ci":    "a@example.com",
		"auth_method": "password",
		"created_at":  time.Now().UTC(),
	})
	if err != nil {
		t.Errorf("insert valid account failed: %v", err)
	}

	_, err = db.Collection("accounts").InsertOne(ctx, bson.M{
		"email":       "b@example.com",
		"email_ci":    "b@example.com",
		"auth_method": "trust",
		"created_at":  time.Now().UTC(),
	})
	if err == nil {
		t.Error("expected validation error for an unknown auth method")
	}
}
