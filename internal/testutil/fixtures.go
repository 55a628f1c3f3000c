package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/system/authutil"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestPassword is the password every fixture account is created with.
const TestPassword = "correct-horse-9"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAccount inserts a password account and its profile with role.
func (f *Fixtures) CreateAccount(ctx context.Context, email, name, role string) models.Account {
	f.t.Helper()

	hash, err := authutil.HashPassword(TestPassword)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	acct := models.Account{
		ID:           primitive.NewObjectID(),
		Email:        email,
		EmailCI:      text.Fold(email),
		DisplayName:  name,
		AuthMethod:   models.AuthMethodPassword,
		PasswordHash: &hash,
		CreatedAt:    now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}

	prof := models.Profile{
		ID:          acct.ID,
		Email:       email,
		DisplayName: name,
		Role:        role,
		CreatedAt:   now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, prof); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}

	return acct
}

// CreateItem inserts an item owned by owner. createdAt is offset by age so
// callers can control ordering.
func (f *Fixtures) CreateItem(ctx context.Context, owner models.Account, title string, price float64, age time.Duration) models.Item {
	f.t.Helper()

	now := time.Now().UTC().Add(-age)
	it := models.Item{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: title + " description",
		Price:       price,
		Category:    "Other",
		UserID:      owner.ID,
		CreatedBy:   owner.Label(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("items").InsertOne(ctx, it); err != nil {
		f.t.Fatalf("failed to create test item: %v", err)
	}
	return it
}
