package accountstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/itemmanager/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when attempting to create an account with an email that already exists.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	errBadMethod      = errors.New(`auth_method must be "password"|"google"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// Create inserts a new account. It assigns the id, the folded email and
// the creation time.
func (s *Store) Create(ctx context.Context, a models.Account) (models.Account, error) {
	switch a.AuthMethod {
	case models.AuthMethodPassword, models.AuthMethodGoogle:
	default:
		return models.Account{}, errBadMethod
	}

	a.ID = primitive.NewObjectID()
	a.Email = strings.TrimSpace(a.Email)
	a.EmailCI = text.Fold(a.Email)
	a.DisplayName = strings.TrimSpace(a.DisplayName)
	a.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, err
	}
	return a, nil
}

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Account, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up an account by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	return s.findOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))})
}

// GetByGoogleSub looks up an account by its linked Google subject.
func (s *Store) GetByGoogleSub(ctx context.Context, sub string) (models.Account, error) {
	if sub == "" {
		return models.Account{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"google_sub": sub})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Account, error) {
	var a models.Account
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, err
	}
	return a, nil
}

// LinkGoogle records the Google subject on an existing account.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, sub string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"google_sub": sub}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account. Deleting an account that is already gone is
// not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Exists reports whether an account with id is present.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
