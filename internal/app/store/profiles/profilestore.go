package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/itemmanager/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no profile matches.
	ErrNotFound = errors.New("profile not found")
	// ErrExists is returned when a profile for the account already exists.
	ErrExists  = errors.New("profile already exists")
	errBadRole = errors.New(`role must be "user"|"admin"`)
)

// Store reads and writes the users collection. Each document is keyed by
// the account id.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func validRole(role string) bool {
	return role == "user" || role == "admin"
}

// Create inserts the profile for an account. An empty role becomes "user".
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID.IsZero() {
		return models.Profile{}, errors.New("profile id must be the account id")
	}
	if p.Role == "" {
		p.Role = "user"
	}
	if !validRole(p.Role) {
		return models.Profile{}, errBadRole
	}
	p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrExists
		}
		return models.Profile{}, err
	}
	return p, nil
}

// RoleOf returns the stored role, or "" with a nil error when the profile
// is missing. It implements authz.RoleSource.
func (s *Store) RoleOf(ctx context.Context, id primitive.ObjectID) (string, error) {
	var doc struct {
		Role string `bson:"role"`
	}
	opts := options.FindOne().SetProjection(bson.M{"role": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}
	return doc.Role, nil
}

// SetRole changes the role on an existing profile.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !validRole(role) {
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile. A missing profile is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count returns the number of profiles.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Orphans returns up to limit profile ids that have no matching account.
func (s *Store) Orphans(ctx context.Context, limit int64) ([]primitive.ObjectID, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "accounts",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "acct",
		}}},
		{{Key: "$match", Value: bson.M{"acct": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.ID)
	}
	return out, cur.Err()
}
