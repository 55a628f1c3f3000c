package itemstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/itemmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no item matches the id.
var ErrNotFound = errors.New("item not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("items")}
}

// Fields are the user-editable parts of an item.
type Fields struct {
	Title       string
	Description string
	Price       float64
	Category    string
}

func (f Fields) clean() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// Create inserts a new item owned by owner and returns it as stored.
// The insert is acknowledged before Create returns, so a following List
// sees it.
func (s *Store) Create(ctx context.Context, owner models.Account, f Fields) (models.Item, error) {
	if owner.ID.IsZero() {
		return models.Item{}, errors.New("item owner is required")
	}
	f = f.clean()
	now := time.Now().UTC().Truncate(time.Millisecond)

	it := models.Item{
		ID:          primitive.NewObjectID(),
		Title:       f.Title,
		Description: f.Description,
		Price:       f.Price,
		Category:    f.Category,
		UserID:      owner.ID,
		CreatedBy:   owner.Label(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// GetByID loads an item.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	var it models.Item
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&it); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Item{}, ErrNotFound
		}
		return models.Item{}, err
	}
	return it, nil
}

// ListAll returns every item, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Item, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the owner's items, newest first.
func (s *Store) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Item, error) {
	return s.find(ctx, bson.M{"userId": owner})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update sets the editable fields and bumps updatedAt. The owner and
// creation time never change.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, f Fields) error {
	f = f.clean()
	set := bson.M{
		"title":       f.Title,
		"description": f.Description,
		"price":       f.Price,
		"updatedAt":   time.Now().UTC().Truncate(time.Millisecond),
	}
	update := bson.M{"$set": set}
	if f.Category == "" {
		update["$unset"] = bson.M{"category": ""}
	} else {
		set["category"] = f.Category
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of items.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// OwnerCount is an owner id with how many items reference it.
type OwnerCount struct {
	UserID primitive.ObjectID `bson:"_id"`
	Items  int64              `bson:"items"`
}

// OrphanOwners returns owner ids that have items but no account.
func (s *Store) OrphanOwners(ctx context.Context) ([]OwnerCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$userId", "items": bson.M{"$sum": 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "accounts",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "acct",
		}}},
		{{Key: "$match", Value: bson.M{"acct": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"items": 1}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []OwnerCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
