package accountstore

import (
	"context"
	"errors"

	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/auth"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher. It loads the account on every
// request and resolves the role from the profile.
type Fetcher struct {
	accounts *Store
	profiles *profilestore.Store
	log      *zap.Logger
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		accounts: New(db),
		profiles: profilestore.New(db),
		log:      logger,
	}
}

// FetchUser returns (nil, nil) when the account no longer exists or the id
// is malformed. A lookup failure is returned as an error. A role lookup
// failure is not: the account still signs in with the user role.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	a, err := f.accounts.GetByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	role := authz.ResolveRole(ctx, f.profiles, oid, f.log)
	return &auth.SessionUser{
		ID:    a.ID.Hex(),
		Name:  a.Label(),
		Email: a.Email,
		Role:  role.String(),
	}, nil
}
