// Package accountdeletion removes an account and everything it owns.
//
// Order matters: items first, then the profile, then the account. A failure
// at any step stops the cascade so the account still exists and the user
// can retry.
package accountdeletion

import (
	"context"
	"errors"
	"fmt"

	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Steps of the cascade, in order.
const (
	StepListItems     = "list_items"
	StepDeleteItem    = "delete_item"
	StepDeleteProfile = "delete_profile"
	StepDeleteAccount = "delete_account"
)

// StepError names the step that failed.
type StepError struct {
	Step         string
	ItemsDeleted int
	Err          error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("account deletion failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ItemStore is the subset of the item store the cascade needs.
type ItemStore interface {
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Item, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Remover deletes a document by account id.
type Remover interface {
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Deleter struct {
	items    ItemStore
	profiles Remover
	accounts Remover
	log      *zap.Logger
}

func New(items ItemStore, profiles, accounts Remover, logger *zap.Logger) *Deleter {
	return &Deleter{items: items, profiles: profiles, accounts: accounts, log: logger}
}

// Delete runs the cascade for accountID and returns how many items were
// removed. Any error is a *StepError.
func (d *Deleter) Delete(ctx context.Context, accountID primitive.ObjectID) (int, error) {
	items, err := d.items.ListByOwner(ctx, accountID)
	if err != nil {
		return 0, &StepError{Step: StepListItems, Err: err}
	}

	deleted := 0
	for _, it := range items {
		if err := d.items.Delete(ctx, it.ID); err != nil {
			if errors.Is(err, itemstore.ErrNotFound) {
				continue
			}
			return deleted, &StepError{Step: StepDeleteItem, ItemsDeleted: deleted, Err: fmt.Errorf("item %s: %w", it.ID.Hex(), err)}
		}
		deleted++
	}

	if err := d.profiles.Delete(ctx, accountID); err != nil {
		return deleted, &StepError{Step: StepDeleteProfile, ItemsDeleted: deleted, Err: err}
	}
	if err := d.accounts.Delete(ctx, accountID); err != nil {
		return deleted, &StepError{Step: StepDeleteAccount, ItemsDeleted: deleted, Err: err}
	}

	d.log.Info("account deleted",
		zap.String("account_id", accountID.Hex()),
		zap.Int("items_deleted", deleted))
	return deleted, nil
}
