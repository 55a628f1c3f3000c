// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrphanItems finds owners that have items but no account.
type OrphanItems interface {
	OrphanOwners(ctx context.Context) ([]itemstore.OwnerCount, error)
}

// OrphanProfiles finds profiles that have no account.
type OrphanProfiles interface {
	Orphans(ctx context.Context, limit int64) ([]primitive.ObjectID, error)
}

// orphanSampleSize caps how many orphan profile ids are logged per run.
const orphanSampleSize = 50

// OrphanAuditJob reports data left behind by an account deletion that
// stopped part way. It only logs; nothing is repaired.
func OrphanAuditJob(items OrphanItems, profiles OrphanProfiles, logger *zap.Logger, spec string) Job {
	return Job{
		Name: "orphan-audit",
		Spec: spec,
		Run: func(ctx context.Context) error {
			owners, err := items.OrphanOwners(ctx)
			if err != nil {
				return err
			}
			var orphanItems int64
			for _, o := range owners {
				orphanItems += o.Items
				logger.Warn("items without an account",
					zap.String("user_id", o.UserID.Hex()),
					zap.Int64("items", o.Items))
			}

			ids, err := profiles.Orphans(ctx, orphanSampleSize)
			if err != nil {
				return err
			}
			for _, id := range ids {
				logger.Warn("profile without an account", zap.String("user_id", id.Hex()))
			}

			if len(owners) > 0 || len(ids) > 0 {
				logger.Info("orphan audit found leftovers",
					zap.Int("owners", len(owners)),
					zap.Int64("items", orphanItems),
					zap.Int("profiles", len(ids)))
			}
			return nil
		},
	}
}

// AuditPruner deletes audit events older than a cutoff.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRetentionJob removes audit events older than retention.
func AuditRetentionJob(store AuditPruner, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name: "audit-retention",
		Spec: "@daily",
		Run: func(ctx context.Context) error {
			count, err := store.DeleteBefore(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned audit events",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
