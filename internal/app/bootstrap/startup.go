// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dalemusser/itemmanager/internal/app/resources"
	accountstore "github.com/dalemusser/itemmanager/internal/app/store/accounts"
	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	profilestore "github.com/dalemusser/itemmanager/internal/app/store/profiles"
	"github.com/dalemusser/itemmanager/internal/app/system/auditlog"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"github.com/dalemusser/itemmanager/internal/app/system/authz"
	"github.com/dalemusser/itemmanager/internal/app/system/listmirror"
	"github.com/dalemusser/itemmanager/internal/app/system/tasks"
	"github.com/dalemusser/itemmanager/internal/app/system/timeouts"
	"github.com/dalemusser/itemmanager/internal/app/system/workers"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services are the long-lived pieces built in Startup and shared with
// BuildHandler and Shutdown.
type services struct {
	broker    *authstate.Broker
	mirror    *listmirror.Mirror
	audit     *auditlog.Logger
	scheduler *tasks.Scheduler
	sweep     *workers.MirrorSweep
	unsub     []func()
}

var (
	svcMu sync.Mutex
	svc   *services
)

func currentServices() *services {
	svcMu.Lock()
	defer svcMu.Unlock()
	return svc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, promotes the configured admin, wires auth-state
// subscribers, and starts background work.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps.MongoDatabase, appCfg.AdminEmail, logger); err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	s, err := startServices(deps.MongoDatabase, appCfg, logger)
	if err != nil {
		return err
	}

	svcMu.Lock()
	svc = s
	svcMu.Unlock()
	return nil
}

func startServices(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) (*services, error) {
	s := &services{
		broker: authstate.NewBroker(),
		mirror: listmirror.New(),
	}

	auditStore := audit.New(db)
	s.audit = auditlog.New(auditStore, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})

	s.unsub = append(s.unsub,
		s.mirror.Subscribe(s.broker),
		s.audit.Subscribe(s.broker),
	)

	s.scheduler = tasks.NewScheduler(logger, timeouts.Long())
	if appCfg.OrphanAuditSchedule != "" {
		job := tasks.OrphanAuditJob(itemstore.New(db), profilestore.New(db), logger, appCfg.OrphanAuditSchedule)
		if err := s.scheduler.Add(job); err != nil {
			s.stop(context.Background())
			return nil, fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}
	if appCfg.AuditRetention > 0 {
		job := tasks.AuditRetentionJob(auditStore, logger, appCfg.AuditRetention)
		if err := s.scheduler.Add(job); err != nil {
			s.stop(context.Background())
			return nil, fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}
	s.scheduler.Start()

	s.sweep = workers.NewMirrorSweep(s.mirror, logger, appCfg.MirrorSweepInterval, appCfg.MirrorMaxAge)
	s.sweep.Start()

	logger.Info("background services started",
		zap.Int("scheduled_jobs", s.scheduler.Len()),
		zap.Int("auth_subscribers", s.broker.Len()))
	return s, nil
}

// stop halts background work and cancels every subscription. It is safe on
// a partly built services value.
func (s *services) stop(ctx context.Context) {
	if s.sweep != nil {
		s.sweep.Stop()
	}
	if s.scheduler != nil {
		s.scheduler.Stop(ctx)
	}
	for _, u := range s.unsub {
		u()
	}
	s.unsub = nil
}

// ensureAdmin gives the admin role to the account registered under email.
// Accounts are only created through signup, so a missing account is logged
// and skipped. A missing profile is created.
func ensureAdmin(ctx context.Context, db *mongo.Database, email string, logger *zap.Logger) error {
	email = strings.TrimSpace(email)
	accounts := accountstore.New(db)
	profiles := profilestore.New(db)

	acct, err := accounts.GetByEmail(ctx, email)
	if errors.Is(err, accountstore.ErrNotFound) {
		logger.Warn("admin_email has no account yet; sign up first, then restart",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	err = profiles.SetRole(ctx, acct.ID, authz.RoleAdmin.String())
	if errors.Is(err, profilestore.ErrNotFound) {
		_, err = profiles.Create(ctx, models.Profile{
			ID:          acct.ID,
			Email:       acct.Email,
			DisplayName: acct.DisplayName,
			Role:        authz.RoleAdmin.String(),
		})
	}
	if err != nil {
		return err
	}

	logger.Info("admin role ensured", zap.String("email", acct.Email), zap.String("account_id", acct.ID.Hex()))
	return nil
}
