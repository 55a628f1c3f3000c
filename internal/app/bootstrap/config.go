// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Item Manager.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ITEMMANAGER_MONGO_URI, ITEMMANAGER_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "item_manager", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "itemmanager-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime (e.g., 24h, 168h)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123456789", Desc: "CSRF token signing key (32+ bytes)"},

	// Base URL for OAuth callbacks
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of the app"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of an existing account to promote to admin on startup"},

	// Login rate limiting
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts allowed per minute per IP (half as many per email)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps them forever)"},

	// Background work
	{Name: "orphan_audit_schedule", Default: "@every 6h", Desc: "Cron spec for the orphan data audit (blank disables it)"},
	{Name: "mirror_max_age", Default: "2h", Desc: "Drop cached item lists not refreshed for this long"},
	{Name: "mirror_sweep_interval", Default: "10m", Desc: "How often stale item lists are swept"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ITEMMANAGER_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ITEMMANAGER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 7*24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AdminEmail: appValues.String("admin_email"),

		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		OrphanAuditSchedule: appValues.String("orphan_audit_schedule"),
		MirrorMaxAge:        appValues.Duration("mirror_max_age", 2*time.Hour),
		MirrorSweepInterval: appValues.Duration("mirror_sweep_interval", 10*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI and cron spec are checked here so typos fail before any
// connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if len(appCfg.CSRFKey) < 32 {
		return errors.New("csrf_key must be at least 32 bytes")
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return errors.New("session_key must be set in production")
	}

	if appCfg.LoginRatePerMinute <= 0 {
		return fmt.Errorf("login_rate_per_minute must be positive, got %d", appCfg.LoginRatePerMinute)
	}

	if appCfg.MirrorSweepInterval <= 0 {
		return fmt.Errorf("mirror_sweep_interval must be positive, got %s", appCfg.MirrorSweepInterval)
	}
	if appCfg.MirrorMaxAge <= 0 {
		return fmt.Errorf("mirror_max_age must be positive, got %s", appCfg.MirrorMaxAge)
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative, got %s", appCfg.AuditRetention)
	}

	if appCfg.OrphanAuditSchedule != "" {
		if err := tasks.ValidateSpec(appCfg.OrphanAuditSchedule); err != nil {
			return fmt.Errorf("invalid orphan_audit_schedule: %w", err)
		}
	}

	switch appCfg.AuditLogAuth {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_auth must be all, db, log, or off, got %q", appCfg.AuditLogAuth)
	}

	return nil
}
