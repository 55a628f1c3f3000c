// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: itemmanager-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRF token signing key (32 bytes or more)
	CSRFKey string

	// Base URL used to build the Google OAuth redirect URL
	BaseURL string

	// Google OAuth (sign-in with Google is enabled when both are set)
	GoogleClientID     string
	GoogleClientSecret string

	// Email of the account promoted to admin on startup
	AdminEmail string

	// Login attempts allowed per minute per IP; per email is half
	LoginRatePerMinute int

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogAuth   string
	AuditRetention time.Duration // audit events older than this are pruned daily; 0 keeps them

	// Background work
	OrphanAuditSchedule string        // cron spec; blank disables the orphan audit
	MirrorMaxAge        time.Duration // list mirrors untouched this long are dropped
	MirrorSweepInterval time.Duration
}

// GoogleEnabled reports whether sign-in with Google is configured.
func (c AppConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
