// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/store/audit"
	"github.com/dalemusser/itemmanager/internal/app/system/authstate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls where auth and account events go.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when Auth is "log" or "off".
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.AccountID != nil {
		fields = append(fields, zap.String("account_id", event.AccountID.Hex()))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.config.Auth
	if setting == "" {
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func accountRef(hex string) *primitive.ObjectID {
	if oid, err := primitive.ObjectIDFromHex(hex); err == nil {
		return &oid
	}
	return nil
}

// Signup logs a new account.
func (l *Logger) Signup(ctx context.Context, r *http.Request, accountID primitive.ObjectID, email, method string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventSignup,
		AccountID: &accountID,
		Email:     email,
		IP:        getClientIP(r),
		Success:   true,
		Details:   map[string]string{"auth_method": method},
	})
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		Email:         email,
		IP:            getClientIP(r),
		FailureReason: "user not found",
	})
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, accountID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		AccountID:     &accountID,
		Email:         email,
		IP:            getClientIP(r),
		FailureReason: "wrong password",
	})
}

// LoginFailedRateLimit logs a login refused by the limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, limitType string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		Email:         email,
		IP:            getClientIP(r),
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"limit_type": limitType},
	})
}

// AccountDeleteFailed logs a cascade that stopped part way.
func (l *Logger) AccountDeleteFailed(ctx context.Context, r *http.Request, accountID primitive.ObjectID, step string, err error) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccount,
		EventType:     audit.EventAccountDeleteFailed,
		AccountID:     &accountID,
		IP:            getClientIP(r),
		FailureReason: err.Error(),
		Details:       map[string]string{"step": step},
	})
}

// Subscribe records every auth-state event published on b.
func (l *Logger) Subscribe(b *authstate.Broker) (unsubscribe func()) {
	return b.Subscribe(func(e authstate.Event) {
		ev := audit.Event{
			Timestamp: e.At,
			AccountID: accountRef(e.AccountID),
			Email:     e.Email,
			IP:        e.IP,
			Success:   true,
		}
		switch e.Kind {
		case authstate.SignedIn:
			ev.Category, ev.EventType = audit.CategoryAuth, audit.EventLoginSuccess
		case authstate.SignedOut:
			ev.Category, ev.EventType = audit.CategoryAuth, audit.EventLogout
		case authstate.AccountDeleted:
			ev.Category, ev.EventType = audit.CategoryAccount, audit.EventAccountDeleted
		default:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.Log(ctx, ev)
	})
}
