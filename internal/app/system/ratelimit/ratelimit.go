// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxKeys bounds how many per-key limiters are held before the cache resets.
const maxKeys = 10000

// Limiter hands out one token-bucket limiter per key.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

// New creates a limiter that allows burst requests per key and refills one
// token every per/burst.
func New(burst int, per time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(per / time.Duration(burst)),
		burst:    burst,
	}
}

// get returns the limiter for key, creating it if needed.
func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if lim, ok = l.limiters[key]; ok {
		return lim
	}
	if len(l.limiters) >= maxKeys {
		l.limiters = make(map[string]*rate.Limiter)
	}
	lim = rate.NewLimiter(l.every, l.burst)
	l.limiters[key] = lim
	return lim
}

// Allow reports whether a request for key may proceed and spends a token
// when it may.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Remaining returns the whole tokens currently available for key.
func (l *Limiter) Remaining(key string) int {
	n := int(l.get(key).Tokens())
	if n < 0 {
		return 0
	}
	return n
}

// Reset forgets key so its next request starts with a full bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// Reasons returned by LoginLimiter.Check.
const (
	LimitIP    = "ip"
	LimitEmail = "email"
)

// LoginLimiter tracks both IP-based and email-based limits so that neither
// a single client nor a targeted account can be hammered.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows perMinute attempts per IP per minute and half as
// many (at least 1) per email per minute.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute < 1 {
		perMinute = 10
	}
	perEmail := perMinute / 2
	if perEmail < 1 {
		perEmail = 1
	}
	return &LoginLimiter{
		ipLimiter:    New(perMinute, time.Minute),
		emailLimiter: New(perEmail, time.Minute),
	}
}

// Check verifies if a login attempt should be allowed. When it is not, kind
// is LimitIP or LimitEmail and msg is suitable for display.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, kind, msg string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, LimitIP, "Too many login attempts. Please wait a minute before trying again."
	}

	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, LimitEmail, "Too many login attempts for this account. Please wait a few minutes."
		}
	}

	return true, "", ""
}

// ResetEmail clears the rate limit for a specific email after successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		ll.emailLimiter.Reset(key)
	}
}
