package ratelimit_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/app/system/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowsBurstThenBlocks(t *testing.T) {
	l := ratelimit.New(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("k"), "attempt %d should pass", i+1)
	}
	assert.False(t, l.Allow("k"))
	assert.True(t, l.Allow("other"), "keys are independent")
}

func TestLimiter_Reset(t *testing.T) {
	l := ratelimit.New(1, time.Hour)

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	l.Reset("k")
	assert.True(t, l.Allow("k"))
}

func TestLimiter_Remaining(t *testing.T) {
	l := ratelimit.New(5, time.Hour)
	assert.Equal(t, 5, l.Remaining("k"))
	l.Allow("k")
	l.Allow("k")
	assert.Equal(t, 3, l.Remaining("k"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded first entry", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", " 198.51.100.7 ", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr strips port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ratelimit.ClientIP(req))
		})
	}
}

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(4) // 4 per IP, 2 per email

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.0.2.10:1000"

	ok, _, _ := ll.Check(req, "A@Example.com")
	assert.True(t, ok)
	ok, _, _ = ll.Check(req, "a@example.com ")
	assert.True(t, ok)

	ok, kind, msg := ll.Check(req, "a@example.com")
	assert.False(t, ok)
	assert.Equal(t, ratelimit.LimitEmail, kind)
	assert.NotEmpty(t, msg)

	ll.ResetEmail("a@example.com")
	ok, _, _ = ll.Check(req, "a@example.com")
	assert.True(t, ok)
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiter(2)

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.0.2.11:1000"

	ok, _, _ := ll.Check(req, "one@example.com")
	assert.True(t, ok)
	ok, _, _ = ll.Check(req, "two@example.com")
	assert.True(t, ok)

	ok, kind, _ := ll.Check(req, "three@example.com")
	assert.False(t, ok)
	assert.Equal(t, ratelimit.LimitIP, kind)
}
