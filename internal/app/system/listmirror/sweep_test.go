package listmirror

import (
	"testing"
	"time"

	"github.com/dalemusser/itemmanager/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestSweep_DropsStaleLists(t *testing.T) {
	m := New()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Set("old", []models.Item{{Title: "a"}})
	clock = clock.Add(20 * time.Minute)
	m.Set("fresh", []models.Item{{Title: "b"}})
	clock = clock.Add(5 * time.Minute)

	assert.Equal(t, 1, m.Sweep(15*time.Minute))

	_, ok := m.List("old")
	assert.False(t, ok)
	_, ok = m.List("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestSweep_SetRefreshes(t *testing.T) {
	m := New()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Set("v", nil)
	clock = clock.Add(time.Hour)
	m.Set("v", nil)

	assert.Zero(t, m.Sweep(30*time.Minute))
	assert.Equal(t, 1, m.Len())
}
