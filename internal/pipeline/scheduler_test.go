package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRunAt(t *testing.T) {
	t.Run("before trigger hour runs same day", func(t *testing.T) {
		now := time.Date(2026, 8, 29, 1, 15, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC), nextRunAt(now, 2))
	})

	t.Run("after trigger hour rolls to next day", func(t *testing.T) {
		now := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC), nextRunAt(now, 2))
	})

	t.Run("exactly at trigger hour rolls to next day", func(t *testing.T) {
		now := time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC), nextRunAt(now, 2))
	})

	t.Run("midnight trigger", func(t *testing.T) {
		now := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), nextRunAt(now, 0))
	})
}
