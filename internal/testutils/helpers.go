package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Clock is a manually advanced clock for timer and cooldown tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// WriteJSON marshals v into dir/name and returns the path.
// It fails the test immediately on error.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err, "Failed to marshal %s", name)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644), "Failed to write %s", name)
	return path
}
