package process_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/tendril/pkg/adapters/process"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.MediaBackend = (*process.Backend)(nil)

func sleeper(t *testing.T) *process.Backend {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on the sleep command")
	}
	// "sleep <source>": the track name doubles as the duration.
	b, err := process.NewBackend(process.Config{Command: "sleep"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Stop() })
	return b
}

func TestBackend_PlayStop(t *testing.T) {
	b := sleeper(t)

	playing, err := b.IsPlaying()
	require.NoError(t, err)
	assert.False(t, playing)
	require.NoError(t, b.Stop(), "stopping when idle is a no-op")

	require.NoError(t, b.Play("30"))
	assert.Equal(t, "30", b.Source())
	playing, err = b.IsPlaying()
	require.NoError(t, err)
	assert.True(t, playing)

	require.NoError(t, b.Stop())
	playing, err = b.IsPlaying()
	require.NoError(t, err)
	assert.False(t, playing)
	assert.Equal(t, "30", b.Source(), "source survives stop")
}

func TestBackend_PlayReplaces(t *testing.T) {
	b := sleeper(t)

	require.NoError(t, b.Play("30"))
	require.NoError(t, b.Play("31"))
	assert.Equal(t, "31", b.Source())

	playing, err := b.IsPlaying()
	require.NoError(t, err)
	assert.True(t, playing)
}

func TestBackend_NaturalEnd(t *testing.T) {
	b := sleeper(t)

	require.NoError(t, b.Play("0"))
	assert.Eventually(t, func() bool {
		playing, err := b.IsPlaying()
		return err == nil && !playing
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBackend_Errors(t *testing.T) {
	_, err := process.NewBackend(process.Config{})
	assert.Error(t, err)

	b, err := process.NewBackend(process.Config{Command: "tendril-no-such-player"})
	require.NoError(t, err)
	assert.Error(t, b.Play("track.mp3"))
	assert.Error(t, process.Config{Command: "tendril-no-such-player"}.Validate())

	playing, err := b.IsPlaying()
	require.NoError(t, err)
	assert.False(t, playing)
}
