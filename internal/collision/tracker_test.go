package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Collided())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	owned, collided := tracker.Track("global\x00price", 0x1234567890abcdef)
	require.False(t, owned)
	require.False(t, collided)

	owned, collided = tracker.Track("global\x00size", 0xfedcba0987654321)
	require.False(t, owned)
	require.False(t, collided)

	t.Run("SameKeyIsOwned", func(t *testing.T) {
		owned, collided := tracker.Track("global\x00price", 0x1234567890abcdef)
		require.True(t, owned)
		require.False(t, collided)
		require.False(t, tracker.HasCollision())
	})
}

func TestTracker_Collision(t *testing.T) {
	tracker := NewTracker()

	tracker.Track("global\x00price", 0x1234567890abcdef)
	owned, collided := tracker.Track("type\x00Quote\x00price", 0x1234567890abcdef)
	require.False(t, owned)
	require.True(t, collided)
	require.True(t, tracker.HasCollision())
	require.Equal(t, []string{"type\x00Quote\x00price"}, tracker.Collided())

	// the first owner keeps the hash
	owned, collided = tracker.Track("global\x00price", 0x1234567890abcdef)
	require.True(t, owned)
	require.False(t, collided)
}
