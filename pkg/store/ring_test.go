package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibelab/vibrascope/pkg/capture"
)

func TestRingAppendBelowCapacity(t *testing.T) {
	r := NewRing(4)

	for i := 0; i < 4; i++ {
		slot, evicted := r.Append()
		assert.Equal(t, i, slot)
		assert.False(t, evicted)
		assert.Equal(t, 0, r.Oldest(), "oldest stays fixed below capacity")
	}
	assert.Equal(t, 4, r.Count())
	assert.Equal(t, 3, r.Newest())
}

func TestRingEvictionAtCapacity(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 3; i++ {
		r.Append()
	}

	slot, evicted := r.Append()
	assert.Equal(t, 0, slot, "wraps to the oldest physical slot")
	assert.True(t, evicted)
	assert.Equal(t, 3, r.Count(), "count stays at capacity")
	assert.Equal(t, 1, r.Oldest())
	assert.Equal(t, 0, r.Newest())
}

func TestRingLogicalSlotMapping(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Append()
	}
	// Physical layout now holds logical 0..2 at slots 2, 0, 1.

	slot, err := r.Slot(0)
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	slot, err = r.Slot(2)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
}

func TestRingSlotOutOfRange(t *testing.T) {
	r := NewRing(3)
	r.Append()

	tests := []int{-1, 1, 5}
	for _, logical := range tests {
		_, err := r.Slot(logical)
		require.Error(t, err)
		assert.True(t, capture.IsNotFound(err))
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Append()
	}

	r.Reset()
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 0, r.Oldest())
	assert.Equal(t, 0, r.NextSlot())
}

func TestRestoreRing(t *testing.T) {
	tests := []struct {
		name                  string
		count, oldest, newest int
		ok                    bool
	}{
		{"empty", 0, 0, 0, true},
		{"partial", 2, 0, 1, true},
		{"full wrapped", 3, 1, 0, true},
		{"count above capacity", 4, 0, 0, false},
		{"negative count", -1, 0, 0, false},
		{"oldest out of range", 1, 3, 0, false},
		{"inconsistent cursors", 2, 0, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := RestoreRing(3, tt.count, tt.oldest, tt.newest)
			assert.Equal(t, tt.ok, ok)
			if ok {
				require.NotNil(t, r)
				assert.Equal(t, tt.count, r.Count())
			}
		})
	}
}
