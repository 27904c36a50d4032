package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomKeySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"b3b2c1d0", "a1f4e9c8"},
		{"same", "same"},
	}
	for _, p := range pairs {
		assert.Equal(t, RoomKey(p[0], p[1]), RoomKey(p[1], p[0]))
	}
}

func TestRoomKeyOrdering(t *testing.T) {
	assert.Equal(t, "a_b", RoomKey("b", "a"))
	assert.Equal(t, "a_b", RoomKey("a", "b"))
}

func TestRoomKeyDistinctCounterparts(t *testing.T) {
	assert.NotEqual(t, RoomKey("a", "b"), RoomKey("a", "c"))
	assert.NotEqual(t, RoomKey("a", "b"), RoomKey("b", "c"))
}
