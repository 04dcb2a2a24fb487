package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRoomCode(t *testing.T) {
	valid := []string{"AB12CD", "ab12cd", "room_1", "a-b-c-d", "1234"}
	for _, code := range valid {
		assert.True(t, ValidRoomCode(code), "expected %q to be valid", code)
	}

	invalid := []string{"", "abc", "has space", "room!", "room:1"}
	for _, code := range invalid {
		assert.False(t, ValidRoomCode(code), "expected %q to be invalid", code)
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeRoomCode("ab12cd"))
	assert.Equal(t, "AB12CD", NormalizeRoomCode("  Ab12Cd "))
}

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		assert.Len(t, code, 6)
		assert.True(t, ValidRoomCode(code))
		assert.Equal(t, NormalizeRoomCode(code), code, "generated codes are already canonical")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1, "codes should not collide constantly")
}
