package domain

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// Room is an isolated namespace holding one ordered queue and its viewers.
type Room struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"created_at"`
}

// Room codes are short opaque identifiers, matched case-insensitively.
var roomCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{4,64}$`)

// ValidRoomCode reports whether code has an acceptable shape.
func ValidRoomCode(code string) bool {
	return roomCodeRe.MatchString(code)
}

// NormalizeRoomCode maps a code to its canonical (uppercase) form so that
// lookups are case-insensitive.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateRoomCode returns a random 6-character hex code, uppercased.
func GenerateRoomCode() string {
	b := make([]byte, 3)
	rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}

// CreateRoomRequest is the payload for room creation.
type CreateRoomRequest struct {
	HostName string `json:"host_name" binding:"required"`
}

// RoomResponse is a room together with its current queue.
type RoomResponse struct {
	Room
	Queue []QueueEntry `json:"queue"`
}

// ValidateRoomResponse confirms a room code resolves to a live room.
type ValidateRoomResponse struct {
	Code string `json:"code"`
	Host string `json:"host"`
}
