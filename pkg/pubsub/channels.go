package pubsub

import (
	"fmt"
	"strings"
)

// Channel naming convention: one channel per room.
const channelRoomFormat = "room:%s"

// Event types carried on room channels.
const (
	// EventQueueSnapshot carries the full ordered queue of a room.
	EventQueueSnapshot = "queue_snapshot"
)

// RoomChannel returns the bus channel name for a room's queue events.
func RoomChannel(roomCode string) string {
	return fmt.Sprintf(channelRoomFormat, roomCode)
}

// roomFromChannel extracts the room code from a channel name.
// Returns an error for names that are not room channels.
func roomFromChannel(channel string) (string, error) {
	parts := strings.SplitN(channel, ":", 2)
	if len(parts) != 2 || parts[0] != "room" || parts[1] == "" {
		return "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[1], nil
}
