package domain

import "time"

// QueueEntry is one request to play a media item in a room's queue.
// Position is the order key: smallest position is the head ("now playing").
type QueueEntry struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	Thumbnail   string    `json:"thumbnail"`
	RequestedBy string    `json:"requested_by"`
	Votes       int       `json:"votes"`
	Position    int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueueSnapshot is the full ordered queue of a room at one instant.
// It is the unit of broadcast: subscribers always receive complete state,
// never diffs.
type QueueSnapshot struct {
	Queue []QueueEntry `json:"queue"`
}

// MediaRef identifies a playable media item from the search provider.
type MediaRef struct {
	VideoID   string `json:"id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
}

// AppendRequest is the payload for adding an entry to a room queue.
type AppendRequest struct {
	RoomCode string   `json:"room_code" binding:"required"`
	Video    MediaRef `json:"video" binding:"required"`
}

// ReorderRequest is the payload for rewriting a room queue's order.
type ReorderRequest struct {
	RoomCode string   `json:"room_code" binding:"required"`
	EntryIDs []string `json:"entry_ids" binding:"required"`
}

// VoteRequest is the payload for voting an entry up or down.
type VoteRequest struct {
	EntryID string `json:"entry_id" binding:"required"`
	Delta   int    `json:"delta" binding:"min=-1,max=1"`
}
