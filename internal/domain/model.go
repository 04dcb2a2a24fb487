package domain

import (
	"time"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Code      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Host      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts RoomModel to domain Room.
func (m *RoomModel) ToDomain() *Room {
	return &Room{
		ID:        m.ID,
		Code:      m.Code,
		Host:      m.Host,
		CreatedAt: m.CreatedAt,
	}
}

// RoomToModel converts domain Room to RoomModel.
func RoomToModel(r *Room) *RoomModel {
	return &RoomModel{
		ID:        r.ID,
		Code:      r.Code,
		Host:      r.Host,
		CreatedAt: r.CreatedAt,
	}
}

// EntryModel is the GORM model for the requests table.
type EntryModel struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	RoomID      string `gorm:"type:varchar(36);index:idx_requests_room_position;not null"`
	VideoID     string `gorm:"type:varchar(64);not null"`
	Title       string `gorm:"type:varchar(300);not null"`
	Channel     string `gorm:"type:varchar(200)"`
	Thumbnail   string `gorm:"type:text"`
	RequestedBy string `gorm:"type:varchar(100)"`
	Votes       int    `gorm:"default:0"`
	// Position carries the order key. Uniqueness per room is maintained by
	// the store's per-room serialization, not by a DB constraint, so a
	// reorder can renumber rows freely inside one transaction.
	Position  int       `gorm:"index:idx_requests_room_position"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for EntryModel.
func (EntryModel) TableName() string {
	return "requests"
}

// ToDomain converts EntryModel to domain QueueEntry.
func (m *EntryModel) ToDomain() *QueueEntry {
	return &QueueEntry{
		ID:          m.ID,
		RoomID:      m.RoomID,
		VideoID:     m.VideoID,
		Title:       m.Title,
		Channel:     m.Channel,
		Thumbnail:   m.Thumbnail,
		RequestedBy: m.RequestedBy,
		Votes:       m.Votes,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
	}
}

// EntryToModel converts domain QueueEntry to EntryModel.
func EntryToModel(e *QueueEntry) *EntryModel {
	return &EntryModel{
		ID:          e.ID,
		RoomID:      e.RoomID,
		VideoID:     e.VideoID,
		Title:       e.Title,
		Channel:     e.Channel,
		Thumbnail:   e.Thumbnail,
		RequestedBy: e.RequestedBy,
		Votes:       e.Votes,
		Position:    e.Position,
		CreatedAt:   e.CreatedAt,
	}
}
