package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xavierspacelix/jamming/internal/domain"
	"github.com/xavierspacelix/jamming/pkg/log"
)

// GormQueueRepository implements QueueRepository using GORM.
type GormQueueRepository struct {
	db *gorm.DB
}

// NewGormQueueRepository creates a new GORM-based queue repository.
func NewGormQueueRepository(db *gorm.DB) *GormQueueRepository {
	return &GormQueueRepository{db: db}
}

// Append stores the entry at the tail of its room's queue.
func (r *GormQueueRepository) Append(ctx context.Context, entry *domain.QueueEntry) error {
	l := log.Ctx(ctx)

	entry.ID = uuid.New().String()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		row := tx.Model(&domain.EntryModel{}).
			Where("room_id = ?", entry.RoomID).
			Select("COALESCE(MAX(position), 0)").
			Row()
		if err := row.Scan(&maxPos); err != nil {
			return err
		}

		entry.Position = maxPos + 1

		model := domain.EntryToModel(entry)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		entry.CreatedAt = model.CreatedAt
		return nil
	})
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, entry.RoomID).Msg("failed to append entry")
		return err
	}

	l.Debug().Str(log.FieldEntryID, entry.ID).Int("position", entry.Position).Msg("entry appended")
	return nil
}

// Remove deletes the entry by id.
func (r *GormQueueRepository) Remove(ctx context.Context, entryID string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Delete(&domain.EntryModel{}, "id = ?", entryID)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldEntryID, entryID).Msg("failed to remove entry")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Reorder renumbers the room's entries to 1..N in a single transaction.
func (r *GormQueueRepository) Reorder(ctx context.Context, roomID string, orderedIDs []string, strict bool) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []domain.EntryModel
		if err := tx.
			Where("room_id = ?", roomID).
			Order("position ASC, created_at ASC, id ASC").
			Find(&models).Error; err != nil {
			return err
		}

		existing := make(map[string]int, len(models)) // id -> index in current order
		for i, m := range models {
			existing[m.ID] = i
		}

		// Requested ids filtered to ones actually in the room, deduplicated.
		final := make([]string, 0, len(models))
		seen := make(map[string]bool, len(models))
		for _, id := range orderedIDs {
			if _, ok := existing[id]; ok && !seen[id] {
				final = append(final, id)
				seen[id] = true
			}
		}

		if strict && len(final) != len(models) {
			return ErrIncompleteReorder
		}

		// Omitted entries keep their relative order after the supplied ones.
		for _, m := range models {
			if !seen[m.ID] {
				final = append(final, m.ID)
			}
		}

		for i, id := range final {
			pos := i + 1
			if models[existing[id]].Position == pos {
				continue
			}
			if err := tx.Model(&domain.EntryModel{}).
				Where("id = ?", id).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrIncompleteReorder) {
			l.Error().Err(err).Str(log.FieldRoomID, roomID).Msg("failed to reorder queue")
		}
		return err
	}

	l.Debug().Str(log.FieldRoomID, roomID).Int("requested", len(orderedIDs)).Msg("queue reordered")
	return nil
}

// GetEntry retrieves an entry by id.
func (r *GormQueueRepository) GetEntry(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	var model domain.EntryModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", entryID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListByRoom returns the room's entries in canonical order.
func (r *GormQueueRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.QueueEntry, error) {
	l := log.Ctx(ctx)

	var models []domain.EntryModel
	result := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("position ASC, created_at ASC, id ASC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to list entries")
		return nil, result.Error
	}

	entries := make([]domain.QueueEntry, len(models))
	for i, model := range models {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// AddVote adjusts the vote counter and returns the updated entry.
func (r *GormQueueRepository) AddVote(ctx context.Context, entryID string, delta int) (*domain.QueueEntry, error) {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.EntryModel{}).
		Where("id = ?", entryID).
		UpdateColumn("votes", gorm.Expr("votes + ?", delta))
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldEntryID, entryID).Msg("failed to update votes")
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrEntryNotFound
	}

	return r.GetEntry(ctx, entryID)
}
