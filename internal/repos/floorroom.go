package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

type FloorRoomRepo interface {
	Attach(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error
	Detach(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error
	GetByFloorID(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.FloorRoom, error)
	Exists(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) (bool, error)
}

type floorRoomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFloorRoomRepo(db *gorm.DB, baseLog *logger.Logger) FloorRoomRepo {
	repoLog := baseLog.With("repo", "FloorRoomRepo")
	return &floorRoomRepo{db: db, log: repoLog}
}

func (r *floorRoomRepo) Attach(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if floorID == uuid.Nil || roomID == uuid.Nil {
		return nil
	}
	link := &types.FloorRoom{FloorID: floorID, RoomID: roomID, CreatedAt: time.Now()}
	// Attaching twice is a no-op, the composite key already exists.
	return transaction.WithContext(ctx).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		FirstOrCreate(link).Error
}

func (r *floorRoomRepo) Detach(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		Delete(&types.FloorRoom{}).Error
}

func (r *floorRoomRepo) GetByFloorID(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.FloorRoom, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FloorRoom
	if floorID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("floor_id = ?", floorID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *floorRoomRepo) Exists(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.FloorRoom{}).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
