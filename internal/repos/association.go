package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

type AssociationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.FloorRoomObject) ([]*types.FloorRoomObject, error)
	CreateOne(ctx context.Context, tx *gorm.DB, row *types.FloorRoomObject) error
	DeleteByFloorAndRoom(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error
	GetByFloorAndRoomOrdered(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) ([]*types.FloorRoomObject, error)
	GetByFloorIDOrdered(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.FloorRoomObject, error)
	CountByFloorAndRoom(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) (int64, error)
}

type associationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssociationRepo(db *gorm.DB, baseLog *logger.Logger) AssociationRepo {
	repoLog := baseLog.With("repo", "AssociationRepo")
	return &associationRepo{db: db, log: repoLog}
}

func (r *associationRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.FloorRoomObject) ([]*types.FloorRoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.FloorRoomObject{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateOne inserts a single association row. The consistency writer
// uses it so one bad row cannot sink the rest of the batch.
func (r *associationRepo) CreateOne(ctx context.Context, tx *gorm.DB, row *types.FloorRoomObject) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *associationRepo) DeleteByFloorAndRoom(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if floorID == uuid.Nil || roomID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		Delete(&types.FloorRoomObject{}).Error
}

func (r *associationRepo) GetByFloorAndRoomOrdered(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) ([]*types.FloorRoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FloorRoomObject
	if floorID == uuid.Nil || roomID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *associationRepo) GetByFloorIDOrdered(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.FloorRoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.FloorRoomObject
	if floorID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("floor_id = ?", floorID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *associationRepo) CountByFloorAndRoom(ctx context.Context, tx *gorm.DB, floorID, roomID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.FloorRoomObject{}).
		Where("floor_id = ? AND room_id = ?", floorID, roomID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
