package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

type FloorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, floors []*types.Floor) ([]*types.Floor, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Floor, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Floor, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type floorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFloorRepo(db *gorm.DB, baseLog *logger.Logger) FloorRepo {
	repoLog := baseLog.With("repo", "FloorRepo")
	return &floorRepo{db: db, log: repoLog}
}

func (r *floorRepo) Create(ctx context.Context, tx *gorm.DB, floors []*types.Floor) ([]*types.Floor, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(floors) == 0 {
		return []*types.Floor{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&floors).Error; err != nil {
		return nil, err
	}
	return floors, nil
}

func (r *floorRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Floor, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Floor
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *floorRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Floor, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Floor
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *floorRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Floor{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *floorRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	return r.UpdateFields(ctx, tx, id, map[string]any{"status": status})
}

func (r *floorRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Floor{}).Error
}
