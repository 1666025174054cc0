package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

// RoomObjectRepo owns the object_count aggregate on room: every insert
// or delete of a room_object row adjusts the counter inside the same
// transaction, so the pair can never drift apart.
type RoomObjectRepo interface {
	CreateAndCount(ctx context.Context, tx *gorm.DB, objects []*types.RoomObject) ([]*types.RoomObject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RoomObject, error)
	GetByRoomIDOrdered(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.RoomObject, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	DeleteAndCount(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type roomObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoomObjectRepo(db *gorm.DB, baseLog *logger.Logger) RoomObjectRepo {
	repoLog := baseLog.With("repo", "RoomObjectRepo")
	return &roomObjectRepo{db: db, log: repoLog}
}

func (r *roomObjectRepo) CreateAndCount(ctx context.Context, tx *gorm.DB, objects []*types.RoomObject) ([]*types.RoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(objects) == 0 {
		return []*types.RoomObject{}, nil
	}
	perRoom := map[uuid.UUID]int{}
	for _, o := range objects {
		o.SyncAliases()
		perRoom[o.RoomID]++
	}
	err := transaction.WithContext(ctx).Transaction(func(innerTx *gorm.DB) error {
		if err := innerTx.Create(&objects).Error; err != nil {
			return err
		}
		for roomID, n := range perRoom {
			if err := innerTx.Model(&types.Room{}).
				Where("id = ?", roomID).
				Updates(map[string]any{
					"object_count": gorm.Expr("object_count + ?", n),
					"updated_at":   time.Now(),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

func (r *roomObjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.RoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RoomObject
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

func (r *roomObjectRepo) GetByRoomIDOrdered(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.RoomObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RoomObject
	if roomID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *roomObjectRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	updates = types.NormalizeObjectUpdates(updates)
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.RoomObject{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *roomObjectRepo) DeleteAndCount(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Transaction(func(innerTx *gorm.DB) error {
		var rows []*types.RoomObject
		if err := innerTx.Select("id", "room_id").
			Where("id IN ?", ids).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		perRoom := map[uuid.UUID]int{}
		deleteIDs := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			perRoom[row.RoomID]++
			deleteIDs = append(deleteIDs, row.ID)
		}
		if err := innerTx.Where("id IN ?", deleteIDs).
			Delete(&types.RoomObject{}).Error; err != nil {
			return err
		}
		for roomID, n := range perRoom {
			// The CASE guard keeps the counter at zero if it was
			// already out of sync, it must never go negative.
			if err := innerTx.Model(&types.Room{}).
				Where("id = ?", roomID).
				Updates(map[string]any{
					"object_count": gorm.Expr("CASE WHEN object_count >= ? THEN object_count - ? ELSE 0 END", n, n),
					"updated_at":   time.Now(),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
