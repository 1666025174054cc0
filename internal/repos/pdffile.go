package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

type PDFFileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, files []*types.PDFFile) ([]*types.PDFFile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.PDFFile, error)
	GetByFloorID(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.PDFFile, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type pdfFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPDFFileRepo(db *gorm.DB, baseLog *logger.Logger) PDFFileRepo {
	repoLog := baseLog.With("repo", "PDFFileRepo")
	return &pdfFileRepo{db: db, log: repoLog}
}

func (r *pdfFileRepo) Create(ctx context.Context, tx *gorm.DB, files []*types.PDFFile) ([]*types.PDFFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(files) == 0 {
		return []*types.PDFFile{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *pdfFileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.PDFFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PDFFile
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

func (r *pdfFileRepo) GetByFloorID(ctx context.Context, tx *gorm.DB, floorID uuid.UUID) ([]*types.PDFFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PDFFile
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

func (r *pdfFileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
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
		Model(&types.PDFFile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *pdfFileRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.PDFFile{}).Error
}
