package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

// PDFService attaches study material to a floor: the upload goes to the
// bucket, the text is extracted immediately, and both land in one
// pdf_file row so generation never has to re-download the file.
type PDFService interface {
	UploadToFloor(ctx context.Context, userID, floorID uuid.UUID, originalName, mimeType string, data []byte) (*types.PDFFile, error)
	ListByFloor(ctx context.Context, userID, floorID uuid.UUID) ([]*types.PDFFile, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

type pdfService struct {
	db  *gorm.DB
	log *logger.Logger

	floorRepo repos.FloorRepo
	pdfRepo   repos.PDFFileRepo
	bucket    BucketService
}

func NewPDFService(
	db *gorm.DB,
	baseLog *logger.Logger,
	floorRepo repos.FloorRepo,
	pdfRepo repos.PDFFileRepo,
	bucket BucketService,
) PDFService {
	return &pdfService{
		db:        db,
		log:       baseLog.With("service", "PDFService"),
		floorRepo: floorRepo,
		pdfRepo:   pdfRepo,
		bucket:    bucket,
	}
}

func (s *pdfService) UploadToFloor(ctx context.Context, userID, floorID uuid.UUID, originalName, mimeType string, data []byte) (*types.PDFFile, error) {
	floor, err := s.ownedFloor(ctx, userID, floorID)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(originalName, mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text could be extracted from %s", originalName)
	}

	fileID := uuid.New()
	storageKey := fmt.Sprintf("floors/%s/files/%s%s", floor.ID, fileID, strings.ToLower(filepath.Ext(originalName)))

	fileURL := ""
	if s.bucket != nil {
		if err := s.bucket.UploadFile(ctx, storageKey, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("upload file: %w", err)
		}
		fileURL = s.bucket.GetPublicURL(storageKey)
	}

	now := time.Now()
	file := &types.PDFFile{
		ID:            fileID,
		FloorID:       floor.ID,
		OriginalName:  originalName,
		StorageKey:    storageKey,
		FileURL:       fileURL,
		ExtractedText: text,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.pdfRepo.Create(ctx, nil, []*types.PDFFile{file}); err != nil {
		return nil, fmt.Errorf("create pdf_file row: %w", err)
	}
	return file, nil
}

func (s *pdfService) ListByFloor(ctx context.Context, userID, floorID uuid.UUID) ([]*types.PDFFile, error) {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return nil, err
	}
	return s.pdfRepo.GetByFloorID(ctx, nil, floorID)
}

func (s *pdfService) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	files, err := s.pdfRepo.GetByIDs(ctx, nil, []uuid.UUID{fileID})
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if len(files) == 0 || files[0] == nil {
		return fmt.Errorf("file not found")
	}
	file := files[0]
	if _, err := s.ownedFloor(ctx, userID, file.FloorID); err != nil {
		return err
	}

	if s.bucket != nil && file.StorageKey != "" {
		if err := s.bucket.DeleteFile(ctx, file.StorageKey); err != nil {
			s.log.Warn("Failed to delete file from bucket", "key", file.StorageKey, "error", err)
		}
	}
	return s.pdfRepo.DeleteByIDs(ctx, nil, []uuid.UUID{fileID})
}

func (s *pdfService) ownedFloor(ctx context.Context, userID, floorID uuid.UUID) (*types.Floor, error) {
	floors, err := s.floorRepo.GetByIDs(ctx, nil, []uuid.UUID{floorID})
	if err != nil {
		return nil, fmt.Errorf("load floor: %w", err)
	}
	if len(floors) == 0 || floors[0] == nil || floors[0].UserID != userID {
		return nil, fmt.Errorf("floor not found or not owned by user")
	}
	return floors[0], nil
}
