package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	goredis "github.com/yungbote/mindpalace-backend/internal/clients/redis"
	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/sse"
	"github.com/yungbote/mindpalace-backend/internal/types"
	"github.com/yungbote/mindpalace-backend/internal/utils"
)

// PalaceGenerationService runs the association-generation workflow for a
// (floor, room) pair: extract concepts from the floor's source text,
// pair them with the room's objects in position order, and persist the
// resulting associations. Regeneration replaces the pair's old rows.
type PalaceGenerationService interface {
	EnqueueForFloorRoom(ctx context.Context, userID, floorID, roomID uuid.UUID, numConcepts int) (*types.PalaceGenerationRun, error)
	StartWorker(ctx context.Context)
}

type palaceGenerationService struct {
	db  *gorm.DB
	log *logger.Logger

	sseHub *sse.SSEHub

	floorRepo     repos.FloorRepo
	roomRepo      repos.RoomRepo
	objectRepo    repos.RoomObjectRepo
	pdfRepo       repos.PDFFileRepo
	floorRoomRepo repos.FloorRoomRepo
	assocRepo     repos.AssociationRepo
	runRepo       repos.PalaceGenerationRunRepo

	concepts     ConceptService
	associations AssociationService
	regenLock    goredis.RegenLock
}

func NewPalaceGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sseHub *sse.SSEHub,
	floorRepo repos.FloorRepo,
	roomRepo repos.RoomRepo,
	objectRepo repos.RoomObjectRepo,
	pdfRepo repos.PDFFileRepo,
	floorRoomRepo repos.FloorRoomRepo,
	assocRepo repos.AssociationRepo,
	runRepo repos.PalaceGenerationRunRepo,
	concepts ConceptService,
	associations AssociationService,
	regenLock goredis.RegenLock,
) PalaceGenerationService {
	return &palaceGenerationService{
		db:            db,
		log:           baseLog.With("service", "PalaceGenerationService"),
		sseHub:        sseHub,
		floorRepo:     floorRepo,
		roomRepo:      roomRepo,
		objectRepo:    objectRepo,
		pdfRepo:       pdfRepo,
		floorRoomRepo: floorRoomRepo,
		assocRepo:     assocRepo,
		runRepo:       runRepo,
		concepts:      concepts,
		associations:  associations,
		regenLock:     regenLock,
	}
}

func (pgs *palaceGenerationService) EnqueueForFloorRoom(ctx context.Context, userID, floorID, roomID uuid.UUID, numConcepts int) (*types.PalaceGenerationRun, error) {
	var run *types.PalaceGenerationRun

	err := pgs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		floors, err := pgs.floorRepo.GetByIDs(ctx, tx, []uuid.UUID{floorID})
		if err != nil {
			return fmt.Errorf("load floor: %w", err)
		}
		if len(floors) == 0 || floors[0] == nil || floors[0].UserID != userID {
			return fmt.Errorf("floor not found or not owned by user")
		}
		rooms, err := pgs.roomRepo.GetByIDs(ctx, tx, []uuid.UUID{roomID})
		if err != nil {
			return fmt.Errorf("load room: %w", err)
		}
		if len(rooms) == 0 || rooms[0] == nil || rooms[0].UserID != userID {
			return fmt.Errorf("room not found or not owned by user")
		}
		attached, err := pgs.floorRoomRepo.Exists(ctx, tx, floorID, roomID)
		if err != nil {
			return fmt.Errorf("check floor-room link: %w", err)
		}
		if !attached {
			return fmt.Errorf("room is not attached to floor")
		}

		if err := pgs.floorRepo.SetStatus(ctx, tx, floorID, types.FloorStatusGenerating); err != nil {
			return fmt.Errorf("set floor generating: %w", err)
		}

		now := time.Now()
		run = &types.PalaceGenerationRun{
			ID:          uuid.New(),
			UserID:      userID,
			FloorID:     floorID,
			RoomID:      roomID,
			NumConcepts: numConcepts,
			Status:      "queued",
			Stage:       "concepts",
			Progress:    0,
			Attempts:    0,
			Metadata:    datatypes.JSON([]byte(`{}`)),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := pgs.runRepo.Create(ctx, tx, []*types.PalaceGenerationRun{run}); err != nil {
			return fmt.Errorf("create generation run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pgs.broadcast(userID, sse.SSEEventGenerationQueued, map[string]any{
		"run_id":   run.ID,
		"floor_id": floorID,
		"room_id":  roomID,
	})
	return run, nil
}

func (pgs *palaceGenerationService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		// Worker policy
		maxAttempts := utils.GetEnvAsInt("GENERATION_MAX_ATTEMPTS", 5, pgs.log)
		retryDelay := time.Duration(utils.GetEnvAsInt("GENERATION_RETRY_DELAY_SECONDS", 30, pgs.log)) * time.Second
		staleRunning := time.Duration(utils.GetEnvAsInt("GENERATION_STALE_RUNNING_SECONDS", 120, pgs.log)) * time.Second

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := pgs.runRepo.ClaimNextRunnable(ctx, pgs.db, maxAttempts, retryDelay, staleRunning)
				if err != nil {
					pgs.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if run == nil {
					continue
				}
				pgs.processRun(ctx, run)
			}
		}
	}()
}

func (pgs *palaceGenerationService) processRun(ctx context.Context, run *types.PalaceGenerationRun) {
	userID := run.UserID
	runID := run.ID
	floorID := run.FloorID
	roomID := run.RoomID

	fail := func(stage string, err error) {
		now := time.Now()
		_ = pgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"status":        "failed",
			"stage":         stage,
			"error":         err.Error(),
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
		_ = pgs.floorRepo.SetStatus(ctx, nil, floorID, types.FloorStatusFailed)
		pgs.broadcast(userID, sse.SSEEventGenerationFailed, map[string]any{
			"run_id":   runID,
			"floor_id": floorID,
			"room_id":  roomID,
			"stage":    stage,
			"error":    err.Error(),
		})
	}

	progress := func(stage string, pct int, msg string) {
		now := time.Now()
		_ = pgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"stage":        stage,
			"progress":     pct,
			"heartbeat_at": now,
			"updated_at":   now,
		})
		pgs.broadcast(userID, sse.SSEEventGenerationProgress, map[string]any{
			"run_id":   runID,
			"floor_id": floorID,
			"room_id":  roomID,
			"stage":    stage,
			"progress": pct,
			"message":  msg,
		})
	}

	// One regeneration at a time per (floor, room). If the lease is
	// held, push the run back to the queue instead of waiting on it.
	token, acquired, err := pgs.regenLock.Acquire(ctx, floorID, roomID, 5*time.Minute)
	if err != nil {
		fail("concepts", fmt.Errorf("acquire regeneration lock: %w", err))
		return
	}
	if !acquired {
		pgs.log.Info("Regeneration already in progress, requeueing run",
			"run_id", runID, "floor_id", floorID, "room_id", roomID)
		_ = pgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
			"status":    "queued",
			"attempts":  gorm.Expr("CASE WHEN attempts > 0 THEN attempts - 1 ELSE 0 END"),
			"locked_at": nil,
		})
		return
	}
	defer func() { _ = pgs.regenLock.Release(ctx, floorID, roomID, token) }()

	// Preconditions are checked before any model call is made.
	sourceText, err := pgs.loadSourceText(ctx, floorID)
	if err != nil {
		fail("concepts", err)
		return
	}
	if strings.TrimSpace(sourceText) == "" {
		fail("concepts", fmt.Errorf("floor has no extracted source text"))
		return
	}

	objects, err := pgs.objectRepo.GetByRoomIDOrdered(ctx, nil, roomID)
	if err != nil {
		fail("concepts", fmt.Errorf("load room objects: %w", err))
		return
	}
	if len(objects) == 0 {
		fail("concepts", fmt.Errorf("room has no objects to anchor concepts to"))
		return
	}

	// The concept count is capped by the number of anchors available.
	n := run.NumConcepts
	if n <= 0 || n > len(objects) {
		n = len(objects)
	}

	progress("concepts", 10, fmt.Sprintf("Extracting %d concepts", n))
	concepts := pgs.concepts.ExtractConcepts(ctx, sourceText, n)

	progress("associations", 40, "Building associations")
	drafts := pgs.associations.BuildAssociations(ctx, concepts, objects)

	progress("persist", 80, "Saving associations")
	saved, total, err := pgs.writeAssociations(ctx, floorID, roomID, drafts)
	if err != nil {
		fail("persist", err)
		return
	}
	if saved == 0 {
		fail("persist", fmt.Errorf("no associations could be saved"))
		return
	}
	if saved < total {
		pgs.log.Warn("Some association rows failed to save",
			"run_id", runID, "saved", saved, "total", total)
	}

	now := time.Now()
	if err := pgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
		"status":     "succeeded",
		"stage":      "done",
		"progress":   100,
		"locked_at":  nil,
		"updated_at": now,
	}); err != nil {
		pgs.log.Warn("Failed to mark run succeeded", "run_id", runID, "error", err)
	}
	if err := pgs.floorRepo.SetStatus(ctx, nil, floorID, types.FloorStatusReady); err != nil {
		pgs.log.Warn("Failed to mark floor ready", "floor_id", floorID, "error", err)
	}

	pgs.broadcast(userID, sse.SSEEventGenerationSucceeded, map[string]any{
		"run_id":   runID,
		"floor_id": floorID,
		"room_id":  roomID,
		"saved":    saved,
		"total":    total,
	})
}

// loadSourceText concatenates the extracted text of every PDF on the floor.
func (pgs *palaceGenerationService) loadSourceText(ctx context.Context, floorID uuid.UUID) (string, error) {
	files, err := pgs.pdfRepo.GetByFloorID(ctx, nil, floorID)
	if err != nil {
		return "", fmt.Errorf("load floor files: %w", err)
	}
	var b strings.Builder
	for _, f := range files {
		if f == nil || strings.TrimSpace(f.ExtractedText) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(f.ExtractedText)
	}
	return b.String(), nil
}

// writeAssociations replaces the pair's association rows: the old set
// is deleted first, then new rows are inserted one by one so a single
// bad row cannot sink the batch. Each insert runs in its own statement
// because a failed insert inside a shared transaction would poison the
// rest of the batch. Returns saved and attempted counts.
func (pgs *palaceGenerationService) writeAssociations(ctx context.Context, floorID, roomID uuid.UUID, drafts []AssociationDraft) (int, int, error) {
	if err := pgs.assocRepo.DeleteByFloorAndRoom(ctx, nil, floorID, roomID); err != nil {
		return 0, len(drafts), fmt.Errorf("delete previous associations: %w", err)
	}
	saved := 0
	now := time.Now()
	for _, d := range drafts {
		row := &types.FloorRoomObject{
			ID:                 uuid.New(),
			FloorID:            floorID,
			RoomID:             roomID,
			RoomObjectID:       d.RoomObjectID,
			Concept:            d.Concept,
			ConceptDescription: d.ConceptDescription,
			Association:        d.Association,
			Position:           d.Position,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := pgs.assocRepo.CreateOne(ctx, nil, row); err != nil {
			pgs.log.Warn("Failed to save association row",
				"floor_id", floorID, "room_object_id", d.RoomObjectID, "error", err)
			continue
		}
		saved++
	}
	return saved, len(drafts), nil
}

func (pgs *palaceGenerationService) broadcast(userID uuid.UUID, event sse.SSEEvent, data any) {
	if pgs.sseHub == nil {
		return
	}
	pgs.sseHub.Broadcast(sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}
