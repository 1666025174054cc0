package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/sse"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

// WalkthroughSlide is one stop on the mental walk through a room:
// the object, the concept pinned to it, and the mnemonic tying them.
type WalkthroughSlide struct {
	Position           int       `json:"position"`
	RoomObjectID       uuid.UUID `json:"room_object_id"`
	ObjectName         string    `json:"object_name"`
	ObjectDescription  string    `json:"object_description"`
	ObjectImageURL     string    `json:"object_image_url,omitempty"`
	Concept            string    `json:"concept"`
	ConceptDescription string    `json:"concept_description"`
	Association        string    `json:"association"`
}

type FloorService interface {
	CreateFloor(ctx context.Context, userID uuid.UUID, name string) (*types.Floor, error)
	ListFloors(ctx context.Context, userID uuid.UUID) ([]*types.Floor, error)
	GetFloor(ctx context.Context, userID, floorID uuid.UUID) (*types.Floor, error)
	UpdateFloor(ctx context.Context, userID, floorID uuid.UUID, updates map[string]any) error
	DeleteFloor(ctx context.Context, userID, floorID uuid.UUID) error

	AttachRoom(ctx context.Context, userID, floorID, roomID uuid.UUID) error
	DetachRoom(ctx context.Context, userID, floorID, roomID uuid.UUID) error
	ListRooms(ctx context.Context, userID, floorID uuid.UUID) ([]*types.Room, error)

	// ListAssociations is the flat table view of a floor's pairings.
	ListAssociations(ctx context.Context, userID, floorID uuid.UUID) ([]*types.FloorRoomObject, error)
	// Walkthrough joins a room's objects with the floor's associations
	// in position order for the slide-by-slide review UI.
	Walkthrough(ctx context.Context, userID, floorID, roomID uuid.UUID) ([]WalkthroughSlide, error)
}

type floorService struct {
	db  *gorm.DB
	log *logger.Logger

	sseHub *sse.SSEHub

	floorRepo     repos.FloorRepo
	roomRepo      repos.RoomRepo
	objectRepo    repos.RoomObjectRepo
	floorRoomRepo repos.FloorRoomRepo
	assocRepo     repos.AssociationRepo
}

func NewFloorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sseHub *sse.SSEHub,
	floorRepo repos.FloorRepo,
	roomRepo repos.RoomRepo,
	objectRepo repos.RoomObjectRepo,
	floorRoomRepo repos.FloorRoomRepo,
	assocRepo repos.AssociationRepo,
) FloorService {
	return &floorService{
		db:            db,
		log:           baseLog.With("service", "FloorService"),
		sseHub:        sseHub,
		floorRepo:     floorRepo,
		roomRepo:      roomRepo,
		objectRepo:    objectRepo,
		floorRoomRepo: floorRoomRepo,
		assocRepo:     assocRepo,
	}
}

func (s *floorService) CreateFloor(ctx context.Context, userID uuid.UUID, name string) (*types.Floor, error) {
	if name == "" {
		return nil, fmt.Errorf("floor name required")
	}
	now := time.Now()
	floor := &types.Floor{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Status:    types.FloorStatusGenerating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.floorRepo.Create(ctx, nil, []*types.Floor{floor}); err != nil {
		return nil, fmt.Errorf("create floor: %w", err)
	}
	if s.sseHub != nil {
		s.sseHub.Broadcast(sse.SSEMessage{
			Channel: sse.UserChannel(userID),
			Event:   sse.SSEEventFloorCreated,
			Data:    map[string]any{"floor": floor},
		})
	}
	return floor, nil
}

func (s *floorService) ListFloors(ctx context.Context, userID uuid.UUID) ([]*types.Floor, error) {
	return s.floorRepo.GetByUserID(ctx, nil, userID)
}

func (s *floorService) GetFloor(ctx context.Context, userID, floorID uuid.UUID) (*types.Floor, error) {
	return s.ownedFloor(ctx, userID, floorID)
}

func (s *floorService) UpdateFloor(ctx context.Context, userID, floorID uuid.UUID, updates map[string]any) error {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return err
	}
	// Status transitions belong to the generation workflow.
	delete(updates, "status")
	return s.floorRepo.UpdateFields(ctx, nil, floorID, updates)
}

func (s *floorService) DeleteFloor(ctx context.Context, userID, floorID uuid.UUID) error {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return err
	}
	return s.floorRepo.DeleteByIDs(ctx, nil, []uuid.UUID{floorID})
}

func (s *floorService) AttachRoom(ctx context.Context, userID, floorID, roomID uuid.UUID) error {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return err
	}
	rooms, err := s.roomRepo.GetByIDs(ctx, nil, []uuid.UUID{roomID})
	if err != nil {
		return fmt.Errorf("load room: %w", err)
	}
	if len(rooms) == 0 || rooms[0] == nil || rooms[0].UserID != userID {
		return fmt.Errorf("room not found or not owned by user")
	}
	return s.floorRoomRepo.Attach(ctx, nil, floorID, roomID)
}

func (s *floorService) DetachRoom(ctx context.Context, userID, floorID, roomID uuid.UUID) error {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return err
	}
	// Detaching also drops the pair's generated associations.
	if err := s.assocRepo.DeleteByFloorAndRoom(ctx, nil, floorID, roomID); err != nil {
		return fmt.Errorf("delete pair associations: %w", err)
	}
	return s.floorRoomRepo.Detach(ctx, nil, floorID, roomID)
}

func (s *floorService) ListRooms(ctx context.Context, userID, floorID uuid.UUID) ([]*types.Room, error) {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return nil, err
	}
	links, err := s.floorRoomRepo.GetByFloorID(ctx, nil, floorID)
	if err != nil {
		return nil, fmt.Errorf("load floor rooms: %w", err)
	}
	roomIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		roomIDs = append(roomIDs, link.RoomID)
	}
	return s.roomRepo.GetByIDs(ctx, nil, roomIDs)
}

func (s *floorService) ListAssociations(ctx context.Context, userID, floorID uuid.UUID) ([]*types.FloorRoomObject, error) {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return nil, err
	}
	return s.assocRepo.GetByFloorIDOrdered(ctx, nil, floorID)
}

func (s *floorService) Walkthrough(ctx context.Context, userID, floorID, roomID uuid.UUID) ([]WalkthroughSlide, error) {
	if _, err := s.ownedFloor(ctx, userID, floorID); err != nil {
		return nil, err
	}

	objects, err := s.objectRepo.GetByRoomIDOrdered(ctx, nil, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room objects: %w", err)
	}
	rows, err := s.assocRepo.GetByFloorAndRoomOrdered(ctx, nil, floorID, roomID)
	if err != nil {
		return nil, fmt.Errorf("load associations: %w", err)
	}

	byObject := make(map[uuid.UUID]*types.FloorRoomObject, len(rows))
	for _, row := range rows {
		byObject[row.RoomObjectID] = row
	}

	// Objects without an association are skipped, the walk only visits
	// anchors that carry a concept.
	slides := make([]WalkthroughSlide, 0, len(rows))
	for _, object := range objects {
		row, ok := byObject[object.ID]
		if !ok {
			continue
		}
		slides = append(slides, WalkthroughSlide{
			Position:           row.Position,
			RoomObjectID:       object.ID,
			ObjectName:         object.ObjectName,
			ObjectDescription:  object.ObjectDescription,
			ObjectImageURL:     object.ImageURL,
			Concept:            row.Concept,
			ConceptDescription: row.ConceptDescription,
			Association:        row.Association,
		})
	}
	return slides, nil
}

func (s *floorService) ownedFloor(ctx context.Context, userID, floorID uuid.UUID) (*types.Floor, error) {
	floors, err := s.floorRepo.GetByIDs(ctx, nil, []uuid.UUID{floorID})
	if err != nil {
		return nil, fmt.Errorf("load floor: %w", err)
	}
	if len(floors) == 0 || floors[0] == nil || floors[0].UserID != userID {
		return nil, fmt.Errorf("floor not found or not owned by user")
	}
	return floors[0], nil
}
