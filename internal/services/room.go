package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/sse"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

type RoomService interface {
	CreateRoom(ctx context.Context, userID uuid.UUID, name string) (*types.Room, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]*types.Room, error)
	GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*types.Room, []*types.RoomObject, error)
	UpdateRoom(ctx context.Context, userID, roomID uuid.UUID, updates map[string]any) error
	DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error

	AddObject(ctx context.Context, userID, roomID uuid.UUID, name, description string) (*types.RoomObject, error)
	UpdateObject(ctx context.Context, userID, objectID uuid.UUID, updates map[string]any) error
	DeleteObject(ctx context.Context, userID, objectID uuid.UUID) error

	// AddObjectsFromPhoto uploads a room photo, detects the objects in
	// it with the vision model, and creates a room_object per detection.
	AddObjectsFromPhoto(ctx context.Context, userID, roomID uuid.UUID, photo []byte, maxObjects int) ([]*types.RoomObject, error)
}

type roomService struct {
	db  *gorm.DB
	log *logger.Logger

	sseHub *sse.SSEHub

	roomRepo   repos.RoomRepo
	objectRepo repos.RoomObjectRepo

	bucket BucketService
	vision VisionService
	fal    FalClient
}

func NewRoomService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sseHub *sse.SSEHub,
	roomRepo repos.RoomRepo,
	objectRepo repos.RoomObjectRepo,
	bucket BucketService,
	vision VisionService,
	fal FalClient,
) RoomService {
	return &roomService{
		db:         db,
		log:        baseLog.With("service", "RoomService"),
		sseHub:     sseHub,
		roomRepo:   roomRepo,
		objectRepo: objectRepo,
		bucket:     bucket,
		vision:     vision,
		fal:        fal,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, userID uuid.UUID, name string) (*types.Room, error) {
	if name == "" {
		return nil, fmt.Errorf("room name required")
	}
	now := time.Now()
	room := &types.Room{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.roomRepo.Create(ctx, nil, []*types.Room{room}); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *roomService) ListRooms(ctx context.Context, userID uuid.UUID) ([]*types.Room, error) {
	return s.roomRepo.GetByUserID(ctx, nil, userID)
}

func (s *roomService) GetRoom(ctx context.Context, userID, roomID uuid.UUID) (*types.Room, []*types.RoomObject, error) {
	room, err := s.ownedRoom(ctx, userID, roomID)
	if err != nil {
		return nil, nil, err
	}
	objects, err := s.objectRepo.GetByRoomIDOrdered(ctx, nil, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("load room objects: %w", err)
	}
	return room, objects, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, userID, roomID uuid.UUID, updates map[string]any) error {
	if _, err := s.ownedRoom(ctx, userID, roomID); err != nil {
		return err
	}
	// object_count is repo-managed, never client-writable.
	delete(updates, "object_count")
	return s.roomRepo.UpdateFields(ctx, nil, roomID, updates)
}

func (s *roomService) DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	if _, err := s.ownedRoom(ctx, userID, roomID); err != nil {
		return err
	}
	return s.roomRepo.DeleteByIDs(ctx, nil, []uuid.UUID{roomID})
}

func (s *roomService) AddObject(ctx context.Context, userID, roomID uuid.UUID, name, description string) (*types.RoomObject, error) {
	if _, err := s.ownedRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("object name required")
	}

	position, err := s.nextPosition(ctx, roomID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	object := &types.RoomObject{
		ID:          uuid.New(),
		RoomID:      roomID,
		ObjectName:  name,
		Description: description,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.objectRepo.CreateAndCount(ctx, nil, []*types.RoomObject{object})
	if err != nil {
		return nil, fmt.Errorf("create room object: %w", err)
	}
	return created[0], nil
}

func (s *roomService) UpdateObject(ctx context.Context, userID, objectID uuid.UUID, updates map[string]any) error {
	if _, err := s.ownedObject(ctx, userID, objectID); err != nil {
		return err
	}
	return s.objectRepo.UpdateFields(ctx, nil, objectID, updates)
}

func (s *roomService) DeleteObject(ctx context.Context, userID, objectID uuid.UUID) error {
	if _, err := s.ownedObject(ctx, userID, objectID); err != nil {
		return err
	}
	return s.objectRepo.DeleteAndCount(ctx, nil, []uuid.UUID{objectID})
}

func (s *roomService) AddObjectsFromPhoto(ctx context.Context, userID, roomID uuid.UUID, photo []byte, maxObjects int) ([]*types.RoomObject, error) {
	room, err := s.ownedRoom(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	if len(photo) == 0 {
		return nil, fmt.Errorf("empty photo")
	}
	if s.bucket == nil {
		return nil, fmt.Errorf("photo storage not configured")
	}
	if s.vision == nil {
		return nil, fmt.Errorf("vision not configured")
	}

	key := fmt.Sprintf("rooms/%s/photos/%s.jpg", roomID, uuid.New())
	if err := s.bucket.UploadFile(ctx, key, bytes.NewReader(photo)); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	photoURL := s.bucket.GetPublicURL(key)

	detected, err := s.vision.DetectRoomObjects(ctx, photoURL, maxObjects)
	if err != nil {
		return nil, fmt.Errorf("detect objects: %w", err)
	}
	if len(detected) == 0 {
		return nil, fmt.Errorf("no objects detected in photo")
	}

	position, err := s.nextPosition(ctx, roomID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	objects := make([]*types.RoomObject, 0, len(detected))
	for i, d := range detected {
		objects = append(objects, &types.RoomObject{
			ID:          uuid.New(),
			RoomID:      roomID,
			ObjectName:  d.Name,
			Description: d.Description,
			Position:    position + i,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	created, err := s.objectRepo.CreateAndCount(ctx, nil, objects)
	if err != nil {
		return nil, fmt.Errorf("create room objects: %w", err)
	}

	if room.ThumbnailURL == "" {
		_ = s.roomRepo.UpdateFields(ctx, nil, roomID, map[string]any{"thumbnail_url": photoURL})
	}

	// Best effort: cut out a clean image per object. A failed cutout
	// just leaves image_url empty.
	if s.fal != nil {
		s.isolateObjectImages(ctx, photoURL, created)
	}

	if s.sseHub != nil {
		s.sseHub.Broadcast(sse.SSEMessage{
			Channel: sse.UserChannel(userID),
			Event:   sse.SSEEventRoomObjectsAdded,
			Data:    map[string]any{"room_id": roomID, "count": len(created)},
		})
	}
	return created, nil
}

func (s *roomService) isolateObjectImages(ctx context.Context, photoURL string, objects []*types.RoomObject) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, object := range objects {
		object := object
		g.Go(func() error {
			url, err := s.fal.ExtractObjectImage(gctx, photoURL, object.ObjectName)
			if err != nil {
				s.log.Warn("Object image isolation failed",
					"object_id", object.ID, "object", object.ObjectName, "error", err)
				return nil
			}
			if err := s.objectRepo.UpdateFields(gctx, nil, object.ID, map[string]any{"image_url": url}); err != nil {
				s.log.Warn("Failed to save object image url", "object_id", object.ID, "error", err)
				return nil
			}
			object.ImageURL = url
			return nil
		})
	}
	_ = g.Wait()
}

func (s *roomService) nextPosition(ctx context.Context, roomID uuid.UUID) (int, error) {
	existing, err := s.objectRepo.GetByRoomIDOrdered(ctx, nil, roomID)
	if err != nil {
		return 0, fmt.Errorf("load room objects: %w", err)
	}
	next := 0
	for _, o := range existing {
		if o.Position >= next {
			next = o.Position + 1
		}
	}
	return next, nil
}

func (s *roomService) ownedRoom(ctx context.Context, userID, roomID uuid.UUID) (*types.Room, error) {
	rooms, err := s.roomRepo.GetByIDs(ctx, nil, []uuid.UUID{roomID})
	if err != nil {
		return nil, fmt.Errorf("load room: %w", err)
	}
	if len(rooms) == 0 || rooms[0] == nil || rooms[0].UserID != userID {
		return nil, fmt.Errorf("room not found or not owned by user")
	}
	return rooms[0], nil
}

func (s *roomService) ownedObject(ctx context.Context, userID, objectID uuid.UUID) (*types.RoomObject, error) {
	objects, err := s.objectRepo.GetByIDs(ctx, nil, []uuid.UUID{objectID})
	if err != nil {
		return nil, fmt.Errorf("load object: %w", err)
	}
	if len(objects) == 0 || objects[0] == nil {
		return nil, fmt.Errorf("object not found")
	}
	if _, err := s.ownedRoom(ctx, userID, objects[0].RoomID); err != nil {
		return nil, err
	}
	return objects[0], nil
}
