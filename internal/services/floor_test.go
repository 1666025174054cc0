package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/types"
)

func newFloorService(t *testing.T, db *gorm.DB) FloorService {
	t.Helper()
	log := testLogger(t)
	return NewFloorService(
		db, log, nil,
		repos.NewFloorRepo(db, log),
		repos.NewRoomRepo(db, log),
		repos.NewRoomObjectRepo(db, log),
		repos.NewFloorRoomRepo(db, log),
		repos.NewAssociationRepo(db, log),
	)
}

func TestWalkthroughJoinsObjectsAndAssociationsInOrder(t *testing.T) {
	db := openTestDB(t)
	svc := newFloorService(t, db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	floor := &types.Floor{ID: uuid.New(), UserID: userID, Name: "algebra", Status: types.FloorStatusReady, CreatedAt: now, UpdatedAt: now}
	room := &types.Room{ID: uuid.New(), UserID: userID, Name: "study", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(floor).Error; err != nil {
		t.Fatalf("seed floor: %v", err)
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	objects := []*types.RoomObject{
		{ID: uuid.New(), RoomID: room.ID, ObjectName: "lamp", Position: 0, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), RoomID: room.ID, ObjectName: "desk", Position: 1, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), RoomID: room.ID, ObjectName: "plant", Position: 2, CreatedAt: now, UpdatedAt: now},
	}
	if err := db.Create(objects).Error; err != nil {
		t.Fatalf("seed objects: %v", err)
	}

	// Only the first two objects carry associations.
	rows := []*types.FloorRoomObject{
		{ID: uuid.New(), FloorID: floor.ID, RoomID: room.ID, RoomObjectID: objects[0].ID, Concept: "Slope", Association: "a", Position: 0, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), FloorID: floor.ID, RoomID: room.ID, RoomObjectID: objects[1].ID, Concept: "Intercept", Association: "b", Position: 1, CreatedAt: now, UpdatedAt: now},
	}
	if err := db.Create(rows).Error; err != nil {
		t.Fatalf("seed associations: %v", err)
	}

	slides, err := svc.Walkthrough(ctx, userID, floor.ID, room.ID)
	if err != nil {
		t.Fatalf("Walkthrough: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("want 2 slides, got %d", len(slides))
	}
	if slides[0].ObjectName != "lamp" || slides[0].Concept != "Slope" {
		t.Fatalf("slide 0: %+v", slides[0])
	}
	if slides[1].ObjectName != "desk" || slides[1].Concept != "Intercept" {
		t.Fatalf("slide 1: %+v", slides[1])
	}
}

func TestDetachRoomDropsPairAssociations(t *testing.T) {
	db := openTestDB(t)
	svc := newFloorService(t, db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	floor := &types.Floor{ID: uuid.New(), UserID: userID, Name: "algebra", Status: types.FloorStatusReady, CreatedAt: now, UpdatedAt: now}
	room := &types.Room{ID: uuid.New(), UserID: userID, Name: "study", CreatedAt: now, UpdatedAt: now}
	object := &types.RoomObject{ID: uuid.New(), RoomID: room.ID, ObjectName: "lamp", Position: 0, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(floor).Error; err != nil {
		t.Fatalf("seed floor: %v", err)
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if err := db.Create(object).Error; err != nil {
		t.Fatalf("seed object: %v", err)
	}
	if err := db.Create(&types.FloorRoom{FloorID: floor.ID, RoomID: room.ID, CreatedAt: now}).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}
	row := &types.FloorRoomObject{ID: uuid.New(), FloorID: floor.ID, RoomID: room.ID, RoomObjectID: object.ID, Concept: "Slope", Association: "a", Position: 0, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed association: %v", err)
	}

	if err := svc.DetachRoom(ctx, userID, floor.ID, room.ID); err != nil {
		t.Fatalf("DetachRoom: %v", err)
	}

	var count int64
	if err := db.Model(&types.FloorRoomObject{}).Where("floor_id = ?", floor.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("associations must be dropped on detach, got %d", count)
	}
}

func TestUpdateFloorIgnoresStatusWrites(t *testing.T) {
	db := openTestDB(t)
	svc := newFloorService(t, db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	floor := &types.Floor{ID: uuid.New(), UserID: userID, Name: "algebra", Status: types.FloorStatusReady, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(floor).Error; err != nil {
		t.Fatalf("seed floor: %v", err)
	}

	if err := svc.UpdateFloor(ctx, userID, floor.ID, map[string]any{"name": "calculus", "status": "failed"}); err != nil {
		t.Fatalf("UpdateFloor: %v", err)
	}

	var got types.Floor
	if err := db.First(&got, "id = ?", floor.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "calculus" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Status != types.FloorStatusReady {
		t.Fatalf("status must not be client-writable: %q", got.Status)
	}
}
