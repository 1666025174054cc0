package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mindpalace-backend/internal/types"
)

func seedRoom(t *testing.T, db *gorm.DB, userID uuid.UUID) *types.Room {
	t.Helper()
	now := time.Now()
	room := &types.Room{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "study",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}

func newObject(roomID uuid.UUID, name string, position int) *types.RoomObject {
	now := time.Now()
	return &types.RoomObject{
		ID:         uuid.New(),
		RoomID:     roomID,
		ObjectName: name,
		Position:   position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func roomCount(t *testing.T, db *gorm.DB, roomID uuid.UUID) int {
	t.Helper()
	var room types.Room
	if err := db.First(&room, "id = ?", roomID).Error; err != nil {
		t.Fatalf("reload room: %v", err)
	}
	return room.ObjectCount
}

func TestCreateAndCountIncrementsRoomCounter(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	_, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{
		newObject(room.ID, "lamp", 0),
		newObject(room.ID, "desk", 1),
		newObject(room.ID, "chair", 2),
	})
	if err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}
	if got := roomCount(t, db, room.ID); got != 3 {
		t.Fatalf("object_count: want=3 got=%d", got)
	}
}

func TestDeleteAndCountDecrementsRoomCounter(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	objects := []*types.RoomObject{
		newObject(room.ID, "lamp", 0),
		newObject(room.ID, "desk", 1),
	}
	if _, err := repo.CreateAndCount(ctx, nil, objects); err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}
	if err := repo.DeleteAndCount(ctx, nil, []uuid.UUID{objects[0].ID}); err != nil {
		t.Fatalf("DeleteAndCount: %v", err)
	}
	if got := roomCount(t, db, room.ID); got != 1 {
		t.Fatalf("object_count: want=1 got=%d", got)
	}
}

func TestDeleteAndCountNeverGoesNegative(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	// Insert a row directly so the counter stays at zero, simulating a
	// counter that has drifted below the true row count.
	object := newObject(room.ID, "lamp", 0)
	if err := db.Create(object).Error; err != nil {
		t.Fatalf("seed object: %v", err)
	}
	if err := repo.DeleteAndCount(ctx, nil, []uuid.UUID{object.ID}); err != nil {
		t.Fatalf("DeleteAndCount: %v", err)
	}
	if got := roomCount(t, db, room.ID); got != 0 {
		t.Fatalf("object_count must not go negative: got=%d", got)
	}
}

func TestDeleteAndCountIgnoresUnknownIDs(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	if _, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{newObject(room.ID, "lamp", 0)}); err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}
	if err := repo.DeleteAndCount(ctx, nil, []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("DeleteAndCount unknown id: %v", err)
	}
	if got := roomCount(t, db, room.ID); got != 1 {
		t.Fatalf("object_count: want=1 got=%d", got)
	}
}

func TestCreateAndCountSyncsAliases(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	object := newObject(room.ID, "bookshelf", 0)
	object.ObjectDescription = "tall and wooden"
	if _, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{object}); err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}

	var got types.RoomObject
	if err := db.First(&got, "id = ?", object.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "bookshelf" || got.ObjectName != "bookshelf" {
		t.Fatalf("name aliases not synced: name=%q object_name=%q", got.Name, got.ObjectName)
	}
	if got.Description != "tall and wooden" || got.ShortDescription != "tall and wooden" {
		t.Fatalf("description aliases not synced: desc=%q short=%q", got.Description, got.ShortDescription)
	}
}

func TestUpdateFieldsNormalizesAliases(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	object := newObject(room.ID, "lamp", 0)
	if _, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{object}); err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}
	if err := repo.UpdateFields(ctx, nil, object.ID, map[string]any{"name": "floor lamp"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	var got types.RoomObject
	if err := db.First(&got, "id = ?", object.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Name != "floor lamp" || got.ObjectName != "floor lamp" {
		t.Fatalf("alias group not updated: name=%q object_name=%q", got.Name, got.ObjectName)
	}
}

func TestPositionUniquePerRoom(t *testing.T) {
	db := openTestDB(t)
	repo := NewRoomObjectRepo(db, testLogger(t))
	room := seedRoom(t, db, uuid.New())
	ctx := context.Background()

	if _, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{newObject(room.ID, "lamp", 0)}); err != nil {
		t.Fatalf("CreateAndCount: %v", err)
	}
	if _, err := repo.CreateAndCount(ctx, nil, []*types.RoomObject{newObject(room.ID, "desk", 0)}); err == nil {
		t.Fatalf("expected unique position violation")
	}
	// The failed insert must not bump the counter.
	if got := roomCount(t, db, room.ID); got != 1 {
		t.Fatalf("object_count after failed insert: want=1 got=%d", got)
	}
}
