package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FloorRoom attaches a room to a floor. Composite key, no attributes
// beyond the creation timestamp.
type FloorRoom struct {
	FloorID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"floor_id"`
	Floor     *Floor    `gorm:"constraint:OnDelete:CASCADE;foreignKey:FloorID;references:ID" json:"floor,omitempty"`
	RoomID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"room_id"`
	Room      *Room     `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomID;references:ID" json:"room,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (FloorRoom) TableName() string { return "floor_room" }

// FloorRoomObject is one generated association: a concept pinned to one
// room object for one floor. At most one row may exist per
// (floor, room_object); regeneration deletes the old set for the
// (floor, room) pair before inserting, and the unique index backstops
// that ordering against concurrent regenerations.
type FloorRoomObject struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	FloorID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_floor_room_object,unique,priority:1" json:"floor_id"`
	Floor        *Floor      `gorm:"constraint:OnDelete:CASCADE;foreignKey:FloorID;references:ID" json:"floor,omitempty"`
	RoomID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"room_id"`
	Room         *Room       `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomID;references:ID" json:"room,omitempty"`
	RoomObjectID uuid.UUID   `gorm:"type:uuid;not null;index:idx_floor_room_object,unique,priority:2" json:"room_object_id"`
	RoomObject   *RoomObject `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomObjectID;references:ID" json:"room_object,omitempty"`

	Concept            string `gorm:"column:concept;not null" json:"concept"`
	ConceptDescription string `gorm:"column:concept_description" json:"concept_description"`
	Association        string `gorm:"column:association;not null" json:"association"`
	Position           int    `gorm:"column:position;not null" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (FloorRoomObject) TableName() string { return "floor_room_object" }

// PalaceGenerationRun tracks one association-generation request for a
// (floor, room) pair from queue to terminal state.
type PalaceGenerationRun struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FloorID uuid.UUID `gorm:"type:uuid;not null;index" json:"floor_id"`
	RoomID  uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`

	NumConcepts int `gorm:"column:num_concepts;not null;default:0" json:"num_concepts"`

	Status   string `gorm:"column:status;not null;index" json:"status"` // queued|running|succeeded|failed
	Stage    string `gorm:"column:stage;not null;index" json:"stage"`   // concepts|associations|persist|done
	Progress int    `gorm:"column:progress;not null;default:0" json:"progress"`

	Attempts    int        `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Error       string     `gorm:"column:error" json:"error"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`

	LockedAt    *time.Time `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PalaceGenerationRun) TableName() string { return "palace_generation_run" }
