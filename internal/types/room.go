package types

import (
	"time"

	"github.com/google/uuid"
)

// Room is a physical space whose objects serve as memory anchors.
// ObjectCount is a cached aggregate: it must always equal the number of
// live room_object rows and never go negative. It is adjusted inside
// the same transaction as every object insert/delete (see repos).
type Room struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	ObjectCount  int       `gorm:"column:object_count;not null;default:0" json:"object_count"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Room) TableName() string { return "room" }

// RoomObject is one placeable unit inside a room. Position is the
// pairing order and is unique per room.
//
// Two naming generations coexist in the schema: the legacy name/description
// columns and the renamed object_name/object_description columns (plus
// short_description). They are kept mutually consistent on every write via
// SyncAliases / NormalizeObjectUpdates; readers may use either set.
type RoomObject struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;not null;index:idx_room_object_position,unique,priority:1" json:"room_id"`
	Room   *Room     `gorm:"constraint:OnDelete:CASCADE;foreignKey:RoomID;references:ID" json:"room,omitempty"`

	Name              string `gorm:"column:name" json:"name"`
	ObjectName        string `gorm:"column:object_name" json:"object_name"`
	Description       string `gorm:"column:description" json:"description"`
	ObjectDescription string `gorm:"column:object_description" json:"object_description"`
	ShortDescription  string `gorm:"column:short_description" json:"short_description"`

	ImageURL  string    `gorm:"column:image_url" json:"image_url"`
	Position  int       `gorm:"column:position;not null;index:idx_room_object_position,unique,priority:2" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RoomObject) TableName() string { return "room_object" }

// SyncAliases settles the aliased columns before a row is written. The
// renamed fields win when both generations carry a value, matching the
// write order of current callers (renamed fields are written last).
func (o *RoomObject) SyncAliases() {
	name := o.ObjectName
	if name == "" {
		name = o.Name
	}
	o.Name = name
	o.ObjectName = name

	desc := o.ObjectDescription
	if desc == "" {
		desc = o.Description
	}
	if desc == "" {
		desc = o.ShortDescription
	}
	o.Description = desc
	o.ObjectDescription = desc
	o.ShortDescription = desc
}

// NormalizeObjectUpdates applies the same aliasing rule to a column
// update map: writing any one alias writes the whole group.
func NormalizeObjectUpdates(updates map[string]any) map[string]any {
	if updates == nil {
		return nil
	}
	if v, ok := pickLast(updates, "name", "object_name"); ok {
		updates["name"] = v
		updates["object_name"] = v
	}
	if v, ok := pickLast(updates, "description", "short_description", "object_description"); ok {
		updates["description"] = v
		updates["object_description"] = v
		updates["short_description"] = v
	}
	return updates
}

// pickLast returns the value of the highest-precedence key present.
// Keys are listed legacy-first, so the renamed column wins on conflict,
// mirroring SyncAliases.
func pickLast(updates map[string]any, keys ...string) (any, bool) {
	var val any
	found := false
	for _, k := range keys {
		if v, ok := updates[k]; ok {
			val = v
			found = true
		}
	}
	return val, found
}
