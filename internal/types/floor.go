package types

import (
	"time"

	"github.com/google/uuid"
)

// Floor lifecycle. Transitions are driven only by palace generation:
// generating -> ready | failed, and back to generating when a
// regeneration is enqueued.
const (
	FloorStatusGenerating = "generating"
	FloorStatusReady      = "ready"
	FloorStatusFailed     = "failed"
)

// Floor is one study topic: a named grouping of rooms, source PDFs and
// the generated concept/object pairings.
type Floor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Status    string    `gorm:"column:status;not null;default:'generating';index" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Floor) TableName() string { return "floor" }

// PDFFile is an uploaded source document. ExtractedText stays empty
// until text extraction has run.
type PDFFile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FloorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"floor_id"`
	Floor         *Floor    `gorm:"constraint:OnDelete:CASCADE;foreignKey:FloorID;references:ID" json:"floor,omitempty"`
	OriginalName  string    `gorm:"column:original_name;not null" json:"original_name"`
	StorageKey    string    `gorm:"column:storage_key" json:"storage_key"`
	FileURL       string    `gorm:"column:file_url" json:"file_url"`
	ExtractedText string    `gorm:"column:extracted_text" json:"extracted_text,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (PDFFile) TableName() string { return "pdf_file" }
