package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record is the common header embedded in every persisted entity:
// UUID primary key, timestamps and optional audit references.
// DeletedAt is carried for schema compatibility; deletes are hard deletes.
type Record struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
	CreatedBy *uuid.UUID `json:"-" db:"created_by"`
	UpdatedBy *uuid.UUID `json:"-" db:"updated_by"`
}

// NewRecord creates a Record with a fresh UUID and both timestamps set to now.
func NewRecord() Record {
	now := time.Now()
	return Record{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the record's modification timestamp.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}
