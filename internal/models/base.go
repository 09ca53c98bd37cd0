package models

import (
	"time"

	"gorm.io/gorm"

	"spendlens/internal/uuid"
)

// Base is embedded by every table: a UUIDv7 string key, gorm-managed
// timestamps and soft deletion.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns an id unless the caller already set one.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID != "" {
		return nil
	}
	b.ID = uuid.New()
	return nil
}

// Persisted reports whether the row has been assigned an id.
func (b Base) Persisted() bool {
	return b.ID != ""
}
