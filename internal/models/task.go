package models

import (
	"time"

	"gorm.io/datatypes"
)

// Task stores the full task document as JSONB, keyed by a caller-assigned
// UUID. The generic task subsystem owns writes; the content plan only reads
// tasks to validate and annotate links.
type Task struct {
	ID      string         `gorm:"primaryKey" json:"id"`
	Payload datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
