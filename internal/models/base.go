package models

import "time"

// BaseModel is gorm.Model without soft deletes. Deletes must be hard so the
// database-level ON DELETE cascades actually fire.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
