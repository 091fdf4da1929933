package models

import "github.com/google/uuid"

type Card struct {
	BaseModel

	ColumnID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"not null"`
	Position int       `gorm:"not null"`

	// Relationships
	Column Column `gorm:"foreignKey:ColumnID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
