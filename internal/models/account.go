package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Account links a local user to their GitHub identity. One per user.
type Account struct {
	BaseModel

	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	GithubID  int64          `gorm:"not null;uniqueIndex"`
	Login     string         `gorm:"not null"`
	AvatarURL string
	Profile   datatypes.JSON // raw GitHub /user payload from the last login
}
