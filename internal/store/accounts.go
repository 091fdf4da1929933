package store

import (
	"context"

	"github.com/devflow-dev/devflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Accounts stores GitHub links, one per user.
type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func (s *Accounts) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert creates the link for account.UserID or refreshes the existing one.
// A GitHub id already linked to another user fails with gorm.ErrDuplicatedKey.
//
// The explicit check runs first because MySQL turns OnConflict into
// ON DUPLICATE KEY UPDATE, which also fires on the github_id index.
func (s *Accounts) Upsert(ctx context.Context, account *models.Account) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Account{}).
			Where("github_id = ? AND user_id <> ?", account.GithubID, account.UserID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return gorm.ErrDuplicatedKey
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"github_id", "login", "avatar_url", "profile", "updated_at"}),
		}).Create(account).Error
	})
	if err != nil {
		return err
	}

	// On the update path the generated id is not the stored one.
	stored, err := s.FindByUserID(ctx, account.UserID)
	if err != nil {
		return err
	}
	*account = *stored
	return nil
}
