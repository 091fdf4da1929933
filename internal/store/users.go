package store

import (
	"context"

	"github.com/devflow-dev/devflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Users is the credential store for local accounts.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

// Update applies the given column values and reloads the user.
func (s *Users) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	return s.FindByID(ctx, id)
}

// Delete removes the user and everything they own in one transaction,
// leaves first, so it does not depend on the driver enforcing ON DELETE CASCADE.
func (s *Users) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var deleted models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			return err
		}

		var projectIDs []uuid.UUID
		if err := tx.Model(&models.Project{}).Where("user_id = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		if err := deleteProjectsTree(tx, projectIDs); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Account{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
	if err != nil {
		return nil, err
	}

	return &deleted, nil
}
