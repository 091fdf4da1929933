package store

import (
	"context"

	"github.com/devflow-dev/devflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Projects struct {
	db *gorm.DB
}

func NewProjects(db *gorm.DB) *Projects {
	return &Projects{db: db}
}

func (s *Projects) Create(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (s *Projects) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Projects) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Projects) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Project, error) {
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return s.FindByID(ctx, id)
}

func (s *Projects) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProjectsTree(tx, []uuid.UUID{id})
	})
}

// deleteProjectsTree removes the cards, then the columns, then the projects.
// The ids are resolved up front: MySQL cannot DELETE from a table its own
// subquery reads.
func deleteProjectsTree(tx *gorm.DB, projectIDs []uuid.UUID) error {
	if len(projectIDs) == 0 {
		return nil
	}

	columnIDs := tx.Model(&models.Column{}).Select("id").Where("project_id IN (?)", projectIDs)

	if err := tx.Where("column_id IN (?)", columnIDs).Delete(&models.Card{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id IN (?)", projectIDs).Delete(&models.Column{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN (?)", projectIDs).Delete(&models.Project{}).Error
}
