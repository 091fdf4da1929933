package store

import (
	"context"

	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/ordering"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Columns struct {
	db *gorm.DB
}

func NewColumns(db *gorm.DB) *Columns {
	return &Columns{db: db}
}

// Append inserts column at the end of its project.
func (s *Columns) Append(ctx context.Context, column *models.Column) error {
	group := ordering.Group{
		Parent:       &models.Project{},
		Siblings:     &models.Column{},
		ParentColumn: "project_id",
		ParentID:     column.ProjectID,
	}

	return ordering.Append(ctx, s.db, group, func(tx *gorm.DB, position int) error {
		column.Position = position
		return tx.Omit(clause.Associations).Create(column).Error
	})
}

// FindByID loads the column together with its project, which carries the owner.
func (s *Columns) FindByID(ctx context.Context, id uuid.UUID) (*models.Column, error) {
	var column models.Column
	if err := s.db.WithContext(ctx).Preload("Project").Where("id = ?", id).First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

func (s *Columns) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Column, error) {
	var columns []models.Column
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC, created_at ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

func (s *Columns) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Column, error) {
	res := s.db.WithContext(ctx).Model(&models.Column{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	return s.FindByID(ctx, id)
}

func (s *Columns) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("column_id = ?", id).Delete(&models.Card{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Column{}).Error
	})
}
