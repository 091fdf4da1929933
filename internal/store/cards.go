package store

import (
	"context"

	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/ordering"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Cards struct {
	db *gorm.DB
}

func NewCards(db *gorm.DB) *Cards {
	return &Cards{db: db}
}

// Append inserts card at the end of its column.
func (s *Cards) Append(ctx context.Context, card *models.Card) error {
	group := ordering.Group{
		Parent:       &models.Column{},
		Siblings:     &models.Card{},
		ParentColumn: "column_id",
		ParentID:     card.ColumnID,
	}

	return ordering.Append(ctx, s.db, group, func(tx *gorm.DB, position int) error {
		card.Position = position
		return tx.Omit(clause.Associations).Create(card).Error
	})
}

// FindByID loads the card with its column and the column's project.
func (s *Cards) FindByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	var card models.Card
	if err := s.db.WithContext(ctx).Preload("Column.Project").Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (s *Cards) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]models.Card, error) {
	var cards []models.Card
	if err := s.db.WithContext(ctx).
		Where("column_id = ?", columnID).
		Order("position ASC, created_at ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *Cards) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Card, error) {
	res := s.db.WithContext(ctx).Model(&models.Card{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	return s.FindByID(ctx, id)
}

func (s *Cards) Move(ctx context.Context, id uuid.UUID, position int) (*models.Card, error) {
	if err := ordering.Move(ctx, s.db, &models.Card{}, id, position); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

func (s *Cards) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Card{}).Error
}
