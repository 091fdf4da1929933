package services

import (
	"context"
	"errors"

	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/policy"
	"github.com/devflow-dev/devflow/internal/realtime"
	"github.com/devflow-dev/devflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardService struct {
	columns *ColumnService
	cards   *store.Cards
	events  realtime.Publisher
}

func NewCardService(stores Stores, columns *ColumnService, events realtime.Publisher) *CardService {
	return &CardService{columns: columns, cards: stores.Cards, events: publisherOrNop(events)}
}

// Create appends a card to the end of the column.
func (s *CardService) Create(ctx context.Context, caller auth.Identity, columnID uuid.UUID, name string) (*models.Card, error) {
	column, err := s.columns.Get(ctx, caller, columnID)
	if err != nil {
		return nil, err
	}

	card := &models.Card{ColumnID: columnID, Name: name}
	if err := s.cards.Append(ctx, card); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}

	s.events.PublishRefresh(column.ProjectID)
	return card, nil
}

func (s *CardService) List(ctx context.Context, caller auth.Identity, columnID uuid.UUID) ([]models.Card, error) {
	if _, err := s.columns.Get(ctx, caller, columnID); err != nil {
		return nil, err
	}
	return s.cards.ListByColumn(ctx, columnID)
}

func (s *CardService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Card, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCardNotFound)
	}
	if err := policy.Authorize(caller, card.Column.Project.UserID); err != nil {
		return nil, err
	}
	return card, nil
}

// Update applies a partial rename. A nil name leaves the card unchanged.
func (s *CardService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, name *string) (*models.Card, error) {
	card, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return card, nil
	}

	renamed, err := s.cards.Rename(ctx, id, *name)
	if err != nil {
		return nil, notFound(err, ErrCardNotFound)
	}

	s.events.PublishRefresh(card.Column.ProjectID)
	return renamed, nil
}

// Move stores order exactly as given. Siblings are not renumbered.
func (s *CardService) Move(ctx context.Context, caller auth.Identity, id uuid.UUID, order int) (*models.Card, error) {
	card, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	moved, err := s.cards.Move(ctx, id, order)
	if err != nil {
		return nil, notFound(err, ErrCardNotFound)
	}

	s.events.PublishRefresh(card.Column.ProjectID)
	return moved, nil
}

func (s *CardService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	card, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, id); err != nil {
		return err
	}

	s.events.PublishRefresh(card.Column.ProjectID)
	return nil
}
