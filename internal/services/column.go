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

type ColumnService struct {
	projects *ProjectService
	columns  *store.Columns
	events   realtime.Publisher
}

func NewColumnService(stores Stores, projects *ProjectService, events realtime.Publisher) *ColumnService {
	return &ColumnService{projects: projects, columns: stores.Columns, events: publisherOrNop(events)}
}

// Create appends a column to the end of the project.
func (s *ColumnService) Create(ctx context.Context, caller auth.Identity, projectID uuid.UUID, name string) (*models.Column, error) {
	if _, err := s.projects.Get(ctx, caller, projectID); err != nil {
		return nil, err
	}

	column := &models.Column{ProjectID: projectID, Name: name}
	if err := s.columns.Append(ctx, column); err != nil {
		// The project can vanish between the check and the insert.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.events.PublishRefresh(projectID)
	return column, nil
}

func (s *ColumnService) List(ctx context.Context, caller auth.Identity, projectID uuid.UUID) ([]models.Column, error) {
	if _, err := s.projects.Get(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.columns.ListByProject(ctx, projectID)
}

// Get loads a column whose project the caller may access.
func (s *ColumnService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Column, error) {
	column, err := s.columns.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrColumnNotFound)
	}
	if err := policy.Authorize(caller, column.Project.UserID); err != nil {
		return nil, err
	}
	return column, nil
}

// Rename changes the name only. The position stays where it was.
func (s *ColumnService) Rename(ctx context.Context, caller auth.Identity, id uuid.UUID, name string) (*models.Column, error) {
	column, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	renamed, err := s.columns.Rename(ctx, id, name)
	if err != nil {
		return nil, notFound(err, ErrColumnNotFound)
	}

	s.events.PublishRefresh(column.ProjectID)
	return renamed, nil
}

// Delete removes the column and its cards. Sibling positions are left as they are.
func (s *ColumnService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	column, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.columns.Delete(ctx, id); err != nil {
		return err
	}

	s.events.PublishRefresh(column.ProjectID)
	return nil
}
