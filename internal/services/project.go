package services

import (
	"context"

	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/policy"
	"github.com/devflow-dev/devflow/internal/realtime"
	"github.com/devflow-dev/devflow/internal/store"
	"github.com/google/uuid"
)

type UpdateProjectInput struct {
	Name        *string
	Description *string
}

type ProjectService struct {
	projects *store.Projects
	events   realtime.Publisher
}

func NewProjectService(stores Stores, events realtime.Publisher) *ProjectService {
	return &ProjectService{projects: stores.Projects, events: publisherOrNop(events)}
}

// Create makes a project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, caller auth.Identity, name string, description *string) (*models.Project, error) {
	project := &models.Project{
		UserID:      caller.ID,
		Name:        name,
		Description: description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns the caller's own projects.
func (s *ProjectService) List(ctx context.Context, caller auth.Identity) ([]models.Project, error) {
	return s.projects.ListByUser(ctx, caller.ID)
}

// Get loads a project the caller may access.
func (s *ProjectService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}
	if err := policy.Authorize(caller, project.UserID); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	project, err := s.projects.Update(ctx, id, updates)
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound)
	}

	s.events.PublishRefresh(id)
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.events.PublishRefresh(id)
	return nil
}
