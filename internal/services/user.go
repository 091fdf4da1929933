package services

import (
	"context"
	"errors"

	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/policy"
	"github.com/devflow-dev/devflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserInput holds the fields to change. Nil means unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
}

type UserService struct {
	users  *store.Users
	hasher *auth.PasswordHasher
}

func NewUserService(stores Stores, hasher *auth.PasswordHasher) *UserService {
	return &UserService{users: stores.Users, hasher: hasher}
}

// Create registers a local account with the default role.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.DefaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context, caller auth.Identity) ([]models.User, error) {
	if err := policy.RequireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (*models.User, error) {
	if err := policy.Authorize(caller, id); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// Update changes the given fields. Only administrators may change a role.
// Changing email or role invalidates the caller's outstanding tokens.
func (s *UserService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	if err := policy.Authorize(caller, id); err != nil {
		return nil, err
	}

	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	roleChanged := in.Role != nil && *in.Role != current.Role
	if roleChanged {
		if err := policy.RequireAdmin(caller); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil && *in.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *in.Email); err != nil {
			return nil, err
		}
		updates["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if roleChanged {
		updates["role"] = *in.Role
	}

	if len(updates) == 0 {
		return current, nil
	}

	user, err := s.users.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// Delete removes the user with their account link, projects, columns and cards.
func (s *UserService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	if err := policy.Authorize(caller, id); err != nil {
		return err
	}

	_, err := s.users.Delete(ctx, id)
	return notFound(err, ErrUserNotFound)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailInUse
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}
