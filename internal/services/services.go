// Package services implements the board operations on top of the store,
// enforcing ownership on every call.
package services

import (
	"errors"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/realtime"
	"github.com/devflow-dev/devflow/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = apperr.NotFound("User not found")
	ErrProjectNotFound = apperr.NotFound("Project not found")
	ErrColumnNotFound  = apperr.NotFound("Column not found")
	ErrCardNotFound    = apperr.NotFound("Card not found")
	ErrEmailInUse      = apperr.Conflict("Email already in use")
)

// notFound swaps gorm.ErrRecordNotFound for the given client error.
func notFound(err error, replacement *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return replacement
	}
	return err
}

// Stores bundles the repositories a service set is built from.
type Stores struct {
	Users    *store.Users
	Accounts *store.Accounts
	Projects *store.Projects
	Columns  *store.Columns
	Cards    *store.Cards
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Users:    store.NewUsers(db),
		Accounts: store.NewAccounts(db),
		Projects: store.NewProjects(db),
		Columns:  store.NewColumns(db),
		Cards:    store.NewCards(db),
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishRefresh(uuid.UUID) {}

func publisherOrNop(p realtime.Publisher) realtime.Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
