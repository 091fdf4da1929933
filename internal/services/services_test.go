package services

import (
	"context"
	"sync"
	"testing"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu       sync.Mutex
	projects []uuid.UUID
}

func (p *recordingPublisher) PublishRefresh(projectID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projects = append(p.projects, projectID)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.projects)
}

type suite struct {
	stores   Stores
	tokens   *auth.TokenService
	events   *recordingPublisher
	auth     *AuthService
	users    *UserService
	projects *ProjectService
	columns  *ColumnService
	cards    *CardService
}

func newSuite(t *testing.T) *suite {
	t.Helper()

	hasher := &auth.PasswordHasher{Cost: bcrypt.MinCost}
	s := &suite{
		stores: NewStores(testutil.NewDB(t)),
		tokens: auth.NewTokenService("secret"),
		events: &recordingPublisher{},
	}
	s.auth = NewAuthService(s.stores, hasher, s.tokens)
	s.users = NewUserService(s.stores, hasher)
	s.projects = NewProjectService(s.stores, s.events)
	s.columns = NewColumnService(s.stores, s.projects, s.events)
	s.cards = NewCardService(s.stores, s.columns, s.events)
	return s
}

func (s *suite) register(t *testing.T, email string) (*models.User, auth.Identity) {
	t.Helper()
	user, err := s.users.Create(context.Background(), CreateUserInput{Name: "Tester", Email: email, Password: "pass1234"})
	require.NoError(t, err)
	return user, auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}
}

func admin() auth.Identity {
	return auth.Identity{ID: uuid.New(), Email: "root@devflow.dev", Role: models.RoleAdmin}
}

func TestLoginRoundTrip(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	user, _ := s.register(t, "ada@devflow.dev")

	token, err := s.auth.Login(ctx, "ada@devflow.dev", "pass1234")
	require.NoError(t, err)

	claims, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "ada@devflow.dev", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.Empty(t, claims.AvatarURL)
}

func TestLoginUsesLinkedAvatar(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	user, _ := s.register(t, "ada@devflow.dev")
	require.NoError(t, s.stores.Accounts.Upsert(ctx, &models.Account{UserID: user.ID, GithubID: 1, Login: "ada", AvatarURL: "https://avatars/ada"}))

	token, err := s.auth.Login(ctx, "ada@devflow.dev", "pass1234")
	require.NoError(t, err)

	claims, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "https://avatars/ada", claims.AvatarURL)
}

func TestLoginFailures(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	s.register(t, "ada@devflow.dev")

	_, err := s.auth.Login(ctx, "nobody@devflow.dev", "pass1234")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.auth.Login(ctx, "ada@devflow.dev", "wrong")
	assert.Equal(t, apperr.ReasonInvalidCredentials, apperr.ReasonOf(err))

	noSecret := NewAuthService(s.stores, &auth.PasswordHasher{Cost: bcrypt.MinCost}, auth.NewTokenService(""))
	_, err = noSecret.Login(ctx, "ada@devflow.dev", "pass1234")
	assert.ErrorIs(t, err, auth.ErrSecretNotConfigured)
}

func TestCreateUserEmailUniqueness(t *testing.T) {
	s := newSuite(t)
	user, _ := s.register(t, "ada@devflow.dev")
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "pass1234", user.PasswordHash)

	_, err := s.users.Create(context.Background(), CreateUserInput{Name: "Copy", Email: "ada@devflow.dev", Password: "pass1234"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestUserAccessRules(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	ada, adaID := s.register(t, "ada@devflow.dev")
	_, graceID := s.register(t, "grace@devflow.dev")

	_, err := s.users.Get(ctx, adaID, ada.ID)
	assert.NoError(t, err)

	_, err = s.users.Get(ctx, graceID, ada.ID)
	assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(err))

	_, err = s.users.Get(ctx, admin(), ada.ID)
	assert.NoError(t, err)

	_, err = s.users.Get(ctx, admin(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.users.List(ctx, adaID)
	assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(err))

	users, err := s.users.List(ctx, admin())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdateUser(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	ada, adaID := s.register(t, "ada@devflow.dev")
	s.register(t, "grace@devflow.dev")

	name := "Ada L"
	updated, err := s.users.Update(ctx, adaID, ada.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L", updated.Name)

	taken := "grace@devflow.dev"
	_, err = s.users.Update(ctx, adaID, ada.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailInUse)

	same := models.RoleUser
	renamed := "Ada Lovelace"
	unchanged, err := s.users.Update(ctx, adaID, ada.ID, UpdateUserInput{Name: &renamed, Role: &same})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", unchanged.Name)
	assert.Equal(t, models.RoleUser, unchanged.Role)

	role := models.RoleAdmin
	_, err = s.users.Update(ctx, adaID, ada.ID, UpdateUserInput{Role: &role})
	assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(err))

	promoted, err := s.users.Update(ctx, admin(), ada.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	password := "newpass"
	_, err = s.users.Update(ctx, adaID, ada.ID, UpdateUserInput{Password: &password})
	require.NoError(t, err)
	_, err = s.auth.Login(ctx, "ada@devflow.dev", "newpass")
	assert.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	ada, adaID := s.register(t, "ada@devflow.dev")
	_, graceID := s.register(t, "grace@devflow.dev")

	project, err := s.projects.Create(ctx, adaID, "Roadmap", nil)
	require.NoError(t, err)

	assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(s.users.Delete(ctx, graceID, ada.ID)))
	require.NoError(t, s.users.Delete(ctx, adaID, ada.ID))

	_, err = s.projects.Get(ctx, admin(), project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.ErrorIs(t, s.users.Delete(ctx, admin(), ada.ID), ErrUserNotFound)
}

func TestProjectLifecycle(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, ada := s.register(t, "ada@devflow.dev")

	project, err := s.projects.Create(ctx, ada, "Roadmap", nil)
	require.NoError(t, err)
	assert.Equal(t, ada.ID, project.UserID)
	assert.Nil(t, project.Description)

	desc := "Plans"
	updated, err := s.projects.Update(ctx, ada, project.ID, UpdateProjectInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Plans", *updated.Description)

	list, err := s.projects.List(ctx, ada)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.projects.Delete(ctx, ada, project.ID))
	_, err = s.projects.Get(ctx, ada, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

// Every operation on another user's board is refused, and refusals write nothing.
func TestOwnershipInvariant(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, owner := s.register(t, "owner@devflow.dev")
	_, intruder := s.register(t, "intruder@devflow.dev")

	project, err := s.projects.Create(ctx, owner, "Roadmap", nil)
	require.NoError(t, err)
	column, err := s.columns.Create(ctx, owner, project.ID, "Todo")
	require.NoError(t, err)
	card, err := s.cards.Create(ctx, owner, column.ID, "Write docs")
	require.NoError(t, err)

	published := s.events.count()
	name := "Hijacked"

	denied := map[string]error{}
	_, denied["get project"] = s.projects.Get(ctx, intruder, project.ID)
	_, denied["update project"] = s.projects.Update(ctx, intruder, project.ID, UpdateProjectInput{Name: &name})
	denied["delete project"] = s.projects.Delete(ctx, intruder, project.ID)
	_, denied["create column"] = s.columns.Create(ctx, intruder, project.ID, "Mine")
	_, denied["list columns"] = s.columns.List(ctx, intruder, project.ID)
	_, denied["rename column"] = s.columns.Rename(ctx, intruder, column.ID, name)
	denied["delete column"] = s.columns.Delete(ctx, intruder, column.ID)
	_, denied["create card"] = s.cards.Create(ctx, intruder, column.ID, "Mine")
	_, denied["list cards"] = s.cards.List(ctx, intruder, column.ID)
	_, denied["get card"] = s.cards.Get(ctx, intruder, card.ID)
	_, denied["update card"] = s.cards.Update(ctx, intruder, card.ID, &name)
	_, denied["move card"] = s.cards.Move(ctx, intruder, card.ID, 9)
	denied["delete card"] = s.cards.Delete(ctx, intruder, card.ID)

	for op, err := range denied {
		assert.Equal(t, apperr.ReasonNotOwner, apperr.ReasonOf(err), op)
	}
	assert.Equal(t, published, s.events.count())

	stored, err := s.cards.Get(ctx, owner, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", stored.Name)
	assert.Equal(t, 1, stored.Position)

	// Administrators pass the same checks.
	_, err = s.cards.Move(ctx, admin(), card.ID, 5)
	assert.NoError(t, err)
}

func TestColumnAndCardOrdering(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, ada := s.register(t, "ada@devflow.dev")

	project, err := s.projects.Create(ctx, ada, "Roadmap", nil)
	require.NoError(t, err)

	var columns []*models.Column
	for i, name := range []string{"Todo", "Doing", "Done"} {
		column, err := s.columns.Create(ctx, ada, project.ID, name)
		require.NoError(t, err)
		assert.Equal(t, i+1, column.Position)
		columns = append(columns, column)
	}

	renamed, err := s.columns.Rename(ctx, ada, columns[0].ID, "Backlog")
	require.NoError(t, err)
	assert.Equal(t, 1, renamed.Position)

	first, err := s.cards.Create(ctx, ada, columns[0].ID, "One")
	require.NoError(t, err)
	second, err := s.cards.Create(ctx, ada, columns[0].ID, "Two")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)

	moved, err := s.cards.Move(ctx, ada, first.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, moved.Position)

	unchanged, err := s.cards.Update(ctx, ada, second.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Two", unchanged.Name)

	require.NoError(t, s.cards.Delete(ctx, ada, second.ID))
	third, err := s.cards.Create(ctx, ada, columns[0].ID, "Three")
	require.NoError(t, err)
	assert.Equal(t, 2, third.Position)

	require.NoError(t, s.columns.Delete(ctx, ada, columns[1].ID))
	remaining, err := s.columns.List(ctx, ada, project.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, remaining[0].Position)
	assert.Equal(t, 3, remaining[1].Position)
}

func TestMutationsPublishRefresh(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, ada := s.register(t, "ada@devflow.dev")

	project, err := s.projects.Create(ctx, ada, "Roadmap", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.events.count())

	column, err := s.columns.Create(ctx, ada, project.ID, "Todo")
	require.NoError(t, err)
	_, err = s.cards.Create(ctx, ada, column.ID, "Card")
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{project.ID, project.ID}, s.events.projects)
}

func TestMissingParents(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, ada := s.register(t, "ada@devflow.dev")

	_, err := s.columns.Create(ctx, ada, uuid.New(), "Todo")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = s.cards.Create(ctx, ada, uuid.New(), "Card")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = s.cards.Move(ctx, ada, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCardNotFound)
}
