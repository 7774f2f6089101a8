package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/popx/account-portal/internal/auth"
	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/repository"
	"github.com/popx/account-portal/internal/session"
	"github.com/popx/account-portal/internal/storage"
)

type failingAccounts struct{}

func (failingAccounts) Create(context.Context, *domain.Account) error { return errors.New("db down") }
func (failingAccounts) GetByEmail(context.Context, string) (*domain.Account, error) {
	return nil, errors.New("db down")
}
func (failingAccounts) UpdateProfile(context.Context, domain.User) error { return errors.New("db down") }

func newAccountService() *AccountService {
	return NewAccountService(repository.NewMemoryAccountRepository(), bcrypt.MinCost, nil)
}

func TestAccountServiceRegisterThenLogin(t *testing.T) {
	svc := newAccountService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.User{FullName: "Jane", Email: "jane@example.com", PhoneNumber: "1"}, "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)

	loggedIn, err := svc.Login(ctx, "JANE@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered, loggedIn)
}

func TestAccountServiceRejectsWrongPassword(t *testing.T) {
	svc := newAccountService()
	ctx := context.Background()
	_, err := svc.Register(ctx, domain.User{Email: "jane@example.com"}, "secret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jane@example.com", "wrong!")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccountServiceRejectsUnknownEmail(t *testing.T) {
	_, err := newAccountService().Login(context.Background(), "nobody@example.com", "secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAccountServiceRejectsDuplicateRegistration(t *testing.T) {
	svc := newAccountService()
	ctx := context.Background()
	_, err := svc.Register(ctx, domain.User{Email: "jane@example.com"}, "secret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.User{Email: "Jane@Example.com"}, "other1")
	assert.ErrorIs(t, err, auth.ErrAccountExists)
}

func TestAccountServiceKeepsSuppliedID(t *testing.T) {
	registered, err := newAccountService().Register(context.Background(), domain.User{ID: "abc", Email: "a@b.co"}, "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", registered.ID)
}

func TestAccountServicePropagatesRepositoryErrors(t *testing.T) {
	svc := NewAccountService(failingAccounts{}, bcrypt.MinCost, nil)

	_, err := svc.Login(context.Background(), "a@b.co", "secret")
	assert.EqualError(t, err, "db down")

	_, err = svc.Register(context.Background(), domain.User{Email: "a@b.co"}, "secret")
	assert.EqualError(t, err, "db down")
}

func TestAccountServiceUpdateProfile(t *testing.T) {
	svc := newAccountService()
	ctx := context.Background()

	jane, err := svc.Register(ctx, domain.User{FullName: "Jane", Email: "jane@example.com"}, "secret")
	require.NoError(t, err)
	_, err = svc.Register(ctx, domain.User{FullName: "John", Email: "john@example.com"}, "secret")
	require.NoError(t, err)

	jane.FullName = "Jane Roe"
	require.NoError(t, svc.UpdateProfile(ctx, jane))
	loggedIn, err := svc.Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", loggedIn.FullName)

	jane.Email = "JOHN@example.com"
	assert.ErrorIs(t, svc.UpdateProfile(ctx, jane), auth.ErrAccountExists)

	assert.ErrorIs(t, svc.UpdateProfile(ctx, domain.User{ID: "missing", Email: "x@y.z"}), repository.ErrAccountNotFound)
}

func TestProfileEditsSurviveRelogin(t *testing.T) {
	ctx := context.Background()
	store := session.New(session.Dependencies{
		ClientID:      "browser-1",
		Persistence:   storage.NewUserRecord(storage.NewMemory(), "browser-1"),
		Authenticator: newAccountService(),
	})
	_, err := store.Restore(ctx)
	require.NoError(t, err)

	registered := store.Register(ctx, domain.User{FullName: "Jane", Email: "jane@example.com", PhoneNumber: "1"}, "secret")
	require.True(t, registered.IsAuthenticated)

	picture := "data:image/png;base64,iVBORw0KGgo="
	_, err = store.UpdateUser(ctx, domain.UserPatch{ProfilePicture: &picture})
	require.NoError(t, err)
	store.Logout(ctx)

	state := store.Login(ctx, "jane@example.com", "secret")
	require.True(t, state.IsAuthenticated)
	assert.Equal(t, picture, state.User.ProfilePicture)
}
