package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/auth"
	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/repository"
)

// AccountService authenticates against registered accounts with bcrypt
// verified passwords. It satisfies session.Authenticator and
// session.ProfileUpdater.
type AccountService struct {
	accounts   repository.AccountRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(accounts repository.AccountRepository, bcryptCost int, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{accounts: accounts, bcryptCost: bcryptCost, logger: logger}
}

// Register creates a new account. The returned user carries a fresh uuid
// unless the caller supplied an id.
func (s *AccountService) Register(ctx context.Context, user domain.User, password string) (domain.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if _, err := s.accounts.GetByEmail(ctx, user.Email); err == nil {
		return domain.User{}, auth.ErrAccountExists
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	account := &domain.Account{User: user, PasswordHash: hash}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return domain.User{}, auth.ErrAccountExists
		}
		return domain.User{}, err
	}

	s.logger.Info("account registered", zap.String("account_id", user.ID))
	return user, nil
}

// Login verifies the password of the account registered under email.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domain.User{}, auth.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return domain.User{}, auth.ErrInvalidCredentials
	}
	return account.User, nil
}

// UpdateProfile stores an edited profile on the account so the next Login
// returns it.
func (s *AccountService) UpdateProfile(ctx context.Context, user domain.User) error {
	user.Email = strings.TrimSpace(user.Email)
	if err := s.accounts.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			return auth.ErrAccountExists
		}
		return err
	}
	return nil
}
