package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/popx/account-portal/internal/domain"
)

// Errors returned by AccountRepository implementations.
var (
	ErrAccountNotFound  = errors.New("repository: account not found")
	ErrDuplicateAccount = errors.New("repository: email already registered")
)

// AccountRepository defines persistence access for registered accounts.
// Emails match case-insensitively.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// UpdateProfile overwrites the profile fields of the account with user.ID.
	// The password hash is left untouched.
	UpdateProfile(ctx context.Context, user domain.User) error
}

// NewAccountRepository returns the Postgres implementation when a pool is
// available and the in-memory one otherwise.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	if pool == nil {
		return NewMemoryAccountRepository()
	}
	return &accountRepository{pool: pool}
}

type accountRepository struct {
	pool *pgxpool.Pool
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (id, email, full_name, phone_number, is_agency, company_name, profile_picture, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`

	u := account.User
	err := r.pool.QueryRow(ctx, query,
		u.ID,
		u.Email,
		u.FullName,
		u.PhoneNumber,
		u.IsAgency,
		u.CompanyName,
		u.ProfilePicture,
		account.PasswordHash,
	).Scan(&account.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateAccount
	}
	return err
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, email, full_name, phone_number, is_agency, company_name, profile_picture, password_hash, created_at
        FROM accounts WHERE LOWER(email)=LOWER($1)`

	var account domain.Account
	u := &account.User
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PhoneNumber,
		&u.IsAgency,
		&u.CompanyName,
		&u.ProfilePicture,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) UpdateProfile(ctx context.Context, u domain.User) error {
	const query = `
        UPDATE accounts
        SET email=$2, full_name=$3, phone_number=$4, is_agency=$5, company_name=$6, profile_picture=$7
        WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Email,
		u.FullName,
		u.PhoneNumber,
		u.IsAgency,
		u.CompanyName,
		u.ProfilePicture,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateAccount
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// MemoryAccountRepository keeps accounts in process memory.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewMemoryAccountRepository returns an empty repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]domain.Account)}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	key := strings.ToLower(account.User.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[key]; exists {
		return ErrDuplicateAccount
	}
	account.CreatedAt = time.Now().UTC()
	r.accounts[key] = *account
	return nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[strings.ToLower(email)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

func (r *MemoryAccountRepository) UpdateProfile(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldKey := ""
	for key, account := range r.accounts {
		if account.User.ID == user.ID {
			oldKey = key
			break
		}
	}
	if oldKey == "" {
		return ErrAccountNotFound
	}
	newKey := strings.ToLower(user.Email)
	if _, taken := r.accounts[newKey]; taken && newKey != oldKey {
		return ErrDuplicateAccount
	}

	account := r.accounts[oldKey]
	account.User = user
	delete(r.accounts, oldKey)
	r.accounts[newKey] = account
	return nil
}
