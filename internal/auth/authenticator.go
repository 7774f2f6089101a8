package auth

import (
	"context"
	"errors"

	"github.com/popx/account-portal/internal/domain"
)

// Sentinel errors returned by authenticators.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountExists      = errors.New("auth: account already exists")
)

// CannedPortraitURL is the picture the mock assigns to every user it builds.
const CannedPortraitURL = "https://randomuser.me/api/portraits/women/44.jpg"

// CannedUser is the record Mock returns from every login.
func CannedUser() domain.User {
	return domain.User{
		ID:             "1",
		FullName:       "Marry Doe",
		Email:          "Marry@Gmail.Com",
		PhoneNumber:    "+1234567890",
		IsAgency:       true,
		CompanyName:    "Doe Company",
		ProfilePicture: CannedPortraitURL,
	}
}

// Mock accepts any credentials. It never contacts a backend.
type Mock struct{}

// NewMock returns the mock authenticator.
func NewMock() Mock {
	return Mock{}
}

// Login ignores the credentials and returns CannedUser.
func (Mock) Login(ctx context.Context, _, _ string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	return CannedUser(), nil
}

// Register echoes the submitted record with id "1" when it has none and the
// canned portrait.
func (Mock) Register(ctx context.Context, user domain.User, _ string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		user.ID = "1"
	}
	user.ProfilePicture = CannedPortraitURL
	return user, nil
}
