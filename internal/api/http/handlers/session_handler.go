package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/popx/account-portal/internal/api/dto"
	"github.com/popx/account-portal/internal/auth"
	"github.com/popx/account-portal/internal/forms"
	"github.com/popx/account-portal/internal/session"
	apperrors "github.com/popx/account-portal/pkg/util/errorutil"
)

// SessionHandler exposes the client's session as JSON.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(store.State()))
}

// Login handles POST /api/session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	var form forms.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if errs := form.Validate(); !errs.OK() {
		return apperrors.NewValidationError("invalid login form", fieldDetails(errs))
	}

	state := store.Login(c.UserContext(), form.Email, form.Password)
	if !state.IsAuthenticated {
		c.Status(fiber.StatusUnauthorized)
	}
	return c.JSON(dto.NewSessionResponse(state))
}

// Register handles POST /api/session/register. isAgency defaults to true.
func (h *SessionHandler) Register(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	form := forms.NewRegisterForm()
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if errs := form.Validate(); !errs.OK() {
		return apperrors.NewValidationError("invalid registration form", fieldDetails(errs))
	}

	state := store.Register(c.UserContext(), form.User(), form.Password)
	if !state.IsAuthenticated {
		c.Status(fiber.StatusUnprocessableEntity)
	} else {
		c.Status(fiber.StatusCreated)
	}
	return c.JSON(dto.NewSessionResponse(state))
}

// UpdateUser handles PATCH /api/session/user.
func (h *SessionHandler) UpdateUser(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	var req dto.UserPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	patch := req.Patch()
	if patch.Empty() {
		return apperrors.NewBadRequest("no fields to update")
	}

	state, err := store.UpdateUser(c.UserContext(), patch)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return apperrors.NewUnauthorized("sign in required")
		}
		if errors.Is(err, auth.ErrAccountExists) {
			return apperrors.NewDomainError("CONFLICT", "email already registered", fiber.StatusConflict, nil)
		}
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.NewSessionResponse(state))
}

// Logout handles DELETE /api/session.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(store.Logout(c.UserContext())))
}

// ClearError handles DELETE /api/session/error.
func (h *SessionHandler) ClearError(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(store.ClearError(c.UserContext())))
}

func fieldDetails(errs forms.FieldErrors) map[string]any {
	details := make(map[string]any, len(errs))
	for field, msg := range errs {
		details[field] = msg
	}
	return details
}
