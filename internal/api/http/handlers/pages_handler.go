package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/auth"
	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/forms"
	"github.com/popx/account-portal/internal/session"
)

// Picture upload messages shown on the settings page.
const (
	MsgPictureMissing     = "Please choose a picture"
	MsgPictureTooLarge    = "Picture is too large"
	MsgPictureUnsupported = "Picture must be an image"
	MsgPictureSaveFailed  = "Could not save the picture. Please try again."
)

// PagesHandler renders the welcome, login, register and settings pages.
type PagesHandler struct {
	maxPictureBytes int64
	logger          *zap.Logger
}

// NewPagesHandler constructs handler.
func NewPagesHandler(maxPictureBytes int64, logger *zap.Logger) *PagesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagesHandler{maxPictureBytes: maxPictureBytes, logger: logger}
}

// Welcome handles GET /.
func (h *PagesHandler) Welcome(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return c.Render("welcome", h.pageData(store.State(), "Welcome to PopX", nil))
}

// LoginPage handles GET /login.
func (h *PagesHandler) LoginPage(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return h.renderLogin(c, store.State(), forms.LoginForm{}, nil)
}

// Login handles POST /login. Invalid input never reaches the session store.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	form := forms.LoginForm{Email: c.FormValue("email"), Password: c.FormValue("password")}
	if errs := form.Validate(); !errs.OK() {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderLogin(c, store.State(), form, errs)
	}

	state := store.Login(c.UserContext(), form.Email, form.Password)
	if !state.IsAuthenticated {
		c.Status(fiber.StatusUnauthorized)
		return h.renderLogin(c, state, forms.LoginForm{Email: form.Email}, nil)
	}
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (h *PagesHandler) RegisterPage(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return h.renderRegister(c, store.State(), forms.NewRegisterForm(), nil)
}

// Register handles POST /register.
func (h *PagesHandler) Register(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	form := forms.RegisterForm{
		FullName:    c.FormValue("fullName"),
		PhoneNumber: c.FormValue("phoneNumber"),
		Email:       c.FormValue("email"),
		Password:    c.FormValue("password"),
		CompanyName: c.FormValue("companyName"),
		IsAgency:    forms.ParseAgency(c.FormValue("isAgency")),
	}
	if errs := form.Validate(); !errs.OK() {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderRegister(c, store.State(), form, errs)
	}

	state := store.Register(c.UserContext(), form.User(), form.Password)
	if !state.IsAuthenticated {
		form.Password = ""
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderRegister(c, state, form, nil)
	}
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

// Settings handles GET /settings. Anonymous browsers never reach it.
func (h *PagesHandler) Settings(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	return h.renderSettings(c, store.State(), "")
}

// Logout handles POST /settings/logout.
func (h *PagesHandler) Logout(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	store.Logout(c.UserContext())
	return c.Redirect("/", fiber.StatusSeeOther)
}

// UploadPicture handles POST /settings/picture. The image is stored inline
// as a data URL on the user record.
func (h *PagesHandler) UploadPicture(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}

	dataURL, msg := h.readPicture(c)
	if msg != "" {
		c.Status(fiber.StatusUnprocessableEntity)
		return h.renderSettings(c, store.State(), msg)
	}

	state, err := store.UpdateUser(c.UserContext(), domain.UserPatch{ProfilePicture: &dataURL})
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		h.logger.Error("save profile picture", zap.String("client_id", store.ClientID()), zap.Error(err))
		c.Status(fiber.StatusInternalServerError)
		return h.renderSettings(c, state, MsgPictureSaveFailed)
	}
	return c.Redirect("/settings", fiber.StatusSeeOther)
}

// ClearError handles POST /session/error/clear and returns to the previous page.
func (h *PagesHandler) ClearError(c *fiber.Ctx) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	store.ClearError(c.UserContext())
	return c.RedirectBack("/login", fiber.StatusSeeOther)
}

func (h *PagesHandler) readPicture(c *fiber.Ctx) (string, string) {
	header, err := c.FormFile("picture")
	if err != nil {
		return "", MsgPictureMissing
	}
	if h.maxPictureBytes > 0 && header.Size > h.maxPictureBytes {
		return "", MsgPictureTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", MsgPictureMissing
	}
	defer file.Close()

	limit := h.maxPictureBytes
	if limit <= 0 {
		limit = 1 << 30
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", MsgPictureMissing
	}

	dataURL, err := forms.PictureDataURL(data, h.maxPictureBytes)
	switch {
	case errors.Is(err, forms.ErrPictureTooLarge):
		return "", MsgPictureTooLarge
	case errors.Is(err, forms.ErrPictureUnsupported):
		return "", MsgPictureUnsupported
	case err != nil:
		return "", MsgPictureMissing
	}
	return dataURL, ""
}

func (h *PagesHandler) pageData(state domain.SessionState, title string, extra fiber.Map) fiber.Map {
	data := fiber.Map{
		"Title": title,
		"State": state,
		"User":  state.User,
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (h *PagesHandler) renderLogin(c *fiber.Ctx, state domain.SessionState, form forms.LoginForm, errs forms.FieldErrors) error {
	return c.Render("login", h.pageData(state, "Signin to your PopX account", fiber.Map{
		"Form":   form,
		"Errors": errs,
	}))
}

func (h *PagesHandler) renderRegister(c *fiber.Ctx, state domain.SessionState, form forms.RegisterForm, errs forms.FieldErrors) error {
	form.Password = ""
	return c.Render("register", h.pageData(state, "Create your PopX account", fiber.Map{
		"Form":   form,
		"Errors": errs,
	}))
}

func (h *PagesHandler) renderSettings(c *fiber.Ctx, state domain.SessionState, pictureError string) error {
	return c.Render("settings", h.pageData(state, "Account Settings", fiber.Map{
		"PictureError": pictureError,
	}))
}

func storeFrom(c *fiber.Ctx) (*session.Store, error) {
	store, ok := auth.StoreFromContext(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "client session unavailable")
	}
	return store, nil
}
