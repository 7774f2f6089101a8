package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/session"
	apperrors "github.com/popx/account-portal/pkg/util/errorutil"
)

const (
	clientIDKey = "client_id"
	storeKey    = "session_store"
)

// ClientMiddleware identifies the browser through a signed cookie and attaches
// its session store to the request.
type ClientMiddleware struct {
	tokens     *ClientTokens
	sessions   *session.Manager
	cookieName string
	secure     bool
	logger     *zap.Logger
}

// ClientMiddlewareConfig configures ClientMiddleware.
type ClientMiddlewareConfig struct {
	Tokens     *ClientTokens
	Sessions   *session.Manager
	CookieName string
	Secure     bool
	Logger     *zap.Logger
}

// NewClientMiddleware constructs middleware.
func NewClientMiddleware(cfg ClientMiddlewareConfig) *ClientMiddleware {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientMiddleware{
		tokens:     cfg.Tokens,
		sessions:   cfg.Sessions,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		logger:     logger,
	}
}

// Handle resolves the client id, issuing a new cookie when the browser has
// none or presents one that does not verify.
func (m *ClientMiddleware) Handle(c *fiber.Ctx) error {
	clientID := ""
	if raw := c.Cookies(m.cookieName); raw != "" {
		id, err := m.tokens.Parse(raw)
		if err != nil {
			m.logger.Debug("rejecting client cookie", zap.Error(err))
		} else {
			clientID = id
		}
	}

	if clientID == "" {
		clientID = NewClientID()
		token, expiresAt, err := m.tokens.Issue(clientID)
		if err != nil {
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     m.cookieName,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			MaxAge:   int(m.tokens.TTL() / time.Second),
			HTTPOnly: true,
			Secure:   m.secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	store, err := m.sessions.Get(c.UserContext(), clientID)
	if err != nil {
		m.logger.Error("restore session", zap.String("client_id", clientID), zap.Error(err))
		return apperrors.NewUnavailable("session storage unavailable, try again", nil)
	}
	c.Locals(clientIDKey, clientID)
	c.Locals(storeKey, store)
	return c.Next()
}

// ClientIDFromContext returns the id resolved by ClientMiddleware.
func ClientIDFromContext(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(clientIDKey).(string)
	return id, ok && id != ""
}

// StoreFromContext returns the session store attached by ClientMiddleware.
func StoreFromContext(c *fiber.Ctx) (*session.Store, bool) {
	store, ok := c.Locals(storeKey).(*session.Store)
	return store, ok && store != nil
}

// RequireUser redirects anonymous browsers to redirectTo.
func RequireUser(redirectTo string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := StoreFromContext(c)
		if !ok || !store.State().IsAuthenticated {
			return c.Redirect(redirectTo, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// RequireUserAPI rejects anonymous callers with 401.
func RequireUserAPI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ok := StoreFromContext(c)
		if !ok || !store.State().IsAuthenticated {
			return fiber.NewError(fiber.StatusUnauthorized, "sign in required")
		}
		return c.Next()
	}
}
