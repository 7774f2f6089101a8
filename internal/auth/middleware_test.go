package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popx/account-portal/internal/session"
	"github.com/popx/account-portal/internal/storage"
)

const testCookie = "popx_client"

func newMiddlewareApp(t *testing.T) (*fiber.App, *ClientTokens, *session.Manager) {
	t.Helper()
	return newMiddlewareAppWith(t, storage.NewMemory())
}

func newMiddlewareAppWith(t *testing.T, kv storage.KeyValue) (*fiber.App, *ClientTokens, *session.Manager) {
	t.Helper()
	manager := session.NewManager(session.ManagerDependencies{
		Persistence: func(clientID string) session.Persistence {
			return storage.NewUserRecord(kv, clientID)
		},
		Authenticator: NewMock(),
	})
	tokens := NewClientTokens("test-secret", time.Hour)
	mw := NewClientMiddleware(ClientMiddlewareConfig{Tokens: tokens, Sessions: manager, CookieName: testCookie})

	app := fiber.New()
	app.Use(mw.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := ClientIDFromContext(c)
		require.True(t, ok)
		store, ok := StoreFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"client": id, "authenticated": store.State().IsAuthenticated})
	})
	app.Get("/private", RequireUser("/login"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/api/private", RequireUserAPI(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app, tokens, manager
}

func clientCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	return nil
}

func TestClientMiddlewareIssuesCookie(t *testing.T) {
	app, tokens, _ := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := clientCookie(resp)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	clientID, err := tokens.Parse(cookie.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, clientID)
}

func TestClientMiddlewareReusesValidCookie(t *testing.T) {
	app, tokens, manager := newMiddlewareApp(t)
	token, _, err := tokens.Issue("known-client")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Nil(t, clientCookie(resp))
	assert.Equal(t, 1, manager.Len())
	store, err := manager.Get(context.Background(), "known-client")
	require.NoError(t, err)
	assert.False(t, store.State().IsLoading)
}

func TestClientMiddlewareReplacesForgedCookie(t *testing.T) {
	app, _, _ := newMiddlewareApp(t)
	forged, _, err := NewClientTokens("attacker", time.Hour).Issue("victim")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: forged})
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.NotNil(t, clientCookie(resp))
}

func TestRequireUserGuards(t *testing.T) {
	app, tokens, manager := newMiddlewareApp(t)
	token, _, err := tokens.Issue("c1")
	require.NoError(t, err)

	get := func(path string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := get("/private")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, http.StatusUnauthorized, get("/api/private").StatusCode)

	store, err := manager.Get(context.Background(), "c1")
	require.NoError(t, err)
	store.Login(context.Background(), "user@example.com", "secret")

	assert.Equal(t, http.StatusOK, get("/private").StatusCode)
	assert.Equal(t, http.StatusOK, get("/api/private").StatusCode)
}

// flakyKV fails the first read and then behaves like the wrapped store.
type flakyKV struct {
	storage.KeyValue
	mu     sync.Mutex
	failed bool
}

func (f *flakyKV) GetItem(ctx context.Context, namespace, key string) (string, bool, error) {
	f.mu.Lock()
	first := !f.failed
	f.failed = true
	f.mu.Unlock()
	if first {
		return "", false, errors.New("redis get: i/o timeout")
	}
	return f.KeyValue.GetItem(ctx, namespace, key)
}

func TestClientMiddlewareRetriesFailedRestore(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, storage.NewUserRecord(kv, "returning").Save(ctx, CannedUser()))
	app, tokens, _ := newMiddlewareAppWith(t, &flakyKV{KeyValue: kv})
	token, _, err := tokens.Issue("returning")
	require.NoError(t, err)

	whoami := func() *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.NotEqual(t, http.StatusOK, whoami().StatusCode)

	resp := whoami()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Authenticated)
}
