package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/session"
)

var _ session.Persistence = (*UserRecord)(nil)

func TestUserRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	record := NewUserRecord(kv, "client-a")

	user, err := record.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	want := domain.User{ID: "1", FullName: "Marry Doe", Email: "m@example.com", PhoneNumber: "1", IsAgency: true, CompanyName: "Doe"}
	require.NoError(t, record.Save(ctx, want))

	raw, ok, err := kv.GetItem(ctx, "client-a", UserKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"1","fullName":"Marry Doe","email":"m@example.com","phoneNumber":"1","isAgency":true,"companyName":"Doe"}`, raw)

	got, err := record.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, record.Clear(ctx))
	got, err = record.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRecordCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.SetItem(ctx, "client-a", UserKey, "not-json"))

	_, err := NewUserRecord(kv, "client-a").Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.ErrorIs(t, err, session.ErrUnreadableRecord)
}

func TestUserRecordBacksSessionStore(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	auth := stubAuthenticator{user: domain.User{ID: "7", FullName: "Stub"}}

	first := session.New(session.Dependencies{ClientID: "c", Persistence: NewUserRecord(kv, "c"), Authenticator: auth})
	first.Restore(ctx)
	first.Login(ctx, "a@b.co", "secret")

	reloaded := session.New(session.Dependencies{ClientID: "c", Persistence: NewUserRecord(kv, "c"), Authenticator: auth})
	state, err := reloaded.Restore(ctx)
	require.NoError(t, err)

	require.True(t, state.IsAuthenticated)
	assert.Equal(t, "7", state.User.ID)
}

type stubAuthenticator struct {
	user domain.User
}

func (s stubAuthenticator) Login(context.Context, string, string) (domain.User, error) {
	return s.user, nil
}

func (s stubAuthenticator) Register(_ context.Context, u domain.User, _ string) (domain.User, error) {
	return u, nil
}
