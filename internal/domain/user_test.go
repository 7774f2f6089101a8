package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPatchApplyOverwritesOnlySetFields(t *testing.T) {
	base := User{
		ID:          "1",
		FullName:    "Marry Doe",
		Email:       "marry@example.com",
		PhoneNumber: "+1234567890",
		IsAgency:    true,
		CompanyName: "Doe Company",
	}
	picture := "data:image/png;base64,AAAA"

	got := UserPatch{ProfilePicture: &picture}.Apply(base)

	want := base
	want.ProfilePicture = picture
	assert.Equal(t, want, got)
	assert.Empty(t, base.ProfilePicture, "apply must not mutate the input")
}

func TestUserPatchApplyCanClearFlags(t *testing.T) {
	no := false
	empty := ""
	got := UserPatch{IsAgency: &no, CompanyName: &empty}.Apply(User{IsAgency: true, CompanyName: "Acme"})
	assert.False(t, got.IsAgency)
	assert.Empty(t, got.CompanyName)
}

func TestUserPatchEmpty(t *testing.T) {
	assert.True(t, UserPatch{}.Empty())
	name := "x"
	assert.False(t, UserPatch{FullName: &name}.Empty())
}

func TestUserJSONLayout(t *testing.T) {
	raw, err := json.Marshal(User{ID: "1", FullName: "A", Email: "a@b.co", PhoneNumber: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","fullName":"A","email":"a@b.co","phoneNumber":"1","isAgency":false}`, string(raw))
}

func TestUserInitial(t *testing.T) {
	assert.Equal(t, "M", User{FullName: "marry"}.Initial())
	assert.Equal(t, "É", User{FullName: "émile"}.Initial())
	assert.Equal(t, "", User{}.Initial())
}

func TestSessionStateStatus(t *testing.T) {
	assert.Equal(t, SessionStatusLoading, LoadingState().Status())
	assert.Equal(t, SessionStatusAnonymous, AnonymousState("").Status())

	state := AuthenticatedState(User{FullName: "A"})
	assert.Equal(t, SessionStatusAuthenticated, state.Status())
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
}

func TestSessionStateCloneIsDeep(t *testing.T) {
	state := AuthenticatedState(User{FullName: "A"})
	clone := state.Clone()
	clone.User.FullName = "B"
	assert.Equal(t, "A", state.User.FullName)
}
