package forms

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popx/account-portal/internal/domain"
)

func validRegisterForm() RegisterForm {
	return RegisterForm{
		FullName:    "Jane Roe",
		PhoneNumber: "555-0100",
		Email:       "jane@example.com",
		Password:    "secret",
		CompanyName: "Roe Inc",
		IsAgency:    true,
	}
}

func TestLoginFormValidate(t *testing.T) {
	cases := []struct {
		name string
		form LoginForm
		want FieldErrors
	}{
		{"valid", LoginForm{Email: "user@example.com", Password: "x"}, FieldErrors{}},
		{"empty", LoginForm{}, FieldErrors{"email": MsgEmailRequired, "password": MsgPasswordRequired}},
		{"bad email", LoginForm{Email: "not-an-email", Password: "x"}, FieldErrors{"email": MsgEmailInvalid}},
		{"no tld", LoginForm{Email: "a@b", Password: "x"}, FieldErrors{"email": MsgEmailInvalid}},
		{"short password allowed", LoginForm{Email: "a@b.co", Password: "1"}, FieldErrors{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.form.Validate())
		})
	}
}

func TestRegisterFormValidate(t *testing.T) {
	assert.True(t, validRegisterForm().Validate().OK())

	f := validRegisterForm()
	f.FullName = ""
	errs := f.Validate()
	assert.Equal(t, FieldErrors{"fullName": MsgFullNameRequired}, errs)
	assert.Equal(t, MsgFullNameRequired, errs.Get("fullName"))
	assert.Empty(t, errs.Get("email"))

	f = validRegisterForm()
	f.Password = "12345"
	assert.Equal(t, FieldErrors{"password": MsgPasswordTooShort}, f.Validate())

	f = validRegisterForm()
	f.CompanyName = ""
	assert.Equal(t, FieldErrors{"companyName": MsgCompanyRequired}, f.Validate())

	f.IsAgency = false
	assert.True(t, f.Validate().OK())

	all := RegisterForm{IsAgency: true}.Validate()
	assert.Len(t, all, 5)
	assert.Equal(t, MsgPhoneNumberRequired, all["phoneNumber"])
	assert.Equal(t, MsgEmailRequired, all["email"])
	assert.Equal(t, MsgPasswordRequired, all["password"])
}

func TestRegisterFormUserDropsPassword(t *testing.T) {
	assert.Equal(t, domain.User{
		FullName:    "Jane Roe",
		Email:       "jane@example.com",
		PhoneNumber: "555-0100",
		IsAgency:    true,
		CompanyName: "Roe Inc",
	}, validRegisterForm().User())
}

func TestAgencyDefaults(t *testing.T) {
	assert.True(t, NewRegisterForm().IsAgency)
	assert.True(t, ParseAgency(""))
	assert.True(t, ParseAgency("yes please"))
	assert.True(t, ParseAgency("true"))
	assert.False(t, ParseAgency("false"))
}

// 1x1 transparent PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func TestPictureDataURL(t *testing.T) {
	url, err := PictureDataURL(tinyPNG, 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, decoded)
}

func TestPictureDataURLRejects(t *testing.T) {
	_, err := PictureDataURL(nil, 1024)
	assert.ErrorIs(t, err, ErrPictureEmpty)

	_, err = PictureDataURL(tinyPNG, 10)
	assert.ErrorIs(t, err, ErrPictureTooLarge)

	_, err = PictureDataURL([]byte("plain text, not an image"), 1024)
	assert.ErrorIs(t, err, ErrPictureUnsupported)

	_, err = PictureDataURL(bytes.Repeat([]byte{0}, 16), 0)
	assert.ErrorIs(t, err, ErrPictureUnsupported)
}
