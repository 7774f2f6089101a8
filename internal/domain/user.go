package domain

import (
	"unicode"
	"unicode/utf8"
)

// User is the identity record kept for a signed-in client. The JSON shape is
// the persisted record layout and has no version field.
type User struct {
	ID             string `json:"id,omitempty"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	IsAgency       bool   `json:"isAgency"`
	CompanyName    string `json:"companyName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Initial returns the uppercase first letter of the full name, used when no
// profile picture is set.
func (u User) Initial() string {
	r, _ := utf8.DecodeRuneInString(u.FullName)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// ShowAgencyBadge reports whether the agency company name should be displayed.
func (u User) ShowAgencyBadge() bool {
	return u.IsAgency && u.CompanyName != ""
}

// UserPatch carries a partial update. Nil fields are left untouched.
type UserPatch struct {
	FullName       *string `json:"fullName,omitempty"`
	Email          *string `json:"email,omitempty"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
	IsAgency       *bool   `json:"isAgency,omitempty"`
	CompanyName    *string `json:"companyName,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.FullName == nil && p.Email == nil && p.PhoneNumber == nil &&
		p.IsAgency == nil && p.CompanyName == nil && p.ProfilePicture == nil
}

// Apply shallow-merges the patch into u and returns the result.
func (p UserPatch) Apply(u User) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.IsAgency != nil {
		u.IsAgency = *p.IsAgency
	}
	if p.CompanyName != nil {
		u.CompanyName = *p.CompanyName
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	return u
}
