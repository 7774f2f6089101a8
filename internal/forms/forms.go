// Package forms parses and validates the login and registration forms.
package forms

import (
	"regexp"
	"strconv"

	"github.com/popx/account-portal/internal/domain"
)

// Validation messages.
const (
	MsgEmailRequired       = "Email is required"
	MsgEmailInvalid        = "Email is invalid"
	MsgPasswordRequired    = "Password is required"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgFullNameRequired    = "Full name is required"
	MsgPhoneNumberRequired = "Phone number is required"
	MsgCompanyRequired     = "Company name is required for agencies"
)

// MinPasswordLength applies to registration only.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a form field name to its message. Field names match the
// form input names.
type FieldErrors map[string]string

// OK reports whether no field failed.
func (fe FieldErrors) OK() bool {
	return len(fe) == 0
}

// Get returns the message of field, empty when it passed.
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// LoginForm is the submitted login page.
type LoginForm struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate checks presence and email shape. The password length is not checked
// on login.
func (f LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	validateEmail(errs, f.Email)
	if f.Password == "" {
		errs["password"] = MsgPasswordRequired
	}
	return errs
}

// RegisterForm is the submitted registration page.
type RegisterForm struct {
	FullName    string `form:"fullName" json:"fullName"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"password"`
	CompanyName string `form:"companyName" json:"companyName"`
	IsAgency    bool   `form:"isAgency" json:"isAgency"`
}

// NewRegisterForm returns the blank form shown on first visit. Agency is preselected.
func NewRegisterForm() RegisterForm {
	return RegisterForm{IsAgency: true}
}

// ParseAgency interprets the isAgency radio value. Anything but a false-like
// value keeps the default of true.
func ParseAgency(raw string) bool {
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

// Validate checks every field and reports all failures at once.
func (f RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.FullName == "" {
		errs["fullName"] = MsgFullNameRequired
	}
	if f.PhoneNumber == "" {
		errs["phoneNumber"] = MsgPhoneNumberRequired
	}
	validateEmail(errs, f.Email)
	switch {
	case f.Password == "":
		errs["password"] = MsgPasswordRequired
	case len(f.Password) < MinPasswordLength:
		errs["password"] = MsgPasswordTooShort
	}
	if f.IsAgency && f.CompanyName == "" {
		errs["companyName"] = MsgCompanyRequired
	}
	return errs
}

// User returns the record submitted for registration, without the password.
func (f RegisterForm) User() domain.User {
	return domain.User{
		FullName:    f.FullName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		IsAgency:    f.IsAgency,
		CompanyName: f.CompanyName,
	}
}

func validateEmail(errs FieldErrors, email string) {
	switch {
	case email == "":
		errs["email"] = MsgEmailRequired
	case !emailPattern.MatchString(email):
		errs["email"] = MsgEmailInvalid
	}
}
