package dto

import "github.com/popx/account-portal/internal/domain"

// SessionResponse is the JSON view of a client's session.
type SessionResponse struct {
	Status          domain.SessionStatus `json:"status"`
	User            *domain.User         `json:"user"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	IsLoading       bool                 `json:"isLoading"`
	Error           string               `json:"error,omitempty"`
}

// NewSessionResponse converts a session state.
func NewSessionResponse(state domain.SessionState) SessionResponse {
	return SessionResponse{
		Status:          state.Status(),
		User:            state.User,
		IsAuthenticated: state.IsAuthenticated,
		IsLoading:       state.IsLoading,
		Error:           state.Error,
	}
}

// UserPatchRequest is the body of PATCH /api/session/user. Absent fields are
// left untouched.
type UserPatchRequest struct {
	FullName       *string `json:"fullName"`
	Email          *string `json:"email"`
	PhoneNumber    *string `json:"phoneNumber"`
	IsAgency       *bool   `json:"isAgency"`
	CompanyName    *string `json:"companyName"`
	ProfilePicture *string `json:"profilePicture"`
}

// Patch converts the request into a domain patch.
func (r UserPatchRequest) Patch() domain.UserPatch {
	return domain.UserPatch{
		FullName:       r.FullName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		IsAgency:       r.IsAgency,
		CompanyName:    r.CompanyName,
		ProfilePicture: r.ProfilePicture,
	}
}

