package domain

// SessionStatus names the state machine position of a session.
type SessionStatus string

const (
	SessionStatusLoading       SessionStatus = "loading"
	SessionStatusAuthenticated SessionStatus = "authenticated"
	SessionStatusAnonymous     SessionStatus = "anonymous"
)

// SessionState is the observable state of one client's session.
// IsAuthenticated is always equal to User != nil.
type SessionState struct {
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	IsLoading       bool   `json:"isLoading"`
	Error           string `json:"error,omitempty"`
}

// LoadingState is the state a session starts in before restore.
func LoadingState() SessionState {
	return SessionState{IsLoading: true}
}

// AuthenticatedState builds the state for a signed-in user.
func AuthenticatedState(user User) SessionState {
	return SessionState{User: &user, IsAuthenticated: true}
}

// AnonymousState builds the logged-out state carrying an optional error.
func AnonymousState(errMsg string) SessionState {
	return SessionState{Error: errMsg}
}

// Status derives the state machine position.
func (s SessionState) Status() SessionStatus {
	switch {
	case s.IsLoading:
		return SessionStatusLoading
	case s.User != nil:
		return SessionStatusAuthenticated
	default:
		return SessionStatusAnonymous
	}
}

// HasError reports whether an authentication error is pending.
func (s SessionState) HasError() bool {
	return s.Error != ""
}

// Clone returns a copy that shares no memory with s.
func (s SessionState) Clone() SessionState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
