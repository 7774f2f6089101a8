// Package session implements the per-client session state machine:
// Loading, then Authenticated(user) or Anonymous, with an error slot that only
// failed login or registration can set. Every transition is mirrored to a
// Persistence port before it becomes visible.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/popx/account-portal/internal/domain"
	"github.com/popx/account-portal/internal/events"
	"github.com/popx/account-portal/internal/observability"
)

// Messages shown to the user when authentication fails.
const (
	LoginFailedMessage    = "Invalid email or password. Please try again."
	RegisterFailedMessage = "Registration failed. Please try again."
)

var (
	// ErrNotAuthenticated is returned by UpdateUser when no user is signed in.
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrUnreadableRecord marks a stored record that exists but cannot be decoded.
	ErrUnreadableRecord = errors.New("session: unreadable record")
)

// Persistence stores the single user record of one client.
// Load returns (nil, nil) when nothing is stored and an error wrapping
// ErrUnreadableRecord when the stored value cannot be decoded.
type Persistence interface {
	Load(ctx context.Context) (*domain.User, error)
	Save(ctx context.Context, user domain.User) error
	Clear(ctx context.Context) error
}

// Authenticator turns credentials into a user record.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	Register(ctx context.Context, user domain.User, password string) (domain.User, error)
}

// ProfileUpdater is implemented by authenticators that keep their own copy of
// the user. UpdateUser writes the merged user through it before persisting,
// so a later Login returns the edited profile.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, user domain.User) error
}

// Listener observes every committed state. Listeners run in commit order and
// may read State, but must not start another transition on the same store.
type Listener func(domain.SessionState)

// Dependencies bundles what a Store needs. Persistence and Authenticator are required.
type Dependencies struct {
	ClientID      string
	Persistence   Persistence
	Authenticator Authenticator
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// Store owns the session state of one client.
type Store struct {
	mu          sync.Mutex
	state       domain.SessionState
	clientID    string
	persistence Persistence
	auth        Authenticator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics

	// notifyMu keeps events and listener calls in commit order.
	notifyMu sync.Mutex

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// New builds a store in the Loading state. Call Restore before use.
func New(deps Dependencies) *Store {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:       domain.LoadingState(),
		clientID:    deps.ClientID,
		persistence: deps.Persistence,
		auth:        deps.Authenticator,
		dispatcher:  deps.Dispatcher,
		logger:      logger.With(zap.String("client_id", deps.ClientID)),
		metrics:     deps.Metrics,
		listeners:   make(map[int]Listener),
	}
}

// ClientID returns the client this store belongs to.
func (s *Store) ClientID() string {
	return s.clientID
}

// State returns a copy of the current state.
func (s *Store) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers a listener and returns a func that removes it.
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

// Restore reads the persisted record. A stored user yields Authenticated and
// a missing one Anonymous. An undecodable record is cleared and counts as
// missing. Any other load error is returned and the store stays Loading, so
// Restore may be retried.
func (s *Store) Restore(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	user, err := s.persistence.Load(ctx)
	switch {
	case errors.Is(err, ErrUnreadableRecord):
		s.logger.Warn("discarding unreadable session record", zap.Error(err))
		if clearErr := s.persistence.Clear(ctx); clearErr != nil {
			s.logger.Error("clear unreadable session record", zap.Error(clearErr))
		}
		user = nil
	case err != nil:
		snapshot := s.state.Clone()
		s.mu.Unlock()
		s.logger.Warn("restore session record", zap.Error(err))
		return snapshot, fmt.Errorf("restore session: %w", err)
	}

	next := domain.AnonymousState("")
	if user != nil {
		next = domain.AuthenticatedState(*user)
	}
	return s.commit(ctx, events.EventSessionRestored, next, nil), nil
}

// Login authenticates the credentials and persists the resulting user.
func (s *Store) Login(ctx context.Context, email, password string) domain.SessionState {
	s.mu.Lock()
	user, err := s.auth.Login(ctx, email, password)
	if err == nil {
		err = s.persistence.Save(ctx, user)
	}
	if err != nil {
		return s.fail(ctx, "login", LoginFailedMessage, err)
	}
	return s.commit(ctx, events.EventUserLoggedIn, domain.AuthenticatedState(user), nil)
}

// Register creates the user record and persists it.
func (s *Store) Register(ctx context.Context, user domain.User, password string) domain.SessionState {
	s.mu.Lock()
	registered, err := s.auth.Register(ctx, user, password)
	if err == nil {
		err = s.persistence.Save(ctx, registered)
	}
	if err != nil {
		return s.fail(ctx, "register", RegisterFailedMessage, err)
	}
	return s.commit(ctx, events.EventUserRegistered, domain.AuthenticatedState(registered), nil)
}

// Logout removes the persisted record and returns to Anonymous. It never fails;
// a storage error is logged.
func (s *Store) Logout(ctx context.Context) domain.SessionState {
	s.mu.Lock()
	if err := s.persistence.Clear(ctx); err != nil {
		s.logger.Error("clear session record on logout", zap.Error(err))
	}
	return s.commit(ctx, events.EventUserLoggedOut, domain.AnonymousState(""), nil)
}

// UpdateUser merges patch into the signed-in user and persists the result.
// It returns ErrNotAuthenticated when no user is signed in.
func (s *Store) UpdateUser(ctx context.Context, patch domain.UserPatch) (domain.SessionState, error) {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return s.State(), ErrNotAuthenticated
	}

	merged := patch.Apply(*s.state.User)
	if updater, ok := s.auth.(ProfileUpdater); ok {
		if err := updater.UpdateProfile(ctx, merged); err != nil {
			s.mu.Unlock()
			return s.State(), fmt.Errorf("update profile: %w", err)
		}
	}
	if err := s.persistence.Save(ctx, merged); err != nil {
		s.mu.Unlock()
		return s.State(), err
	}

	next := s.state
	next.User = &merged
	payload := events.UserUpdatedPayload{Fields: patchedFields(patch)}
	return s.commit(ctx, events.EventUserUpdated, next, payload), nil
}

// ClearError drops a pending authentication error. It is a no-op when none is set.
func (s *Store) ClearError(ctx context.Context) domain.SessionState {
	s.mu.Lock()
	if !s.state.HasError() {
		defer s.mu.Unlock()
		return s.state.Clone()
	}
	next := s.state
	next.Error = ""
	return s.commit(ctx, events.EventErrorCleared, next, nil)
}

// fail records an authentication failure. The client ends up Anonymous and
// its persisted record is removed so storage and memory agree.
// Must be called with s.mu held.
func (s *Store) fail(ctx context.Context, operation, message string, cause error) domain.SessionState {
	if err := s.persistence.Clear(ctx); err != nil {
		s.logger.Error("clear session record after failure", zap.Error(err))
	}
	payload := events.AuthFailedPayload{Operation: operation, Message: message, Cause: cause.Error()}
	return s.commit(ctx, events.EventAuthFailed, domain.AnonymousState(message), payload)
}

// commit installs next, releases s.mu, then notifies metrics, the dispatcher
// and listeners outside it. notifyMu is taken before s.mu is released so
// overlapping transitions are observed in the order they were committed.
// Must be called with s.mu held.
func (s *Store) commit(ctx context.Context, eventType events.EventType, next domain.SessionState, payload any) domain.SessionState {
	next.IsLoading = false
	next.IsAuthenticated = next.User != nil
	s.state = next
	snapshot := s.state.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.metrics.RecordTransition(string(eventType))
	s.publish(ctx, eventType, snapshot, payload)

	for _, listener := range s.snapshotListeners() {
		listener(snapshot.Clone())
	}
	return snapshot
}

func (s *Store) publish(ctx context.Context, eventType events.EventType, state domain.SessionState, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ClientID:  s.clientID,
		Status:    state.Status(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if state.User != nil {
		event.UserID = state.User.ID
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("session event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

func patchedFields(p domain.UserPatch) []string {
	var fields []string
	if p.FullName != nil {
		fields = append(fields, "fullName")
	}
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.PhoneNumber != nil {
		fields = append(fields, "phoneNumber")
	}
	if p.IsAgency != nil {
		fields = append(fields, "isAgency")
	}
	if p.CompanyName != nil {
		fields = append(fields, "companyName")
	}
	if p.ProfilePicture != nil {
		fields = append(fields, "profilePicture")
	}
	return fields
}
