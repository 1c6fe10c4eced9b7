// Package session tracks the signed-in user of one client: it follows the
// authentication provider's auth-state stream, keeps the user's profile
// document and republishes it to subscribers.
package session

import (
	"context" // Request scoped calls
	"errors"  // Error kind checks
	"path"    // Upload paths
	"strconv" // Timestamp formatting
	"strings" // Input trimming
	"sync"    // Guards session state
	"time"    // Clock for upload paths

	"expense_tracker/internal/assets" // Profile images
	"expense_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
)

// State of the session state machine: Unknown until the provider reports,
// then Authenticated or Unauthenticated.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Provider is the authentication provider contract.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)
	SignOut(ctx context.Context) error
	OnAuthStateChanged(fn func(*domain.Identity)) (unsubscribe func())
}

// Profiles stores user profile documents.
type Profiles interface {
	GetUser(ctx context.Context, uid string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, uid string, name string, image *string) error
}

// ProfileInput carries a profile edit.
type ProfileInput struct {
	Name  string
	Image assets.Asset
}

// Option configures a Session.
type Option func(*Session)

// WithAssetHost sets the host used for profile images.
func WithAssetHost(host assets.Host) Option {
	return func(s *Session) { s.assets = host }
}

// WithLogger replaces the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock replaces time.Now, used for upload paths.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithContext sets the context used for profile loads triggered by the
// auth-state stream.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// Session is the Session/Identity component of one client.
type Session struct {
	profiles Profiles
	provider Provider
	assets   assets.Host
	logger   logrus.FieldLogger
	now      func() time.Time
	ctx      context.Context

	mu          sync.Mutex
	state       State
	loading     bool
	user        *domain.User
	subscribers map[int]func(*domain.User)
	nextID      int
	unsubscribe func()
}

// New wires a session to its provider and starts following the auth-state
// stream.
func New(provider Provider, profiles Profiles, opts ...Option) *Session {
	s := &Session{
		provider:    provider,
		profiles:    profiles,
		logger:      logrus.StandardLogger(),
		now:         time.Now,
		ctx:         context.Background(),
		state:       StateUnknown,
		loading:     true,
		subscribers: make(map[int]func(*domain.User)),
	}
	for _, opt := range opts {
		opt(s)
	}
	unsubscribe := provider.OnAuthStateChanged(s.handleAuthState)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return s
}

// Close stops following the provider.
func (s *Session) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// User returns the current profile, nil when signed out or not loaded.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// State returns the state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading is true until the provider reported the first auth state.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether a profile is loaded.
func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// Subscribe registers fn for every change of the current user.
func (s *Session) Subscribe(fn func(*domain.User)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Login signs in with the provider; the profile is loaded by the resulting
// auth-state event.
func (s *Session) Login(ctx context.Context, email, password string) domain.Result {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.Fail(domain.Validation("session.login", "Please fill in all fields"))
	}
	if _, err := s.provider.SignIn(ctx, email, password); err != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Warn("Login failed")
		return domain.Fail(err)
	}
	return domain.OK("Login successful", s.User())
}

// Register creates the identity, then the profile document. The two steps are
// not atomic: a failed profile write leaves the identity behind.
func (s *Session) Register(ctx context.Context, email, password, name string) domain.Result {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(email) == "" || password == "" || name == "" {
		return domain.Fail(domain.Validation("session.register", "Please fill in all fields"))
	}
	identity, err := s.provider.SignUp(ctx, email, password) // First step: identity
	if err != nil {
		s.logger.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Warn("Registration failed")
		return domain.Fail(err)
	}
	user := domain.User{UID: identity.UID, Name: name, Email: identity.Email} // Second step: profile document
	if err := s.profiles.CreateUser(ctx, user); err != nil {
		s.logger.WithFields(logrus.Fields{
			"uid":   identity.UID,
			"error": err.Error(),
		}).Error("Profile creation failed after identity creation")
		return domain.Fail(err)
	}
	if err := s.UpdateUserData(ctx, identity.UID); err != nil {
		return domain.Fail(err)
	}
	return domain.OK("Registration successful", s.User())
}

// UpdateUserData reloads the profile and republishes it.
func (s *Session) UpdateUserData(ctx context.Context, uid string) error {
	user, err := s.profiles.GetUser(ctx, uid)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &user // Replace the current user
	s.mu.Unlock()
	s.publish(&user) // Notify outside the lock
	return nil
}

// UpdateProfile changes the name and optionally the avatar, then republishes.
func (s *Session) UpdateProfile(ctx context.Context, uid string, input ProfileInput) domain.Result {
	const op = "session.update_profile"
	name := strings.TrimSpace(input.Name)
	if uid == "" {
		return domain.Fail(domain.Validation(op, "User id is required"))
	}
	if name == "" {
		return domain.Fail(domain.Validation(op, "Please enter your name"))
	}
	// Upload a local avatar before the profile write
	image, err := assets.Resolve(ctx, s.assets, input.Image, path.Join("users", uid, strconv.FormatInt(s.now().UnixMilli(), 10)))
	if err != nil {
		return domain.Fail(err)
	}
	if err := s.profiles.UpdateUser(ctx, uid, name, image); err != nil {
		return domain.Fail(err)
	}
	if err := s.UpdateUserData(ctx, uid); err != nil { // Reload and republish
		return domain.Fail(err)
	}
	s.logger.WithField("uid", uid).Info("Profile updated")
	return domain.OK("User updated successfully", s.User())
}

// Logout signs out with the provider.
func (s *Session) Logout(ctx context.Context) domain.Result {
	if err := s.provider.SignOut(ctx); err != nil {
		return domain.Fail(err)
	}
	return domain.OK("Logged out", nil)
}

func (s *Session) handleAuthState(identity *domain.Identity) {
	if identity == nil { // Signed out
		s.mu.Lock()
		s.user = nil
		s.state = StateUnauthenticated
		s.loading = false
		s.mu.Unlock()
		s.publish(nil)
		return
	}
	if err := s.UpdateUserData(s.ctx, identity.UID); err != nil {
		// Right after sign-up the profile is not written yet.
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WithFields(logrus.Fields{"uid": identity.UID, "error": err.Error()}).Error("Loading profile failed")
		}
	}
	s.mu.Lock()
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()
}

func (s *Session) publish(user *domain.User) {
	s.mu.Lock()
	subscribers := make([]func(*domain.User), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()
	for _, fn := range subscribers {
		if user == nil {
			fn(nil)
			continue
		}
		copied := *user // Each subscriber gets its own copy
		fn(&copied)
	}
}
