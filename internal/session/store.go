// Package session owns the "who is logged in" state. The Store is the single
// writer of the session user; UI layers and the profile store are readers that
// subscribe to identity changes.
package session

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velora-shop/storefront-go/internal/core/domain"
	"github.com/velora-shop/storefront-go/internal/notify"
	"github.com/velora-shop/storefront-go/observability"
)

// API is the slice of the storefront API the session store depends on.
type API interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.SessionUser, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.SessionUser, error)
	// ClearSession discards the locally held session credential without any
	// network traffic.
	ClearSession()
}

// RegisterInput is the registration form contents. Confirmation and terms are
// validated locally before any network call.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Role            domain.Role
	AcceptTerms     bool
}

// minPasswordLength is enforced client-side; the backend applies its own rules
// on top.
const minPasswordLength = 8

// Store is the single source of truth for the authenticated identity.
// Methods never hold the lock across network calls, so concurrent operations
// interleave around the request exactly as independent UI events would.
type Store struct {
	api      API
	notifier notify.Notifier
	log      *zap.Logger

	mu      sync.Mutex
	user    *domain.SessionUser
	loading bool
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(*domain.SessionUser)
}

// NewStore creates a session store. notifier and logger may be nil.
func NewStore(api API, notifier notify.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:      api,
		notifier: notifier,
		log:      logger,
	}
}

// User returns a copy of the current session user, or nil when anonymous.
func (s *Store) User() *domain.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Loading reports whether a session operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe registers fn to be called after every identity change (including
// becoming absent). Callbacks run synchronously on the mutating goroutine, in
// subscription order, outside the store's lock. The returned function removes
// the subscription.
func (s *Store) Subscribe(fn func(*domain.SessionUser)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
}

// Initialize performs the startup session check. Any failure is treated as
// "not authenticated": an anonymous visitor on first load is the expected
// path, not an error, so nothing is surfaced to the notifier.
func (s *Store) Initialize(ctx context.Context) {
	ctx, span := observability.StartSpan(ctx, "session.initialize", trace.WithAttributes(
		attribute.String("layer", "session"),
	))
	defer span.End()

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.log.Debug("Session check failed, treating as anonymous", zap.Error(err))
		s.setUser(nil)
		span.SetAttributes(attribute.Bool("session.authenticated", false))
		return
	}

	s.setUser(user)
	span.SetAttributes(attribute.Bool("session.authenticated", true))
	s.log.Info("Session restored", zap.Int64("user_id", user.ID))
}

// Login authenticates with email and password. On failure the server's
// message (or a generic fallback) is surfaced through the notifier and the
// error is returned so the calling form can keep its own state.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	ctx, span := observability.StartSpan(ctx, "session.login", trace.WithAttributes(
		attribute.String("layer", "session"),
	))
	defer span.End()

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.Login(ctx, domain.LoginRequest{Email: email, Password: password})
	if err != nil {
		observability.RecordError(ctx, err)
		s.log.Info("Login failed", zap.String("email", email), zap.Error(err))
		s.notifier.Error("Login Failed", domain.ErrorMessage(err, "Invalid email or password"))
		return nil, err
	}

	s.setUser(user)
	s.notifier.Success("Login Successful", "Welcome back, "+user.FirstName+"!")
	s.log.Info("Login succeeded", zap.Int64("user_id", user.ID))
	return user, nil
}

// Register creates an account. Local validation (password length, confirmation
// match, terms accepted) runs before any network call; its failures are
// surfaced with their own specific messages.
func (s *Store) Register(ctx context.Context, input RegisterInput) (*domain.SessionUser, error) {
	ctx, span := observability.StartSpan(ctx, "session.register", trace.WithAttributes(
		attribute.String("layer", "session"),
	))
	defer span.End()

	if err := validateRegistration(input); err != nil {
		s.notifier.Error("Registration Failed", err.Error())
		return nil, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	role := input.Role
	if role == "" {
		role = domain.RoleBuyer
	}

	user, err := s.api.Register(ctx, domain.RegisterRequest{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
	})
	if err != nil {
		observability.RecordError(ctx, err)
		s.log.Info("Registration failed", zap.String("email", input.Email), zap.Error(err))
		s.notifier.Error("Registration Failed", domain.ErrorMessage(err, "Something went wrong"))
		return nil, err
	}

	s.setUser(user)
	s.notifier.Success("Registration Successful", "Welcome, "+user.FirstName+"!")
	s.log.Info("Registration succeeded", zap.Int64("user_id", user.ID))
	return user, nil
}

// Logout ends the session. It is always locally successful: even when the
// network call fails, the user's intent to stop being authenticated on this
// client is honored, so the identity is cleared either way.
func (s *Store) Logout(ctx context.Context) {
	ctx, span := observability.StartSpan(ctx, "session.logout", trace.WithAttributes(
		attribute.String("layer", "session"),
	))
	defer span.End()

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Logout(ctx); err != nil {
		// Ignored beyond logging: the local session ends regardless.
		s.log.Warn("Logout request failed, clearing session anyway", zap.Error(err))
	}

	// The server's expiring Set-Cookie never arrives on the failure path, so
	// the locally held credential is dropped explicitly either way.
	s.api.ClearSession()
	s.setUser(nil)
	s.notifier.Success("Logged Out", "You have been logged out")
}

func validateRegistration(input RegisterInput) error {
	if len(input.Password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if !input.AcceptTerms {
		return domain.ErrTermsNotAccepted
	}
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// setUser replaces the session user and, when the identity actually changed,
// notifies subscribers outside the lock.
func (s *Store) setUser(u *domain.SessionUser) {
	s.mu.Lock()
	changed := !sameIdentity(s.user, u)
	s.user = u

	var fns []func(*domain.SessionUser)
	var snapshot *domain.SessionUser
	if changed {
		fns = make([]func(*domain.SessionUser), 0, len(s.subs))
		for _, sub := range s.subs {
			fns = append(fns, sub.fn)
		}
		if u != nil {
			c := *u
			snapshot = &c
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func sameIdentity(a, b *domain.SessionUser) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
