// Package profile keeps a CompleteProfile synchronized with the session
// store's identity. Mutations either patch local state optimistically or
// trigger a full refetch, per operation; every failure is surfaced through
// the notifier and re-raised to the caller.
package profile

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/velora-shop/storefront-go/internal/core/domain"
	"github.com/velora-shop/storefront-go/internal/notify"
	"github.com/velora-shop/storefront-go/internal/session"
	"github.com/velora-shop/storefront-go/observability"
)

// API is the slice of the storefront API the profile store depends on.
type API interface {
	GetProfile(ctx context.Context) (*domain.CompleteProfile, error)
	UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error
	UpdateAvatar(ctx context.Context, avatarURL string) error
	AddAddress(ctx context.Context, input domain.AddressInput) error
	UpdateAddress(ctx context.Context, id int64, input domain.AddressInput) error
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) error
	UpdateSettings(ctx context.Context, update domain.SettingsUpdate) error
}

const genericFailure = "Something went wrong"

// Store holds the composite profile for the current session user. It is the
// profile's single writer; readers subscribe for changes. The lock is never
// held across network calls, so concurrent mutations race exactly like
// overlapping UI events - except refreshes, which carry a monotonic sequence
// number so a stale response can never overwrite a newer one.
type Store struct {
	api      API
	notifier notify.Notifier
	log      *zap.Logger

	mu         sync.Mutex
	profile    *domain.CompleteProfile
	loading    bool
	refreshSeq uint64
	subs       []subscriber
	nextSub    int
}

type subscriber struct {
	id int
	fn func(*domain.CompleteProfile)
}

// NewStore creates a profile store. notifier and logger may be nil.
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

// Bind subscribes the store to a session store's identity changes: a new
// identity triggers a refresh, an absent identity clears the profile without
// any network call. Returns the unsubscribe function.
func (s *Store) Bind(sessions *session.Store) func() {
	return sessions.Subscribe(func(u *domain.SessionUser) {
		s.OnSessionChange(context.Background(), u)
	})
}

// OnSessionChange reacts to a session identity transition.
func (s *Store) OnSessionChange(ctx context.Context, user *domain.SessionUser) {
	if user == nil {
		s.clear()
		return
	}
	// Failures already produce a toast inside Refresh.
	_ = s.Refresh(ctx)
}

// Profile returns a copy of the current complete profile, or nil when there
// is no session user (or the initial fetch has not landed yet).
func (s *Store) Profile() *domain.CompleteProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProfile(s.profile)
}

// Loading reports whether a profile fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe registers fn to be called after every profile state change.
// Callbacks run synchronously on the mutating goroutine, in subscription
// order, outside the store's lock.
func (s *Store) Subscribe(fn func(*domain.CompleteProfile)) (unsubscribe func()) {
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

// Refresh replaces the whole profile from the server. On failure the prior
// state is left untouched. A response is applied only when it belongs to the
// most recently issued refresh; late responses from superseded refreshes are
// discarded.
func (s *Store) Refresh(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "profile.refresh", trace.WithAttributes(
		attribute.String("layer", "profile"),
	))
	defer span.End()

	seq := s.beginRefresh()

	p, err := s.api.GetProfile(ctx)
	if err != nil {
		current := s.finishRefresh(seq, nil)
		observability.RecordError(ctx, err)
		s.log.Warn("Profile refresh failed", zap.Error(err), zap.Bool("superseded", !current))
		// A superseded refresh's outcome no longer matters; only a current
		// failure is worth a toast.
		if current {
			s.notifier.Error("Profile", domain.ErrorMessage(err, genericFailure))
		}
		return err
	}

	applied := s.finishRefresh(seq, p)
	span.SetAttributes(attribute.Bool("profile.applied", applied))
	if !applied {
		s.log.Debug("Discarded stale profile refresh", zap.Uint64("seq", seq))
	}
	return nil
}

// UpdateUser merges the given fields into the local profile immediately, then
// persists them. The optimistic patch is not rolled back on failure; the next
// refresh reconciles.
func (s *Store) UpdateUser(ctx context.Context, req domain.UpdateProfileRequest) error {
	ctx, span := observability.StartSpan(ctx, "profile.update_user", trace.WithAttributes(
		attribute.String("layer", "profile"),
	))
	defer span.End()

	s.mutate(func(p *domain.CompleteProfile) {
		mergeUser(&p.User, req)
	})

	if err := s.api.UpdateProfile(ctx, req); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Update Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	s.notifier.Success("Profile Updated", "Your profile has been updated")
	return nil
}

// UpdateAvatar optimistically swaps the avatar URL, then persists it.
func (s *Store) UpdateAvatar(ctx context.Context, avatarURL string) error {
	ctx, span := observability.StartSpan(ctx, "profile.update_avatar", trace.WithAttributes(
		attribute.String("layer", "profile"),
	))
	defer span.End()

	s.mutate(func(p *domain.CompleteProfile) {
		url := avatarURL
		p.User.AvatarURL = &url
	})

	if err := s.api.UpdateAvatar(ctx, avatarURL); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Update Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	s.notifier.Success("Avatar Updated", "Your avatar has been updated")
	return nil
}

// AddAddress creates an address server-side, then refreshes the whole profile
// to pick up the assigned id, timestamps, and any default flag shuffling.
func (s *Store) AddAddress(ctx context.Context, input domain.AddressInput) error {
	ctx, span := observability.StartSpan(ctx, "profile.add_address", trace.WithAttributes(
		attribute.String("layer", "profile"),
	))
	defer span.End()

	if err := s.api.AddAddress(ctx, input); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Address Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	_ = s.Refresh(ctx)
	s.notifier.Success("Address Added", "Your address has been saved")
	return nil
}

// UpdateAddress rewrites an address server-side, then refreshes.
func (s *Store) UpdateAddress(ctx context.Context, id int64, input domain.AddressInput) error {
	ctx, span := observability.StartSpan(ctx, "profile.update_address", trace.WithAttributes(
		attribute.String("layer", "profile"),
		attribute.Int64("address.id", id),
	))
	defer span.End()

	if err := s.api.UpdateAddress(ctx, id, input); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Address Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	_ = s.Refresh(ctx)
	s.notifier.Success("Address Updated", "Your address has been updated")
	return nil
}

// DeleteAddress removes the address locally right away, then persists the
// removal. The optimistic removal is not rolled back on failure.
func (s *Store) DeleteAddress(ctx context.Context, id int64) error {
	ctx, span := observability.StartSpan(ctx, "profile.delete_address", trace.WithAttributes(
		attribute.String("layer", "profile"),
		attribute.Int64("address.id", id),
	))
	defer span.End()

	s.mutate(func(p *domain.CompleteProfile) {
		kept := p.Addresses[:0]
		for _, a := range p.Addresses {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		p.Addresses = kept
	})

	if err := s.api.DeleteAddress(ctx, id); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Address Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	s.notifier.Success("Address Deleted", "The address has been removed")
	return nil
}

// SetDefaultAddress asks the server to promote the address, then refreshes:
// default exclusivity is a server-side responsibility, so the local
// collection is stale until refetched.
func (s *Store) SetDefaultAddress(ctx context.Context, id int64) error {
	ctx, span := observability.StartSpan(ctx, "profile.set_default_address", trace.WithAttributes(
		attribute.String("layer", "profile"),
		attribute.Int64("address.id", id),
	))
	defer span.End()

	if err := s.api.SetDefaultAddress(ctx, id); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Address Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	_ = s.Refresh(ctx)
	s.notifier.Success("Default Address Updated", "Your default address has been changed")
	return nil
}

// UpdateSettings merges the update into local settings immediately, then
// persists it.
func (s *Store) UpdateSettings(ctx context.Context, update domain.SettingsUpdate) error {
	ctx, span := observability.StartSpan(ctx, "profile.update_settings", trace.WithAttributes(
		attribute.String("layer", "profile"),
	))
	defer span.End()

	s.mutate(func(p *domain.CompleteProfile) {
		update.Apply(&p.Settings)
	})

	if err := s.api.UpdateSettings(ctx, update); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Update Failed", domain.ErrorMessage(err, genericFailure))
		return err
	}

	s.notifier.Success("Settings Updated", "Your settings have been saved")
	return nil
}

// beginRefresh marks a refresh as started and returns its sequence number.
func (s *Store) beginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshSeq++
	s.loading = true
	return s.refreshSeq
}

// finishRefresh applies the refresh result if seq is still the latest issued.
// A nil profile only ends the loading state (failed refresh). Reports whether
// seq was still current; a stale result is discarded entirely.
func (s *Store) finishRefresh(seq uint64, p *domain.CompleteProfile) bool {
	s.mu.Lock()
	if seq != s.refreshSeq {
		s.mu.Unlock()
		return false
	}
	s.loading = false
	if p == nil {
		s.mu.Unlock()
		return true
	}
	s.profile = p
	fns, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(fns, snapshot)
	return true
}

// clear drops the profile without touching the network and invalidates any
// in-flight refresh so its late response cannot resurrect the old state.
func (s *Store) clear() {
	s.mu.Lock()
	s.refreshSeq++
	s.loading = false
	s.profile = nil
	fns, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(fns, snapshot)
}

// mutate applies an optimistic patch to the local profile, if one is loaded.
func (s *Store) mutate(patch func(*domain.CompleteProfile)) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	patch(s.profile)
	fns, snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.fanOut(fns, snapshot)
}

func (s *Store) snapshotLocked() ([]func(*domain.CompleteProfile), *domain.CompleteProfile) {
	fns := make([]func(*domain.CompleteProfile), 0, len(s.subs))
	for _, sub := range s.subs {
		fns = append(fns, sub.fn)
	}
	return fns, copyProfile(s.profile)
}

func (s *Store) fanOut(fns []func(*domain.CompleteProfile), snapshot *domain.CompleteProfile) {
	for _, fn := range fns {
		fn(snapshot)
	}
}

func copyProfile(p *domain.CompleteProfile) *domain.CompleteProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Addresses = append([]domain.Address(nil), p.Addresses...)
	return &c
}

func mergeUser(u *domain.UserProfile, req domain.UpdateProfileRequest) {
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		u.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		u.Gender = req.Gender
	}
	if req.Bio != nil {
		u.Bio = req.Bio
	}
}
