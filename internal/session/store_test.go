package session

import (
	"context"
	"errors"
	"testing"

	"github.com/velora-shop/storefront-go/internal/core/domain"
	"github.com/velora-shop/storefront-go/internal/notify"
)

type fakeAuthAPI struct {
	registerFn func(ctx context.Context, req domain.RegisterRequest) (*domain.SessionUser, error)
	loginFn    func(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error)
	logoutFn   func(ctx context.Context) error
	currentFn  func(ctx context.Context) (*domain.SessionUser, error)

	registerCalls     int
	loginCalls        int
	logoutCalls       int
	currentCalls      int
	clearSessionCalls int
}

func (f *fakeAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.SessionUser, error) {
	f.registerCalls++
	if f.registerFn == nil {
		return nil, errors.New("unexpected Register call")
	}
	return f.registerFn(ctx, req)
}

func (f *fakeAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error) {
	f.loginCalls++
	if f.loginFn == nil {
		return nil, errors.New("unexpected Login call")
	}
	return f.loginFn(ctx, req)
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.logoutCalls++
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakeAuthAPI) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	f.currentCalls++
	if f.currentFn == nil {
		return nil, errors.New("unexpected CurrentUser call")
	}
	return f.currentFn(ctx)
}

func (f *fakeAuthAPI) ClearSession() {
	f.clearSessionCalls++
}

type toastRecorder struct {
	got []notify.Notification
}

func (r *toastRecorder) notifier() notify.Notifier {
	return func(n notify.Notification) {
		r.got = append(r.got, n)
	}
}

func buyer(id int64, firstName string) *domain.SessionUser {
	return &domain.SessionUser{
		ID:        id,
		Email:     "user@example.com",
		FirstName: firstName,
		Role:      domain.RoleBuyer,
	}
}

func TestInitializeFailureIsSilent(t *testing.T) {
	api := &fakeAuthAPI{
		currentFn: func(ctx context.Context) (*domain.SessionUser, error) {
			return nil, &domain.APIError{StatusCode: 401, Message: "Authentication required"}
		},
	}
	rec := &toastRecorder{}
	s := NewStore(api, rec.notifier(), nil)

	s.Initialize(context.Background())

	if s.User() != nil {
		t.Fatalf("expected anonymous session, got %+v", s.User())
	}
	if len(rec.got) != 0 {
		t.Fatalf("initial session check must not notify, got %+v", rec.got)
	}
	if s.Loading() {
		t.Fatal("loading should be false after Initialize")
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	api := &fakeAuthAPI{
		currentFn: func(ctx context.Context) (*domain.SessionUser, error) {
			return buyer(7, "Ana"), nil
		},
	}
	s := NewStore(api, nil, nil)

	s.Initialize(context.Background())

	u := s.User()
	if u == nil || u.ID != 7 {
		t.Fatalf("expected restored user 7, got %+v", u)
	}
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error) {
			if req.Email != "ana@example.com" || req.Password != "correct horse" {
				t.Errorf("unexpected login request %+v", req)
			}
			return buyer(7, "Ana"), nil
		},
	}
	rec := &toastRecorder{}
	s := NewStore(api, rec.notifier(), nil)

	var seen []*domain.SessionUser
	s.Subscribe(func(u *domain.SessionUser) { seen = append(seen, u) })

	u, err := s.Login(context.Background(), "ana@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("expected user 7, got %+v", u)
	}
	if got := s.User(); got == nil || got.ID != 7 {
		t.Fatalf("store user = %+v", got)
	}
	if len(seen) != 1 || seen[0] == nil || seen[0].ID != 7 {
		t.Fatalf("subscriber saw %+v", seen)
	}
	if len(rec.got) != 1 || rec.got[0].Severity != notify.SeveritySuccess {
		t.Fatalf("notifications = %+v", rec.got)
	}
	if rec.got[0].Description != "Welcome back, Ana!" {
		t.Fatalf("greeting = %q", rec.got[0].Description)
	}
}

func TestLoginFailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "server message wins",
			err:     &domain.APIError{StatusCode: 401, Message: "Account locked"},
			wantMsg: "Account locked",
		},
		{
			name:    "transport failure falls back",
			err:     errors.New("dial tcp: connection refused"),
			wantMsg: "Invalid email or password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{
				loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error) {
					return nil, tt.err
				},
			}
			rec := &toastRecorder{}
			s := NewStore(api, rec.notifier(), nil)

			_, err := s.Login(context.Background(), "ana@example.com", "nope")
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected the API error back, got %v", err)
			}
			if s.User() != nil {
				t.Fatal("failed login must not set a user")
			}
			if len(rec.got) != 1 || rec.got[0].Severity != notify.SeverityError {
				t.Fatalf("notifications = %+v", rec.got)
			}
			if rec.got[0].Title != "Login Failed" || rec.got[0].Description != tt.wantMsg {
				t.Fatalf("toast = %+v", rec.got[0])
			}
		})
	}
}

func TestRegisterValidatesBeforeNetwork(t *testing.T) {
	valid := RegisterInput{
		Email:           "ana@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		FirstName:       "Ana",
		AcceptTerms:     true,
	}

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{
			name:    "short password",
			mutate:  func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short", "short" },
			wantErr: domain.ErrPasswordTooShort,
		},
		{
			name:    "confirmation mismatch",
			mutate:  func(in *RegisterInput) { in.ConfirmPassword = "different99" },
			wantErr: domain.ErrPasswordMismatch,
		},
		{
			name:    "terms not accepted",
			mutate:  func(in *RegisterInput) { in.AcceptTerms = false },
			wantErr: domain.ErrTermsNotAccepted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAuthAPI{}
			rec := &toastRecorder{}
			s := NewStore(api, rec.notifier(), nil)

			input := valid
			tt.mutate(&input)

			_, err := s.Register(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if api.registerCalls != 0 {
				t.Fatal("validation failure must short-circuit before the network")
			}
			if len(rec.got) != 1 || rec.got[0].Description != tt.wantErr.Error() {
				t.Fatalf("toast = %+v", rec.got)
			}
		})
	}
}

func TestRegisterDefaultsRoleToBuyer(t *testing.T) {
	var gotRole domain.Role
	api := &fakeAuthAPI{
		registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.SessionUser, error) {
			gotRole = req.Role
			return buyer(3, "Ana"), nil
		},
	}
	s := NewStore(api, nil, nil)

	_, err := s.Register(context.Background(), RegisterInput{
		Email:           "ana@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		AcceptTerms:     true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if gotRole != domain.RoleBuyer {
		t.Fatalf("role = %q, want %q", gotRole, domain.RoleBuyer)
	}
}

func TestLogoutClearsEvenWhenRequestFails(t *testing.T) {
	api := &fakeAuthAPI{
		currentFn: func(ctx context.Context) (*domain.SessionUser, error) {
			return buyer(7, "Ana"), nil
		},
		logoutFn: func(ctx context.Context) error {
			return errors.New("backend unreachable")
		},
	}
	rec := &toastRecorder{}
	s := NewStore(api, rec.notifier(), nil)
	s.Initialize(context.Background())

	s.Logout(context.Background())

	if s.User() != nil {
		t.Fatal("logout must clear the session regardless of the network")
	}
	// The cached credential goes too, so a later session check cannot
	// resurrect the session the user ended.
	if api.clearSessionCalls != 1 {
		t.Fatalf("clearSessionCalls = %d, want 1", api.clearSessionCalls)
	}
	last := rec.got[len(rec.got)-1]
	if last.Title != "Logged Out" || last.Severity != notify.SeveritySuccess {
		t.Fatalf("toast = %+v", last)
	}
}

func TestSubscribersFireOnIdentityChangeOnly(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error) {
			return buyer(7, "Ana"), nil
		},
		currentFn: func(ctx context.Context) (*domain.SessionUser, error) {
			return buyer(7, "Ana"), nil
		},
	}
	s := NewStore(api, nil, nil)

	var order []string
	s.Subscribe(func(u *domain.SessionUser) { order = append(order, "first") })
	unsub := s.Subscribe(func(u *domain.SessionUser) { order = append(order, "second") })

	if _, err := s.Login(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("subscription order = %v", order)
	}

	// Same identity again: no notifications.
	s.Initialize(context.Background())
	if len(order) != 2 {
		t.Fatalf("same-identity update must not notify, order = %v", order)
	}

	unsub()
	s.Logout(context.Background())
	if len(order) != 3 || order[2] != "first" {
		t.Fatalf("after unsubscribe, order = %v", order)
	}
}
