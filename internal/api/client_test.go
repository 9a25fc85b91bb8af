package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velora-shop/storefront-go/config"
	"github.com/velora-shop/storefront-go/internal/core/domain"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
}

func TestEnvelopeErrorBecomesAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	}))

	_, err := c.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "x"})

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v, want *domain.APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestNonJSONErrorBodyFallsBackToGenericMessage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))

	err := c.Logout(context.Background())

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %T %v, want *domain.APIError", err, err)
	}
	if apiErr.Message != "Something went wrong" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	// Point at a closed server so the request fails before any response.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(config.APIConfig{BaseURL: url, Timeout: time.Second}, nil)
	err := c.Logout(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError, got %+v", apiErr)
	}
	if got := domain.ErrorMessage(err, "fallback"); got != "fallback" {
		t.Fatalf("ErrorMessage = %q", got)
	}
}

func TestSuccessEnvelopeDataDecoded(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"OK","data":{"id":7,"email":"ana@example.com","first_name":"Ana","role":"buyer"}}`))
	}))

	u, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if u.ID != 7 || u.Email != "ana@example.com" || u.Role != domain.RoleBuyer {
		t.Fatalf("user = %+v", u)
	}
}

func TestClearSessionDropsCookie(t *testing.T) {
	const cookieName = "storefront_session"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "tok-123", Path: "/"})
			w.Write([]byte(`{"success":true,"message":"Login successful","data":{"user":{"id":7}}}`))
		case "/auth/logout":
			// The backend fails without expiring the cookie.
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"message":"Server exploded"}`))
		case "/auth/me":
			if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value == "tok-123" {
				w.Write([]byte(`{"success":true,"message":"OK","data":{"id":7}}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
		}
	}))

	ctx := context.Background()
	if _, err := c.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := c.Logout(ctx); err == nil {
		t.Fatal("expected logout failure")
	}

	c.ClearSession()

	// The cookie must be gone: the session the user ended cannot come back.
	_, err := c.CurrentUser(ctx)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
}

func TestCookieContinuityAcrossRequests(t *testing.T) {
	const cookieName = "storefront_session"
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "tok-123", Path: "/"})
			w.Write([]byte(`{"success":true,"message":"Login successful","data":{"user":{"id":7,"email":"ana@example.com"}}}`))
		case "/auth/me":
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value != "tok-123" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Authentication required"}`))
				return
			}
			w.Write([]byte(`{"success":true,"message":"OK","data":{"id":7,"email":"ana@example.com"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"message":"Not found"}`))
		}
	}))

	u, err := c.Login(context.Background(), domain.LoginRequest{Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("user = %+v", u)
	}

	// The jar must replay the session cookie on the next call.
	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("current user after login: %v", err)
	}
}
