package stubapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velora-shop/storefront-go/config"
	"github.com/velora-shop/storefront-go/internal/api"
	"github.com/velora-shop/storefront-go/internal/core/domain"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(New().Router())
	t.Cleanup(srv.Close)
	return api.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
}

func signUp(t *testing.T, c *api.Client, email string) *domain.SessionUser {
	t.Helper()
	u, err := c.Register(context.Background(), domain.RegisterRequest{
		Email:     email,
		Password:  "longenough",
		FirstName: "Ana",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func TestRegisterLoginFlow(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	u := signUp(t, c, "ana@example.com")
	if u.ID == 0 || u.Role != domain.RoleBuyer {
		t.Fatalf("user = %+v", u)
	}

	// Registration opens a session.
	me, err := c.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if me.ID != u.ID {
		t.Fatalf("me = %+v", me)
	}

	// Logout closes it.
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.CurrentUser(ctx); err == nil {
		t.Fatal("expected auth error after logout")
	}

	// Wrong password.
	_, err = c.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Fatalf("message = %q", apiErr.Message)
	}

	// Right password.
	if _, err := c.Login(ctx, domain.LoginRequest{Email: "ana@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	c := newClient(t)
	signUp(t, c, "ana@example.com")

	_, err := c.Register(context.Background(), domain.RegisterRequest{
		Email:    "ana@example.com",
		Password: "longenough",
	})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Email already exists" {
		t.Fatalf("err = %v", err)
	}
}

func TestDefaultAddressExclusivity(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	signUp(t, c, "ana@example.com")

	for _, line := range []string{"1 Main St", "9 Office Rd"} {
		if err := c.AddAddress(ctx, domain.AddressInput{Label: line, Line1: line}); err != nil {
			t.Fatalf("add address: %v", err)
		}
	}

	addrs, err := c.ListAddresses(ctx)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("addresses = %+v", addrs)
	}
	// The first address becomes the default automatically.
	if !addrs[0].IsDefault || addrs[1].IsDefault {
		t.Fatalf("default flags = %v %v", addrs[0].IsDefault, addrs[1].IsDefault)
	}

	if err := c.SetDefaultAddress(ctx, addrs[1].ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	addrs, err = c.ListAddresses(ctx)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			if a.ID != addrs[1].ID {
				t.Fatalf("wrong default: %+v", a)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("defaults = %d, want exactly 1", defaults)
	}

	if err := c.SetDefaultAddress(ctx, 99999); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestProfileAndSettingsRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	signUp(t, c, "ana@example.com")

	first := "Anastasia"
	phone := "+15551234"
	if err := c.UpdateProfile(ctx, domain.UpdateProfileRequest{FirstName: &first, Phone: &phone}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	sms := true
	lang := domain.LanguageDE
	if err := c.UpdateSettings(ctx, domain.SettingsUpdate{SMSNotifications: &sms, Language: &lang}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	p, err := c.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.User.FirstName != "Anastasia" || p.User.Phone == nil || *p.User.Phone != phone {
		t.Fatalf("user = %+v", p.User)
	}
	if !p.Settings.SMSNotifications || p.Settings.Language != domain.LanguageDE {
		t.Fatalf("settings = %+v", p.Settings)
	}
	// Defaults survive a partial update.
	if !p.Settings.EmailNotifications || p.Settings.Currency != domain.CurrencyUSD {
		t.Fatalf("settings = %+v", p.Settings)
	}
}

func TestCartFlow(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	signUp(t, c, "ana@example.com")

	// Product 102 is on sale; the cart line must carry the sale price.
	if err := c.AddCartItem(ctx, 102, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddCartItem(ctx, 102, 1); err != nil {
		t.Fatalf("add again: %v", err)
	}

	cart, err := c.GetCart(ctx)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("cart = %+v", cart)
	}
	if cart.Items[0].UnitPrice != 69.00 {
		t.Fatalf("unit price = %v", cart.Items[0].UnitPrice)
	}
	if cart.Subtotal != 3*69.00 {
		t.Fatalf("subtotal = %v", cart.Subtotal)
	}

	if err := c.RemoveCartItem(ctx, cart.Items[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cart, err = c.GetCart(ctx)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("cart = %+v", cart)
	}
}

func TestCatalogPagingAndSearch(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	page, err := c.ListProducts(ctx, domain.ProductQuery{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 2 || page.Pagination.TotalItems != 5 || page.Pagination.TotalPages != 3 {
		t.Fatalf("page = %+v", page)
	}

	page, err = c.ListProducts(ctx, domain.ProductQuery{Search: "keyboard"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].ID != 102 {
		t.Fatalf("search results = %+v", page.Products)
	}

	page, err = c.ListProducts(ctx, domain.ProductQuery{Category: "home"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("category results = %+v", page.Products)
	}
}

func TestWishlistAndNotifications(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	signUp(t, c, "ana@example.com")

	if err := c.AddToWishlist(ctx, 103); err != nil {
		t.Fatalf("wishlist add: %v", err)
	}
	if err := c.AddToWishlist(ctx, 103); err == nil {
		t.Fatal("duplicate wishlist add must fail")
	}
	items, err := c.ListWishlist(ctx)
	if err != nil {
		t.Fatalf("wishlist: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != 103 {
		t.Fatalf("wishlist = %+v", items)
	}
	if err := c.RemoveFromWishlist(ctx, items[0].ID); err != nil {
		t.Fatalf("wishlist remove: %v", err)
	}

	ns, err := c.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(ns) != 1 || ns[0].Read {
		t.Fatalf("notifications = %+v", ns)
	}
	if err := c.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	ns, err = c.ListNotifications(ctx)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if !ns[0].Read {
		t.Fatalf("notifications = %+v", ns)
	}
}
