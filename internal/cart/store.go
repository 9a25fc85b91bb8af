// Package cart mirrors the server-side cart for the current session, in the
// same optimistic/refresh idiom as the profile store.
package cart

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

// API is the slice of the storefront API the cart store depends on.
type API interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
}

const genericFailure = "Something went wrong"

// Store holds the local cart state. Single writer, many readers.
type Store struct {
	api      API
	notifier notify.Notifier
	log      *zap.Logger

	mu         sync.Mutex
	cart       *domain.Cart
	loading    bool
	refreshSeq uint64
}

// NewStore creates a cart store. notifier and logger may be nil.
func NewStore(api API, notifier notify.Notifier, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{api: api, notifier: notifier, log: logger}
}

// Bind subscribes the store to session identity changes: carts are
// per-account, so a new identity refreshes and an absent one clears.
func (s *Store) Bind(sessions *session.Store) func() {
	return sessions.Subscribe(func(u *domain.SessionUser) {
		if u == nil {
			s.clear()
			return
		}
		_ = s.Refresh(context.Background())
	})
}

// Cart returns a copy of the local cart, or nil when none is loaded.
func (s *Store) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.cart)
}

// Loading reports whether a cart fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Refresh replaces the local cart from the server, discarding stale responses
// from superseded refreshes.
func (s *Store) Refresh(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "cart.refresh", trace.WithAttributes(
		attribute.String("layer", "cart"),
	))
	defer span.End()

	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.loading = true
	s.mu.Unlock()

	c, err := s.api.GetCart(ctx)

	s.mu.Lock()
	current := seq == s.refreshSeq
	if current {
		s.loading = false
		if err == nil {
			s.cart = c
		}
	}
	s.mu.Unlock()

	if err != nil {
		observability.RecordError(ctx, err)
		// Superseded refreshes fail silently; their outcome no longer matters.
		if current {
			s.notifier.Error("Cart", domain.ErrorMessage(err, genericFailure))
		}
		return err
	}
	return nil
}

// AddItem puts a product in the cart, then refreshes to pick up the
// server-assigned line id and merged quantity.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) error {
	ctx, span := observability.StartSpan(ctx, "cart.add_item", trace.WithAttributes(
		attribute.String("layer", "cart"),
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	if err := s.api.AddCartItem(ctx, productID, quantity); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Cart", domain.ErrorMessage(err, genericFailure))
		return err
	}

	_ = s.Refresh(ctx)
	s.notifier.Success("Added to Cart", "The item is in your cart")
	return nil
}

// UpdateQuantity optimistically sets a line's quantity, then persists it. The
// patch is not rolled back on failure; the next refresh reconciles.
func (s *Store) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	ctx, span := observability.StartSpan(ctx, "cart.update_quantity", trace.WithAttributes(
		attribute.String("layer", "cart"),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	s.patch(func(c *domain.Cart) {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				break
			}
		}
	})

	if err := s.api.UpdateCartItem(ctx, itemID, quantity); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Cart", domain.ErrorMessage(err, genericFailure))
		return err
	}
	return nil
}

// RemoveItem optimistically drops a line by id, then persists the removal.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	ctx, span := observability.StartSpan(ctx, "cart.remove_item", trace.WithAttributes(
		attribute.String("layer", "cart"),
		attribute.Int64("item.id", itemID),
	))
	defer span.End()

	s.patch(func(c *domain.Cart) {
		kept := c.Items[:0]
		for _, item := range c.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		c.Items = kept
	})

	if err := s.api.RemoveCartItem(ctx, itemID); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Cart", domain.ErrorMessage(err, genericFailure))
		return err
	}

	s.notifier.Success("Removed from Cart", "The item has been removed")
	return nil
}

// Clear empties the cart locally and server-side.
func (s *Store) Clear(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "cart.clear", trace.WithAttributes(
		attribute.String("layer", "cart"),
	))
	defer span.End()

	s.patch(func(c *domain.Cart) {
		c.Items = nil
	})

	if err := s.api.ClearCart(ctx); err != nil {
		observability.RecordError(ctx, err)
		s.notifier.Error("Cart", domain.ErrorMessage(err, genericFailure))
		return err
	}
	return nil
}

// Subtotal computes the local cart's item total.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return 0
	}
	var total float64
	for _, item := range s.cart.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

func (s *Store) clear() {
	s.mu.Lock()
	s.refreshSeq++
	s.loading = false
	s.cart = nil
	s.mu.Unlock()
}

func (s *Store) patch(fn func(*domain.Cart)) {
	s.mu.Lock()
	if s.cart != nil {
		fn(s.cart)
	}
	s.mu.Unlock()
}

func copyCart(c *domain.Cart) *domain.Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp
}
