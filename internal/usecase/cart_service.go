package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/rs/zerolog"
)

// CartService guards the cart aggregate with the sign-in gate and the
// replace-cart confirmation. Mutations run one at a time, including while a
// confirmation is pending; reads never wait on a confirmation.
type CartService struct {
	kv        domain.KeyValueStore
	confirmer domain.Confirmer
	login     domain.LoginPrompter
	logger    zerolog.Logger

	opMu sync.Mutex   // serializes mutations
	mu   sync.RWMutex // guards cart
	cart *domain.Cart
}

// NewCartService creates an empty cart behind the given capabilities
func NewCartService(
	kv domain.KeyValueStore,
	confirmer domain.Confirmer,
	login domain.LoginPrompter,
	logger zerolog.Logger,
) *CartService {
	return &CartService{
		kv:        kv,
		confirmer: confirmer,
		login:     login,
		logger:    logger.With().Str("component", "cart").Logger(),
		cart:      domain.NewCart(),
	}
}

// AddToCart adds quantity of item. It returns ErrAuthRequired when nobody is
// signed in and ErrVendorMismatch when the user declines replacing a cart
// that holds another vendor's items.
func (s *CartService) AddToCart(ctx context.Context, item domain.Product, quantity int) error {
	if err := domain.ValidateCartItem(item, quantity); err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.authenticated(ctx) {
		if s.login != nil {
			s.login.PromptLogin(ctx)
		}
		return domain.ErrAuthRequired
	}

	s.mu.RLock()
	conflict := s.cart.ConflictsWith(item.VendorID)
	current := s.cart.Vendor()
	s.mu.RUnlock()

	if !conflict {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cart.Add(item, quantity)
	}

	if !s.confirm(ctx, replacePrompt(current, item)) {
		s.logger.Debug().Str("item_id", item.ID).Str("vendor_id", item.VendorID).Msg("cart replacement declined")
		return domain.ErrVendorMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Replace(item, quantity); err != nil {
		return err
	}
	s.logger.Info().Str("old_vendor", current.ID).Str("new_vendor", item.VendorID).Msg("cart replaced")
	return nil
}

// RemoveFromCart deletes the line with id; absent ids are ignored
func (s *CartService) RemoveFromCart(id string) {
	s.mutate(func(c *domain.Cart) { c.Remove(id) })
}

// UpdateQuantity sets a line's quantity exactly; n < 1 removes the line
func (s *CartService) UpdateQuantity(id string, n int) {
	s.mutate(func(c *domain.Cart) { c.SetQuantity(id, n) })
}

// ClearCart empties the cart
func (s *CartService) ClearCart() {
	s.mutate(func(c *domain.Cart) { c.Clear() })
}

// GetCartTotal is the sum of price * quantity
func (s *CartService) GetCartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

// GetTotalAmount is an alias of GetCartTotal
func (s *CartService) GetTotalAmount() float64 {
	return s.GetCartTotal()
}

// GetItemCount is the sum of line quantities
func (s *CartService) GetItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

// GetTotalQuantity is an alias of GetItemCount
func (s *CartService) GetTotalQuantity() int {
	return s.GetItemCount()
}

// GetQuantity returns the quantity of id, or 0
func (s *CartService) GetQuantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Quantity(id)
}

// GetVendorDetails returns the cart's vendor, or nil when empty
func (s *CartService) GetVendorDetails() *domain.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Vendor()
}

// GetCartByVendor groups lines by vendor in first-seen order
func (s *CartService) GetCartByVendor() []domain.VendorGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ByVendor()
}

// Items returns a snapshot of the lines
func (s *CartService) Items() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Lines()
}

// Snapshot returns the lines, vendor, groups and totals read under one lock
func (s *CartService) Snapshot() domain.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Snapshot()
}

func (s *CartService) mutate(fn func(*domain.Cart)) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
}

// authenticated requires isLoggedIn == "true" and a non-empty token
func (s *CartService) authenticated(ctx context.Context) bool {
	values, err := s.kv.MultiGet(ctx, []string{domain.KeyIsLoggedIn, domain.KeyToken})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read auth state")
		return false
	}
	return values[domain.KeyIsLoggedIn] == "true" && values[domain.KeyToken] != ""
}

func (s *CartService) confirm(ctx context.Context, prompt domain.Prompt) bool {
	if s.confirmer == nil {
		return false
	}
	return s.confirmer.Confirm(ctx, prompt)
}

func replacePrompt(current *domain.Vendor, item domain.Product) domain.Prompt {
	from := "another vendor"
	if current != nil && current.Name != "" {
		from = current.Name
	}
	to := item.VendorName
	if to == "" {
		to = "this vendor"
	}
	return domain.Prompt{
		Title:   "Replace cart?",
		Message: fmt.Sprintf("Your cart contains items from %s. Clear it and add %s from %s instead?", from, item.Name, to),
	}
}
