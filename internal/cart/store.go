// Package cart holds the in-memory cart state: line items keyed by product,
// derived totals, the optional coupon, and the sticky-bar visibility signal.
// Every mutation is synchronous; totals are recomputed from line-level math
// on each change and never stored independently of their inputs.
package cart

import (
	"context"
	"errors"
	"sync"

	"grocli/internal/config"
	"grocli/internal/logging"
	"grocli/internal/types"
)

// LineItem is one product entry with its chosen quantity and the price
// snapshot taken at add-time.
type LineItem struct {
	ProductID string
	Quantity  int
	UnitPrice types.Paise
	Product   types.Product
}

// LineTotal is the priced line amount.
func (li LineItem) LineTotal() types.Paise {
	return li.UnitPrice * types.Paise(li.Quantity)
}

// Totals is the derived cart arithmetic, recomputed on every mutation.
type Totals struct {
	Subtotal    types.Paise
	Discount    types.Paise
	DeliveryFee types.Paise
	Total       types.Paise

	// Units is the summed quantity across lines; Lines is the number of
	// distinct products. The visibility signal keys off Units.
	Units int
	Lines int
}

// CouponValidator prices a coupon against a subtotal. *api.Client satisfies
// this; tests plug in stubs.
type CouponValidator interface {
	ValidateCoupon(ctx context.Context, code string, subtotal types.Paise) (*types.Coupon, error)
}

// ErrNoValidator is returned by ApplyCoupon when no validator was wired.
var ErrNoValidator = errors.New("no coupon validator configured")

// Store is the cart. All methods are safe for concurrent use; the auto-hide
// timer callback runs off the UI loop.
type Store struct {
	mu        sync.Mutex
	policy    config.CartConfig
	validator CouponValidator

	order  []string // insertion order = display order
	items  map[string]*LineItem
	coupon *types.Coupon
	totals Totals

	onMutate []func(Totals)
}

// NewStore creates an empty cart with the given fee policy.
func NewStore(policy config.CartConfig, validator CouponValidator) *Store {
	return &Store{
		policy:    policy,
		validator: validator,
		items:     make(map[string]*LineItem),
	}
}

// OnMutate registers a hook invoked (outside the store lock) after every
// mutation with the fresh totals. The visibility signal hangs off this.
func (s *Store) OnMutate(fn func(Totals)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMutate = append(s.onMutate, fn)
}

// AddItem inserts or increments a line for the product. Out-of-stock
// products are a silent no-op. The resulting quantity is clamped to
// [1, maxQuantity].
func (s *Store) AddItem(product types.Product, quantity int) {
	if !product.InStock {
		logging.CartDebug("add %s skipped: out of stock", product.ID)
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	li, ok := s.items[product.ID]
	if !ok {
		li = &LineItem{
			ProductID: product.ID,
			UnitPrice: product.Price,
			Product:   product,
		}
		s.items[product.ID] = li
		s.order = append(s.order, product.ID)
	}
	li.Quantity = clamp(li.Quantity+quantity, 1, product.EffectiveMaxQuantity())
	qty := li.Quantity
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	logging.Cart("add %s qty=%d subtotal=%s", product.ID, qty, totals.Subtotal.Rupees())
	s.notify(totals)
}

// RemoveItem deletes the line entirely.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	if _, ok := s.items[productID]; !ok {
		s.mu.Unlock()
		return
	}
	s.deleteLocked(productID)
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	logging.Cart("remove %s", productID)
	s.notify(totals)
}

// SetQuantity sets the line quantity. A quantity <= 0 removes the line;
// anything above the product cap is clamped down.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}

	s.mu.Lock()
	li, ok := s.items[productID]
	if !ok {
		s.mu.Unlock()
		return
	}
	li.Quantity = clamp(quantity, 1, li.Product.EffectiveMaxQuantity())
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	s.notify(totals)
}

// ApplyCoupon validates the code against the current subtotal and, on
// success, applies the discount. On failure the cart is left untouched and
// the error surfaces to the caller.
func (s *Store) ApplyCoupon(ctx context.Context, code string) error {
	if s.validator == nil {
		return ErrNoValidator
	}

	s.mu.Lock()
	subtotal := s.totals.Subtotal
	s.mu.Unlock()

	// Validation happens outside the lock; the subtotal it priced against
	// is re-read on apply via recompute.
	coupon, err := s.validator.ValidateCoupon(ctx, code, subtotal)
	if err != nil {
		logging.CartDebug("coupon %s rejected: %v", code, err)
		return err
	}

	s.mu.Lock()
	s.coupon = coupon
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	logging.Cart("coupon %s applied discount=%s", code, totals.Discount.Rupees())
	s.notify(totals)
	return nil
}

// ClearCoupon removes any applied coupon.
func (s *Store) ClearCoupon() {
	s.mu.Lock()
	s.coupon = nil
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	s.notify(totals)
}

// Clear empties the cart and coupon. Used on logout and after checkout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]*LineItem)
	s.order = nil
	s.coupon = nil
	s.recompute()
	totals := s.totals
	s.mu.Unlock()

	logging.Cart("cleared")
	s.notify(totals)
}

// Items returns the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}

// Totals returns the current derived totals.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// AppliedCoupon returns the applied coupon code, or "" when none.
func (s *Store) AppliedCoupon() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coupon == nil {
		return ""
	}
	return s.coupon.Code
}

// OrderItems converts the cart lines into the checkout payload shape.
func (s *Store) OrderItems() []types.OrderItem {
	items := s.Items()
	out := make([]types.OrderItem, 0, len(items))
	for _, li := range items {
		out = append(out, types.OrderItem{
			ProductID: li.ProductID,
			Name:      li.Product.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}
	return out
}

// recompute rebuilds the totals from line-level math. Caller holds the lock.
func (s *Store) recompute() {
	t := Totals{Lines: len(s.order)}
	for _, id := range s.order {
		li := s.items[id]
		t.Subtotal += li.LineTotal()
		t.Units += li.Quantity
	}

	if s.coupon != nil && t.Subtotal >= s.coupon.MinSubtotal {
		t.Discount = s.coupon.DiscountValue
		if t.Discount > t.Subtotal {
			t.Discount = t.Subtotal
		}
	}

	if t.Units > 0 {
		t.DeliveryFee = types.Paise(s.policy.DeliveryFeePaise)
		if s.policy.FreeDeliveryAbovePaise > 0 && t.Subtotal >= types.Paise(s.policy.FreeDeliveryAbovePaise) {
			t.DeliveryFee = 0
		}
	}

	t.Total = t.Subtotal - t.Discount + t.DeliveryFee
	s.totals = t
}

// deleteLocked removes a line preserving display order. Caller holds the lock.
func (s *Store) deleteLocked(productID string) {
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) notify(totals Totals) {
	s.mu.Lock()
	hooks := make([]func(Totals), len(s.onMutate))
	copy(hooks, s.onMutate)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(totals)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
