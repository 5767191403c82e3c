// Package types holds the shared domain records exchanged with the delivery
// backend and passed between the stores and the UI layer.
package types

import "fmt"

// Paise is a money amount in the smallest currency unit. All arithmetic on
// prices happens in integer paise so line totals never accumulate float
// drift.
type Paise int64

// Rupees formats the amount for display.
func (p Paise) Rupees() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, v/100, v%100)
}

// Product is the catalog record as served by the backend. The cart keeps an
// immutable copy of this at add-time so price changes upstream never rewrite
// an existing line.
type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	ImageURL    string `json:"image,omitempty"`
	Unit        string `json:"unit,omitempty"` // e.g. "500 g", "1 L"
	Price       Paise  `json:"price"`
	MRP         Paise  `json:"mrp,omitempty"`
	InStock     bool   `json:"inStock"`
	MaxQuantity int    `json:"maxQuantity"` // per-order cap; 0 means backend default
}

// EffectiveMaxQuantity resolves the per-order cap, falling back to the
// backend's documented default when the field is absent.
func (p Product) EffectiveMaxQuantity() int {
	if p.MaxQuantity <= 0 {
		return DefaultMaxQuantity
	}
	return p.MaxQuantity
}

// DefaultMaxQuantity applies when a product record carries no cap.
const DefaultMaxQuantity = 10

// Category groups products in the storefront.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	ImageURL string `json:"image,omitempty"`
}

// Coupon is the validated discount returned by the backend. DiscountValue is
// already resolved to an absolute amount for the cart subtotal it was
// validated against.
type Coupon struct {
	Code          string `json:"code"`
	DiscountValue Paise  `json:"discountValue"`
	MinSubtotal   Paise  `json:"minSubtotal,omitempty"`
}
