package config

import (
	"fmt"
	"time"
)

// CartConfig holds cart policy and sticky-bar behavior.
type CartConfig struct {
	// DeliveryFeePaise is the flat delivery fee.
	DeliveryFeePaise int64 `yaml:"delivery_fee_paise"`

	// FreeDeliveryAbovePaise waives the fee once the subtotal reaches this
	// amount. 0 disables free delivery.
	FreeDeliveryAbovePaise int64 `yaml:"free_delivery_above_paise"`

	// AutoHide is how long the sticky cart bar stays up after the last
	// qualifying cart mutation.
	AutoHide string `yaml:"auto_hide"`

	// FlyDuration is the fly-to-cart transfer animation length.
	FlyDuration string `yaml:"fly_duration"`

	// TargetCoalescePx ignores cart-icon rectangle re-registrations that
	// moved less than this many cells/pixels, breaking layout-measurement
	// feedback loops.
	TargetCoalescePx float64 `yaml:"target_coalesce_px"`
}

// DefaultCartConfig returns the stock cart policy.
func DefaultCartConfig() CartConfig {
	return CartConfig{
		DeliveryFeePaise:       2500, // ₹25
		FreeDeliveryAbovePaise: 49900,
		AutoHide:               "3s",
		FlyDuration:            "800ms",
		TargetCoalescePx:       2.0,
	}
}

// GetAutoHide returns the sticky bar auto-hide window as a duration.
func (c CartConfig) GetAutoHide() time.Duration {
	d, err := time.ParseDuration(c.AutoHide)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// GetFlyDuration returns the transfer animation duration.
func (c CartConfig) GetFlyDuration() time.Duration {
	d, err := time.ParseDuration(c.FlyDuration)
	if err != nil || d <= 0 {
		return 800 * time.Millisecond
	}
	return d
}

// Validate validates the cart policy.
func (c CartConfig) Validate() error {
	if c.DeliveryFeePaise < 0 {
		return fmt.Errorf("cart.delivery_fee_paise must be >= 0, got %d", c.DeliveryFeePaise)
	}
	if c.FreeDeliveryAbovePaise < 0 {
		return fmt.Errorf("cart.free_delivery_above_paise must be >= 0, got %d", c.FreeDeliveryAbovePaise)
	}
	return nil
}
