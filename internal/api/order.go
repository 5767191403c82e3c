package api

import (
	"context"
	"net/url"

	"grocli/internal/logging"
	"grocli/internal/types"
)

// ValidateCoupon asks the backend to price a coupon against the current
// subtotal. A rejected code comes back as a *ValidationError.
func (c *Client) ValidateCoupon(ctx context.Context, code string, subtotal types.Paise) (*types.Coupon, error) {
	body := map[string]interface{}{
		"code":     code,
		"subtotal": subtotal,
	}
	var coupon types.Coupon
	if err := c.do(ctx, "POST", "/api/coupons/validate", body, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	Items         []types.OrderItem   `json:"items"`
	CouponCode    string              `json:"couponCode,omitempty"`
	Address       types.Address       `json:"address"`
	PaymentMethod types.PaymentMethod `json:"paymentMethod"`
}

// PlaceOrder submits the cart for fulfilment.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, "POST", "/api/orders", req, &order); err != nil {
		return nil, err
	}
	logging.Order("placed order %s total=%s", order.ID, order.Total.Rupees())
	return &order, nil
}

// OrderHistory fetches the caller's past orders, newest first.
func (c *Client) OrderHistory(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, "GET", "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches a single order, used when a push notification for an
// order update is tapped.
func (c *Client) GetOrder(ctx context.Context, id string) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, "GET", "/api/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// AssignedOrders lists orders assigned to the logged-in delivery partner.
func (c *Client) AssignedOrders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, "GET", "/api/partner/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus advances an assigned order through the delivery
// lifecycle (partner portal).
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status types.OrderStatus) (*types.Order, error) {
	body := map[string]string{"status": string(status)}
	var order types.Order
	path := "/api/partner/orders/" + url.PathEscape(orderID) + "/status"
	if err := c.do(ctx, "PATCH", path, body, &order); err != nil {
		return nil, err
	}
	logging.Order("order %s -> %s", orderID, status)
	return &order, nil
}
