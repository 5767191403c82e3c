package types

import "time"

// OrderStatus is the backend's order lifecycle state.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderAccepted       OrderStatus = "accepted"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Address is a delivery destination.
type Address struct {
	Line1     string  `json:"line1"`
	Line2     string  `json:"line2,omitempty"`
	City      string  `json:"city"`
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lng,omitempty"`
}

// PaymentMethod is the checkout payment selection.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

// OrderItem is one priced line of a placed order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice Paise  `json:"unitPrice"`
}

// Order is the backend's order record, returned from placement and from
// history/partner listings.
type Order struct {
	ID            string        `json:"_id"`
	Items         []OrderItem   `json:"items"`
	Subtotal      Paise         `json:"subtotal"`
	Discount      Paise         `json:"discount"`
	DeliveryFee   Paise         `json:"deliveryFee"`
	Total         Paise         `json:"total"`
	CouponCode    string        `json:"couponCode,omitempty"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        OrderStatus   `json:"status"`
	PartnerID     string        `json:"partnerId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Role distinguishes the three account types the client serves.
type Role string

const (
	RoleConsumer Role = "consumer"
	RolePartner  Role = "delivery_partner"
	RoleAdmin    Role = "admin"
)

// Profile is the identity record persisted alongside the auth token.
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}
