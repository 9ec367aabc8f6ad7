package models

import (
	"time"

	"github.com/google/uuid"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" binding:"required"`
	CouponCode      string          `json:"couponCode,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus  OrderStatus `json:"orderStatus" binding:"required"`
	DeliveryDate *time.Time  `json:"deliveryDate,omitempty"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required"`
}

type CancelOrderRequest struct {
	Reason CancelReason `json:"reason" binding:"required"`
	Notes  string       `json:"notes,omitempty"`
}

// UserIdentity carries the gateway-authenticated caller's claims, injected
// by the API gateway as X-User-* headers.
type UserIdentity struct {
	UserID uuid.UUID
	Role   string
	Name   string
	Email  string
	Phone  string
}
