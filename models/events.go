package models

import "time"

// Order event types published to Kafka (and mirrored to SNS, best-effort).
const (
	EventOrderCreated         = "order_created"
	EventOrderStatusChanged   = "order_status_changed"
	EventPaymentStatusChanged = "payment_status_changed"
	EventOrderCancelled       = "order_cancelled"
	EventPaymentFailed        = "payment_failed"
)

// OrderEvent is the envelope emitted on order lifecycle transitions.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount,omitempty"`
	OrderStatus   string    `json:"order_status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
