package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PendingCheckoutInitiated = "initiated"
	PendingCheckoutCompleted = "completed"
	PendingCheckoutFailed    = "failed"
)

// TempOrderPrefix distinguishes gateway transaction ids that refer to a
// not-yet-materialized order.
const TempOrderPrefix = "TEMP-"

// CheckoutLine is one reserved cart line frozen at payment-initiation time.
// The ONLINE callback materializes the order from these lines, never from
// the live cart, so mid-redirect cart edits cannot change what was paid for.
type CheckoutLine struct {
	ProductID       uuid.UUID       `json:"product_id"`
	VariationID     *uuid.UUID      `json:"variation_id,omitempty"`
	Quantity        int             `json:"quantity"`
	Price           float64         `json:"price"`
	Subtotal        float64         `json:"subtotal"`
	ProductSnapshot ProductSnapshot `json:"product_snapshot"`
}

// PendingCheckout is the server-side record of an initiated online payment.
// It is keyed by the temporary transaction id handed to the gateway and is
// consumed at most once by the callback.
type PendingCheckout struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TempOrderNumber string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"temp_order_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Items           []CheckoutLine  `gorm:"serializer:json;type:jsonb;not null" json:"items"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	TaxAmount       float64         `gorm:"not null" json:"tax_amount"`
	ShippingFee     float64         `gorm:"not null" json:"shipping_fee"`
	TotalAmount     float64         `gorm:"not null" json:"total_amount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	CustomerName    string          `gorm:"type:varchar(120)" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customer_email"`
	Notes           string          `gorm:"type:varchar(500)" json:"notes,omitempty"`
	CouponCode      string          `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`
	Status          string          `gorm:"type:varchar(20);not null;default:'initiated'" json:"status"`
	OrderID         *uuid.UUID      `gorm:"type:uuid" json:"order_id,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
