package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusInitiated PaymentStatus = "Initiated"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
	OrderStatusReturned   OrderStatus = "Returned"
)

// ValidOrderStatuses preserves the order used in validation error messages.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

var ValidPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusInitiated,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	for _, v := range ValidPaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type CancelReason string

const (
	CancelReasonChangedMind  CancelReason = "Changed my mind"
	CancelReasonBetterPrice  CancelReason = "Found better price elsewhere"
	CancelReasonSlowShipping CancelReason = "Shipping takes too long"
	CancelReasonMistake      CancelReason = "Ordered by mistake"
	CancelReasonNotRequired  CancelReason = "Product not required anymore"
	CancelReasonOther        CancelReason = "Other"
)

var ValidCancelReasons = []CancelReason{
	CancelReasonChangedMind,
	CancelReasonBetterPrice,
	CancelReasonSlowShipping,
	CancelReasonMistake,
	CancelReasonNotRequired,
	CancelReasonOther,
}

func (r CancelReason) Valid() bool {
	for _, v := range ValidCancelReasons {
		if r == v {
			return true
		}
	}
	return false
}

// ShippingAddress is snapshotted onto the order at checkout time.
type ShippingAddress struct {
	FullName     string `gorm:"type:varchar(120)" json:"fullName"`
	AddressLine1 string `gorm:"type:varchar(255)" json:"addressLine1"`
	AddressLine2 string `gorm:"type:varchar(255)" json:"addressLine2,omitempty"`
	City         string `gorm:"type:varchar(80)" json:"city"`
	State        string `gorm:"type:varchar(80)" json:"state"`
	PostalCode   string `gorm:"type:varchar(20)" json:"postalCode"`
	Country      string `gorm:"type:varchar(80);default:'IN'" json:"country,omitempty"`
	Phone        string `gorm:"type:varchar(20)" json:"phone,omitempty"`
}

// MissingFields returns the required address fields that are empty.
func (a ShippingAddress) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ProductSnapshot freezes the product attributes an order line was sold
// under. Later catalog edits must not alter historical orders.
type ProductSnapshot struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	Images        []string `json:"images,omitempty"`
	VariationName string   `json:"variation_name,omitempty"`
}

type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	VariationID     *uuid.UUID      `gorm:"type:uuid" json:"variation_id,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           float64         `gorm:"not null" json:"price"`
	Subtotal        float64         `gorm:"not null" json:"subtotal"`
	ProductSnapshot ProductSnapshot `gorm:"serializer:json;type:jsonb" json:"product_snapshot"`
}

// PaymentDetails records how an ONLINE order was settled at the gateway.
type PaymentDetails struct {
	Gateway       string `gorm:"type:varchar(40)" json:"gateway,omitempty"`
	TransactionID string `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	PaymentMode   string `gorm:"type:varchar(40)" json:"payment_mode,omitempty"`
}

type CancelDetails struct {
	Reason      CancelReason `gorm:"type:varchar(64)" json:"reason"`
	Notes       string       `gorm:"type:varchar(500)" json:"notes,omitempty"`
	CancelledAt time.Time    `json:"cancelledAt"`
}

type CouponUsed struct {
	Code     string  `gorm:"type:varchar(64)" json:"code,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderNumber"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_user_created" json:"user_id"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
	TotalAmount     float64         `gorm:"not null" json:"totalAmount"`
	TaxAmount       float64         `gorm:"not null;default:0" json:"taxAmount"`
	ShippingFee     float64         `gorm:"not null;default:0" json:"shippingFee"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"paymentStatus"`
	PaymentDetails  *PaymentDetails `gorm:"embedded;embeddedPrefix:payment_" json:"paymentMethodDetails,omitempty"`
	OrderStatus     OrderStatus     `gorm:"type:varchar(20);not null;default:'Processing';index" json:"orderStatus"`
	TrackingNumber  string          `gorm:"type:varchar(12);uniqueIndex" json:"trackingNumber"`
	DeliveryDate    *time.Time      `json:"deliveryDate,omitempty"`
	Notes           string          `gorm:"type:varchar(500)" json:"notes,omitempty"`
	CouponUsed      *CouponUsed     `gorm:"embedded;embeddedPrefix:coupon_" json:"couponUsed,omitempty"`
	CancelDetails   *CancelDetails  `gorm:"embedded;embeddedPrefix:cancel_" json:"cancelDetails,omitempty"`
	CustomerName    string          `gorm:"type:varchar(120)" json:"-"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"-"`
	ConfirmedAt     *time.Time      `json:"confirmedAt,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index:idx_orders_user_created" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Cancellable reports whether the order may still be cancelled. Terminal
// states (Delivered, Cancelled, Returned) reject cancellation.
func (o *Order) Cancellable() bool {
	switch o.OrderStatus {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return false
	}
	return true
}
