package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"order-service/models"
	"order-service/repository"

	"github.com/google/uuid"
)

const trackingNumberLength = 12
const trackingNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const trackingNumberAttempts = 6

// MaterializeParams carries everything needed to turn reserved checkout
// lines into a persisted order.
type MaterializeParams struct {
	UserID          uuid.UUID
	Lines           []models.CheckoutLine
	Totals          Totals
	ShippingAddress models.ShippingAddress
	PaymentMethod   models.PaymentMethod
	PaymentStatus   models.PaymentStatus
	PaymentDetails  *models.PaymentDetails
	CouponUsed      *models.CouponUsed
	Notes           string
	CustomerName    string
	CustomerEmail   string
}

// Materialize builds and persists the order inside the caller's transaction.
// Stock must already be reserved for the given lines.
func Materialize(ctx context.Context, tx repository.Store, params MaterializeParams) (*models.Order, error) {
	trackingNumber, err := uniqueTrackingNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(params.Lines))
	for _, line := range params.Lines {
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			VariationID:     line.VariationID,
			Quantity:        line.Quantity,
			Price:           line.Price,
			Subtotal:        line.Subtotal,
			ProductSnapshot: line.ProductSnapshot,
		})
	}

	now := time.Now()
	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          params.UserID,
		OrderItems:      items,
		TotalAmount:     params.Totals.TotalAmount,
		TaxAmount:       params.Totals.TaxAmount,
		ShippingFee:     params.Totals.ShippingFee,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		PaymentStatus:   params.PaymentStatus,
		PaymentDetails:  params.PaymentDetails,
		OrderStatus:     models.OrderStatusProcessing,
		TrackingNumber:  trackingNumber,
		CouponUsed:      params.CouponUsed,
		Notes:           params.Notes,
		CustomerName:    params.CustomerName,
		CustomerEmail:   params.CustomerEmail,
		ConfirmedAt:     &now,
	}

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// generateOrderNumber builds the customer-facing order reference,
// e.g. ORD-1735689600000-0042.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%04d", time.Now().UnixMilli(), randomInt(10000))
}

// generateTrackingNumber produces 12 characters from [A-Z0-9].
func generateTrackingNumber() string {
	b := make([]byte, trackingNumberLength)
	for i := range b {
		b[i] = trackingNumberAlphabet[randomInt(len(trackingNumberAlphabet))]
	}
	return string(b)
}

// uniqueTrackingNumber retries generation a bounded number of times rather
// than looping forever against a pathological collision streak.
func uniqueTrackingNumber(ctx context.Context, tx repository.Store) (string, error) {
	for i := 0; i < trackingNumberAttempts; i++ {
		candidate := generateTrackingNumber()
		exists, err := tx.Orders().TrackingNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique tracking number after %d attempts", trackingNumberAttempts)
}

func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken
		return int(time.Now().UnixNano() % int64(max))
	}
	return int(n.Int64())
}
