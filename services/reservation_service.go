package services

import (
	"context"
	"math"
	"net/http"

	"order-service/models"
	"order-service/repository"

	"go.uber.org/zap"
)

// Totals is the priced breakdown of a checkout.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	TaxAmount   float64 `json:"taxAmount"`
	ShippingFee float64 `json:"shippingFee"`
	TotalAmount float64 `json:"totalAmount"`
}

const (
	taxRate           = 0.10
	shippingFlatFee   = 5.0
	freeShippingAbove = 100.0
)

// ReservationService prices cart lines and atomically reserves their stock.
// All methods expect to run inside the caller's transaction so that a failed
// reservation rolls back every decrement made so far.
type ReservationService struct {
	logger *zap.Logger
}

func NewReservationService(logger *zap.Logger) *ReservationService {
	return &ReservationService{logger: logger}
}

// Reserve locks each product row, validates the lines and decrements stock.
// On shortfall it returns an OutOfStockError listing every failing line,
// never a partial reservation.
func (s *ReservationService) Reserve(ctx context.Context, tx repository.Store, items []models.CartItem) ([]models.CheckoutLine, error) {
	if len(items) == 0 {
		return nil, NewServiceError(http.StatusBadRequest, "Cart is empty")
	}

	lines := make([]models.CheckoutLine, 0, len(items))
	var shortfalls []OutOfStockItem

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, NewServiceError(http.StatusBadRequest, "Item quantity must be positive")
		}

		product, err := tx.Products().FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				return nil, NewServiceError(http.StatusNotFound, "Product not found: "+item.ProductID.String())
			}
			return nil, err
		}
		if !product.Active {
			return nil, NewServiceError(http.StatusBadRequest, "Product is no longer available: "+product.Name)
		}

		var variation *models.Variation
		if product.HasVariations {
			if item.VariationID == nil {
				return nil, NewServiceError(http.StatusBadRequest, "Variation required for product: "+product.Name)
			}
			variation = product.FindVariation(*item.VariationID)
			if variation == nil {
				return nil, NewServiceError(http.StatusNotFound, "Variation not found for product: "+product.Name)
			}
		} else if item.VariationID != nil {
			// stale cart line from before the product dropped its variations
			return nil, NewServiceError(http.StatusBadRequest, "Product has no variations: "+product.Name)
		}

		available := product.Stock
		if variation != nil {
			available = variation.Stock
		}
		if available < item.Quantity {
			oos := OutOfStockItem{
				ProductID: item.ProductID.String(),
				Name:      product.Name,
				Requested: item.Quantity,
				Available: available,
			}
			if item.VariationID != nil {
				oos.VariationID = item.VariationID.String()
			}
			shortfalls = append(shortfalls, oos)
			continue
		}

		price := product.EffectivePrice()
		if variation != nil {
			price = variation.EffectivePrice()
		}
		lines = append(lines, models.CheckoutLine{
			ProductID:       item.ProductID,
			VariationID:     item.VariationID,
			Quantity:        item.Quantity,
			Price:           price,
			Subtotal:        round2(price * float64(item.Quantity)),
			ProductSnapshot: product.Snapshot(variation),
		})
	}

	if len(shortfalls) > 0 {
		return nil, &OutOfStockError{Items: shortfalls}
	}

	for _, line := range lines {
		if err := tx.Products().DecrementStock(ctx, line.ProductID, line.VariationID, line.Quantity); err != nil {
			if err == repository.ErrInsufficientStock {
				// lost a race between the locked read and the decrement
				return nil, &OutOfStockError{Items: []OutOfStockItem{{
					ProductID: line.ProductID.String(),
					Name:      line.ProductSnapshot.Name,
					Requested: line.Quantity,
				}}}
			}
			return nil, err
		}
	}

	return lines, nil
}

// Restore returns reserved stock to the shelf, one line at a time.
func (s *ReservationService) Restore(ctx context.Context, tx repository.Store, lines []models.CheckoutLine) error {
	for _, line := range lines {
		if err := tx.Products().IncrementStock(ctx, line.ProductID, line.VariationID, line.Quantity); err != nil {
			if err == repository.ErrNotFound {
				s.logger.Warn("skipping stock restore for missing product",
					zap.String("product_id", line.ProductID.String()))
				continue
			}
			return err
		}
	}
	return nil
}

// RestoreOrderItems returns stock for a cancelled order's items.
func (s *ReservationService) RestoreOrderItems(ctx context.Context, tx repository.Store, items []models.OrderItem) error {
	lines := make([]models.CheckoutLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.CheckoutLine{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}
	return s.Restore(ctx, tx, lines)
}

// ComputeTotals prices the reserved lines. Tax is 10% of the subtotal and
// shipping is a flat fee waived at or above the free shipping threshold.
func ComputeTotals(lines []models.CheckoutLine) Totals {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Subtotal
	}
	subtotal = round2(subtotal)

	tax := round2(subtotal * taxRate)
	shipping := 0.0
	if subtotal < freeShippingAbove {
		shipping = shippingFlatFee
	}

	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		ShippingFee: shipping,
		TotalAmount: round2(subtotal + tax + shipping),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
