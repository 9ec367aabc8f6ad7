package repository

import (
	"context"

	"order-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingCheckoutRepository defines the interface for pending checkout data access
type PendingCheckoutRepository interface {
	Create(ctx context.Context, checkout *models.PendingCheckout) error
	FindByTempOrderNumber(ctx context.Context, tempOrderNumber string) (*models.PendingCheckout, error)
	// Consume transitions an initiated checkout to the given terminal status
	// and returns it. Only the first caller for a given temp order number
	// succeeds; later callers get ErrNotFound.
	Consume(ctx context.Context, tempOrderNumber, toStatus string) (*models.PendingCheckout, error)
	// LinkOrder records the order a completed checkout materialized into.
	LinkOrder(ctx context.Context, tempOrderNumber string, orderID uuid.UUID) error
}

// GormPendingCheckoutRepository implements PendingCheckoutRepository using GORM
type GormPendingCheckoutRepository struct {
	db *gorm.DB
}

func NewGormPendingCheckoutRepository(db *gorm.DB) PendingCheckoutRepository {
	return &GormPendingCheckoutRepository{db: db}
}

func (r *GormPendingCheckoutRepository) Create(ctx context.Context, checkout *models.PendingCheckout) error {
	return r.db.WithContext(ctx).Create(checkout).Error
}

func (r *GormPendingCheckoutRepository) FindByTempOrderNumber(ctx context.Context, tempOrderNumber string) (*models.PendingCheckout, error) {
	var checkout models.PendingCheckout
	if err := r.db.WithContext(ctx).
		First(&checkout, "temp_order_number = ?", tempOrderNumber).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &checkout, nil
}

func (r *GormPendingCheckoutRepository) Consume(ctx context.Context, tempOrderNumber, toStatus string) (*models.PendingCheckout, error) {
	var checkout models.PendingCheckout
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("temp_order_number = ? AND status = ?", tempOrderNumber, models.PendingCheckoutInitiated).
		First(&checkout).Error; err != nil {
		return nil, translateNotFound(err)
	}

	if err := r.db.WithContext(ctx).Model(&checkout).
		UpdateColumn("status", toStatus).Error; err != nil {
		return nil, err
	}
	checkout.Status = toStatus
	return &checkout, nil
}

func (r *GormPendingCheckoutRepository) LinkOrder(ctx context.Context, tempOrderNumber string, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.PendingCheckout{}).
		Where("temp_order_number = ?", tempOrderNumber).
		UpdateColumn("order_id", orderID).Error
}
