package repository

import (
	"context"
	"errors"
	"time"

	"order-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings by status, owner and creation window.
type OrderFilter struct {
	Status    models.OrderStatus
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string, userID uuid.UUID) (*models.Order, error)
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, filter OrderFilter, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *GormOrderRepository) UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("tracking_number = ? AND user_id = ?", trackingNumber, userID).
		First(&order).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	uid := userID
	filter.UserID = &uid
	return r.findPage(ctx, filter, page, limit)
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	return r.findPage(ctx, filter, page, limit)
}

func (r *GormOrderRepository) findPage(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("order_status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("OrderItems").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
