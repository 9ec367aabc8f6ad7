package repository

import (
	"context"

	"order-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	// FindByIDForUpdate loads the product and its variations under a row lock.
	FindByIDForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	// DecrementStock subtracts quantity from the product or variation stock.
	// Returns ErrInsufficientStock when the remaining stock does not cover it.
	DecrementStock(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variations").
		First(&product, "id = ?", productID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", productID).Error; err != nil {
		return nil, translateNotFound(err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Find(&product.Variations).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) DecrementStock(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error {
	var res *gorm.DB
	if variationID != nil {
		res = r.db.WithContext(ctx).Model(&models.Variation{}).
			Where("id = ? AND product_id = ? AND stock >= ?", *variationID, productID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	} else {
		res = r.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND stock >= ?", productID, quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.classifyDecrementMiss(ctx, productID, variationID)
	}
	return nil
}

func (r *GormProductRepository) IncrementStock(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error {
	var res *gorm.DB
	if variationID != nil {
		res = r.db.WithContext(ctx).Model(&models.Variation{}).
			Where("id = ? AND product_id = ?", *variationID, productID).
			UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	} else {
		res = r.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// classifyDecrementMiss distinguishes a missing row from an out of stock row.
func (r *GormProductRepository) classifyDecrementMiss(ctx context.Context, productID uuid.UUID, variationID *uuid.UUID) error {
	var count int64
	var err error
	if variationID != nil {
		err = r.db.WithContext(ctx).Model(&models.Variation{}).
			Where("id = ? AND product_id = ?", *variationID, productID).
			Count(&count).Error
	} else {
		err = r.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productID).
			Count(&count).Error
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}
