package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store aggregates the repositories and scopes them to one transaction.
// Multi-step mutations (reserve + materialize + clear cart, cancel +
// restore + refund-mark, callback verify + materialize/restore) run inside
// Transaction so partial application is never observable.
type Store interface {
	Orders() OrderRepository
	Products() ProductRepository
	Carts() CartRepository
	PendingCheckouts() PendingCheckoutRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on a *gorm.DB handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository                     { return NewGormOrderRepository(s.db) }
func (s *GormStore) Products() ProductRepository                 { return NewGormProductRepository(s.db) }
func (s *GormStore) Carts() CartRepository                       { return NewGormCartRepository(s.db) }
func (s *GormStore) PendingCheckouts() PendingCheckoutRepository { return NewGormPendingCheckoutRepository(s.db) }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
