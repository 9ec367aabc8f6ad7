package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"order-service/models"
	"order-service/repository"

	"github.com/google/uuid"
)

// mockStore is an in-memory repository.Store. Transaction serializes all
// mutations behind one mutex and rolls the state back on error, which is
// enough to exercise the same invariants the real store enforces.
type mockStore struct {
	mu    sync.Mutex
	state mockState
}

type mockState struct {
	Products  map[uuid.UUID]*models.Product
	Carts     map[uuid.UUID]*models.Cart
	Orders    map[uuid.UUID]*models.Order
	Checkouts map[string]*models.PendingCheckout
}

func newMockStore() *mockStore {
	return &mockStore{
		state: mockState{
			Products:  make(map[uuid.UUID]*models.Product),
			Carts:     make(map[uuid.UUID]*models.Cart),
			Orders:    make(map[uuid.UUID]*models.Order),
			Checkouts: make(map[string]*models.PendingCheckout),
		},
	}
}

func (s *mockStore) Orders() repository.OrderRepository                     { return &mockOrderRepo{s} }
func (s *mockStore) Products() repository.ProductRepository                 { return &mockProductRepo{s} }
func (s *mockStore) Carts() repository.CartRepository                       { return &mockCartRepo{s} }
func (s *mockStore) PendingCheckouts() repository.PendingCheckoutRepository { return &mockCheckoutRepo{s} }

func (s *mockStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(s); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *mockStore) snapshot() mockState {
	data, err := json.Marshal(s.state)
	if err != nil {
		panic(err)
	}
	var copied mockState
	if err := json.Unmarshal(data, &copied); err != nil {
		panic(err)
	}
	return copied
}

func (s *mockStore) addProduct(p *models.Product) *models.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Variations {
		if p.Variations[i].ID == uuid.Nil {
			p.Variations[i].ID = uuid.New()
		}
		p.Variations[i].ProductID = p.ID
	}
	s.state.Products[p.ID] = p
	return p
}

func (s *mockStore) addCart(userID uuid.UUID, items ...models.CartItem) *models.Cart {
	cart := &models.Cart{ID: uuid.New(), UserID: userID, Items: items}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
	}
	s.state.Carts[userID] = cart
	return cart
}

func (s *mockStore) productStock(productID uuid.UUID, variationID *uuid.UUID) int {
	p := s.state.Products[productID]
	if p == nil {
		return -1
	}
	if variationID != nil {
		for i := range p.Variations {
			if p.Variations[i].ID == *variationID {
				return p.Variations[i].Stock
			}
		}
		return -1
	}
	return p.Stock
}

func clone[T any](v *T) *T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

// --- orders ---

type mockOrderRepo struct{ s *mockStore }

func (r *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for _, existing := range r.s.state.Orders {
		if existing.TrackingNumber == order.TrackingNumber {
			return fmt.Errorf("duplicate key value violates unique constraint (23505)")
		}
	}
	for i := range order.OrderItems {
		if order.OrderItems[i].ID == uuid.Nil {
			order.OrderItems[i].ID = uuid.New()
		}
		order.OrderItems[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	r.s.state.Orders[order.ID] = clone(order)
	return nil
}

func (r *mockOrderRepo) Save(_ context.Context, order *models.Order) error {
	if _, ok := r.s.state.Orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.state.Orders[order.ID] = clone(order)
	return nil
}

func (r *mockOrderRepo) UpdateFields(_ context.Context, orderID uuid.UUID, updates map[string]interface{}) error {
	order, ok := r.s.state.Orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := updates["tracking_number"]; ok {
		order.TrackingNumber = v.(string)
	}
	return nil
}

func (r *mockOrderRepo) FindByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := r.s.state.Orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(order), nil
}

func (r *mockOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, ok := r.s.state.Orders[orderID]
	if !ok || order.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return clone(order), nil
}

func (r *mockOrderRepo) FindByTrackingNumber(_ context.Context, trackingNumber string, userID uuid.UUID) (*models.Order, error) {
	for _, order := range r.s.state.Orders {
		if order.TrackingNumber == trackingNumber && order.UserID == userID {
			return clone(order), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockOrderRepo) TrackingNumberExists(_ context.Context, trackingNumber string) (bool, error) {
	for _, order := range r.s.state.Orders {
		if order.TrackingNumber == trackingNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	uid := userID
	filter.UserID = &uid
	return r.FindAll(ctx, filter, page, limit)
}

func (r *mockOrderRepo) FindAll(_ context.Context, filter repository.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var matched []models.Order
	for _, order := range r.s.state.Orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && order.OrderStatus != filter.Status {
			continue
		}
		if filter.StartDate != nil && order.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && order.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, *clone(order))
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- products ---

type mockProductRepo struct{ s *mockStore }

func (r *mockProductRepo) FindByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return r.FindByIDForUpdate(ctx, productID)
}

func (r *mockProductRepo) FindByIDForUpdate(_ context.Context, productID uuid.UUID) (*models.Product, error) {
	p, ok := r.s.state.Products[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *mockProductRepo) DecrementStock(_ context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error {
	p, ok := r.s.state.Products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	if variationID != nil {
		for i := range p.Variations {
			if p.Variations[i].ID == *variationID {
				if p.Variations[i].Stock < quantity {
					return repository.ErrInsufficientStock
				}
				p.Variations[i].Stock -= quantity
				return nil
			}
		}
		return repository.ErrNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (r *mockProductRepo) IncrementStock(_ context.Context, productID uuid.UUID, variationID *uuid.UUID, quantity int) error {
	p, ok := r.s.state.Products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	if variationID != nil {
		for i := range p.Variations {
			if p.Variations[i].ID == *variationID {
				p.Variations[i].Stock += quantity
				return nil
			}
		}
		return repository.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

// --- carts ---

type mockCartRepo struct{ s *mockStore }

func (r *mockCartRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, ok := r.s.state.Carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(cart), nil
}

func (r *mockCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	for _, cart := range r.s.state.Carts {
		if cart.ID == cartID {
			cart.Items = nil
			return nil
		}
	}
	return nil
}

// --- pending checkouts ---

type mockCheckoutRepo struct{ s *mockStore }

func (r *mockCheckoutRepo) Create(_ context.Context, checkout *models.PendingCheckout) error {
	if checkout.ID == uuid.Nil {
		checkout.ID = uuid.New()
	}
	if _, exists := r.s.state.Checkouts[checkout.TempOrderNumber]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint (23505)")
	}
	if !strings.HasPrefix(checkout.TempOrderNumber, models.TempOrderPrefix) {
		return fmt.Errorf("bad temp order number %q", checkout.TempOrderNumber)
	}
	r.s.state.Checkouts[checkout.TempOrderNumber] = clone(checkout)
	return nil
}

func (r *mockCheckoutRepo) FindByTempOrderNumber(_ context.Context, tempOrderNumber string) (*models.PendingCheckout, error) {
	checkout, ok := r.s.state.Checkouts[tempOrderNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(checkout), nil
}

func (r *mockCheckoutRepo) Consume(_ context.Context, tempOrderNumber, toStatus string) (*models.PendingCheckout, error) {
	checkout, ok := r.s.state.Checkouts[tempOrderNumber]
	if !ok || checkout.Status != models.PendingCheckoutInitiated {
		return nil, repository.ErrNotFound
	}
	checkout.Status = toStatus
	return clone(checkout), nil
}

func (r *mockCheckoutRepo) LinkOrder(_ context.Context, tempOrderNumber string, orderID uuid.UUID) error {
	checkout, ok := r.s.state.Checkouts[tempOrderNumber]
	if !ok {
		return repository.ErrNotFound
	}
	id := orderID
	checkout.OrderID = &id
	return nil
}
