package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"order-service/models"
	"order-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shippedDeliveryWindow is the default delivery estimate applied when an
// order is marked shipped without an explicit date.
const shippedDeliveryWindow = 72 * time.Hour

type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

// CreateOrderResult is either a confirmed order (COD) or a payment
// redirect (ONLINE), never both.
type CreateOrderResult struct {
	Order   *models.Order      `json:"order,omitempty"`
	Payment *PaymentInitiation `json:"payment,omitempty"`
}

// OrderService orchestrates checkout and the order lifecycle. Every
// multi-step mutation runs in one transaction so stock, cart and order
// state never diverge.
type OrderService struct {
	store         repository.Store
	reservations  *ReservationService
	payments      *PaymentService
	notifications *NotificationService
	events        *EventEmitter
	logger        *zap.Logger
}

func NewOrderService(
	store repository.Store,
	reservations *ReservationService,
	payments *PaymentService,
	notifications *NotificationService,
	events *EventEmitter,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		store:         store,
		reservations:  reservations,
		payments:      payments,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// CreateOrder checks out the caller's cart. COD orders are confirmed
// immediately; ONLINE orders reserve stock and hand back a payment URL,
// with materialization deferred to the gateway callback.
func (s *OrderService) CreateOrder(ctx context.Context, identity models.UserIdentity, req *models.CreateOrderRequest) (*CreateOrderResult, *ServiceError) {
	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodOnline {
		return nil, NewServiceError(http.StatusBadRequest, "Payment method must be COD or ONLINE")
	}
	if missing := req.ShippingAddress.MissingFields(); len(missing) > 0 {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Shipping address is incomplete",
			Details:    missing,
		}
	}

	var result CreateOrderResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().FindByUserID(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewServiceError(http.StatusBadRequest, "Cart is empty")
			}
			return err
		}
		if len(cart.Items) == 0 {
			return NewServiceError(http.StatusBadRequest, "Cart is empty")
		}

		lines, err := s.reservations.Reserve(ctx, tx, cart.Items)
		if err != nil {
			return err
		}
		totals := ComputeTotals(lines)

		if req.PaymentMethod == models.PaymentMethodOnline {
			initiation, err := s.payments.Initiate(ctx, tx, identity, req, lines, totals)
			if err != nil {
				return err
			}
			result.Payment = initiation
			return nil
		}

		order, err := Materialize(ctx, tx, MaterializeParams{
			UserID:          identity.UserID,
			Lines:           lines,
			Totals:          totals,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   models.PaymentMethodCOD,
			PaymentStatus:   models.PaymentStatusPending,
			CouponUsed:      couponFromCode(req.CouponCode),
			Notes:           req.Notes,
			CustomerName:    identity.Name,
			CustomerEmail:   identity.Email,
		})
		if err != nil {
			return err
		}
		if err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return err
		}
		result.Order = order
		return nil
	})
	if err != nil {
		return nil, s.toServiceError(err)
	}

	if result.Order != nil {
		s.events.Emit(ctx, orderEvent(models.EventOrderCreated, result.Order))
		s.notifications.OrderConfirmed(ctx, result.Order)
		s.logger.Info("order created",
			zap.String("order_number", result.Order.OrderNumber),
			zap.String("user_id", identity.UserID.String()),
			zap.Float64("total", result.Order.TotalAmount))
	}
	return &result, nil
}

// GetOrderByID returns one order, scoped to the owner unless asAdmin.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID, asAdmin bool) (*models.Order, *ServiceError) {
	var order *models.Order
	var err error
	if asAdmin {
		order, err = s.store.Orders().FindByID(ctx, orderID)
	} else {
		order, err = s.store.Orders().FindByIDAndUserID(ctx, orderID, userID)
	}
	if err != nil {
		return nil, s.toServiceError(err)
	}
	return order, nil
}

// GetOrderByTracking looks an order up by its tracking number, owner-scoped.
func (s *OrderService) GetOrderByTracking(ctx context.Context, userID uuid.UUID, trackingNumber string) (*models.Order, *ServiceError) {
	order, err := s.store.Orders().FindByTrackingNumber(ctx, trackingNumber, userID)
	if err != nil {
		return nil, s.toServiceError(err)
	}
	return order, nil
}

// GetUserOrders lists the caller's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, filter repository.OrderFilter, page, limit int) (*OrderResponse, *ServiceError) {
	page, limit = normalizePagination(page, limit)
	orders, total, err := s.store.Orders().FindByUserID(ctx, userID, filter, page, limit)
	if err != nil {
		return nil, s.toServiceError(err)
	}
	return buildOrderResponse(orders, total, page, limit), nil
}

// GetAllOrders lists every order, admin only.
func (s *OrderService) GetAllOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) (*OrderResponse, *ServiceError) {
	page, limit = normalizePagination(page, limit)
	orders, total, err := s.store.Orders().FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, s.toServiceError(err)
	}
	return buildOrderResponse(orders, total, page, limit), nil
}

// UpdateOrderStatus moves an order along the fulfilment lifecycle, admin
// only. Cancellation goes through CancelOrder so stock is restored.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, *ServiceError) {
	if !req.OrderStatus.Valid() {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid order status",
			Details:    models.ValidOrderStatuses,
		}
	}
	if req.OrderStatus == models.OrderStatusCancelled {
		return nil, NewServiceError(http.StatusBadRequest, "Use the cancel endpoint to cancel an order")
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.OrderStatus == models.OrderStatusCancelled {
			return NewServiceError(http.StatusConflict, "Cancelled orders cannot change status")
		}
		if order.OrderStatus == req.OrderStatus {
			return nil
		}

		now := time.Now()
		order.OrderStatus = req.OrderStatus
		switch req.OrderStatus {
		case models.OrderStatusShipped:
			order.ShippedAt = &now
			if req.DeliveryDate != nil {
				order.DeliveryDate = req.DeliveryDate
			} else if order.DeliveryDate == nil {
				estimate := now.Add(shippedDeliveryWindow)
				order.DeliveryDate = &estimate
			}
		case models.OrderStatusDelivered:
			order.DeliveredAt = &now
			// cash on delivery settles at the door
			if order.PaymentMethod == models.PaymentMethodCOD && order.PaymentStatus == models.PaymentStatusPending {
				order.PaymentStatus = models.PaymentStatusPaid
			}
		}
		return tx.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, s.toServiceError(err)
	}

	s.events.Emit(ctx, orderEvent(models.EventOrderStatusChanged, order))
	s.notifications.StatusChanged(ctx, order)
	return order, nil
}

// UpdatePaymentStatus sets the payment state directly, admin only.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdatePaymentStatusRequest) (*models.Order, *ServiceError) {
	if !req.PaymentStatus.Valid() {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid payment status",
			Details:    models.ValidPaymentStatuses,
		}
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.PaymentStatus = req.PaymentStatus
		return tx.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, s.toServiceError(err)
	}

	s.events.Emit(ctx, orderEvent(models.EventPaymentStatusChanged, order))
	s.notifications.PaymentStatusChanged(ctx, order)
	return order, nil
}

// CancelOrder cancels the caller's order, restores its stock and flips a
// settled payment to Refunded, all in one transaction.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, req *models.CancelOrderRequest) (*models.Order, *ServiceError) {
	if !req.Reason.Valid() {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid cancellation reason",
			Details:    models.ValidCancelReasons,
		}
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByIDAndUserID(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if !order.Cancellable() {
			return NewServiceError(http.StatusConflict,
				fmt.Sprintf("Order in status %s cannot be cancelled", order.OrderStatus))
		}

		if err := s.reservations.RestoreOrderItems(ctx, tx, order.OrderItems); err != nil {
			return err
		}

		now := time.Now()
		order.OrderStatus = models.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancelDetails = &models.CancelDetails{
			Reason:      req.Reason,
			Notes:       req.Notes,
			CancelledAt: now,
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			order.PaymentStatus = models.PaymentStatusRefunded
		}
		return tx.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, s.toServiceError(err)
	}

	s.events.Emit(ctx, orderEvent(models.EventOrderCancelled, order))
	s.notifications.StatusChanged(ctx, order)
	s.logger.Info("order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", string(req.Reason)))
	return order, nil
}

// RegenerateTrackingNumber assigns a fresh tracking number to one of the
// caller's own orders.
func (s *OrderService) RegenerateTrackingNumber(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError) {
	var order *models.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().FindByIDAndUserID(ctx, orderID, userID)
		if err != nil {
			return err
		}
		trackingNumber, err := uniqueTrackingNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.TrackingNumber = trackingNumber
		return tx.Orders().UpdateFields(ctx, order.ID, map[string]interface{}{
			"tracking_number": trackingNumber,
		})
	})
	if err != nil {
		return nil, s.toServiceError(err)
	}
	return order, nil
}

func (s *OrderService) toServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var oos *OutOfStockError
	if errors.As(err, &oos) {
		return &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    "Some items are out of stock",
			Details:    oos.Items,
		}
	}

	var initErr *PaymentInitiationError
	if errors.As(err, &initErr) {
		return NewServiceError(http.StatusBadGateway, "Payment could not be initiated: "+initErr.Reason)
	}

	switch {
	case errors.Is(err, ErrGatewayUnavailable):
		return NewServiceError(http.StatusServiceUnavailable, "Payment gateway is unavailable, please try again")
	case errors.Is(err, repository.ErrNotFound):
		return NewServiceError(http.StatusNotFound, "Order not found")
	case isDuplicateKey(err):
		return NewServiceError(http.StatusConflict, "Conflicting write, please retry")
	default:
		s.logger.Error("unexpected service error", zap.Error(err))
		return NewServiceError(http.StatusInternalServerError, "Something went wrong")
	}
}

func isDuplicateKey(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func buildOrderResponse(orders []models.Order, total int64, page, limit int) *OrderResponse {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return &OrderResponse{
		Orders: orders,
		Meta: MetaData{
			Page:        page,
			Limit:       limit,
			TotalOrders: total,
			TotalPages:  totalPages,
			HasMore:     int64(page) < totalPages,
		},
	}
}
