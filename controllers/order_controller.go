package controllers

import (
	"net/http"
	"strconv"
	"time"

	"order-service/middleware"
	"order-service/models"
	"order-service/repository"
	"order-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CreateOrder handles checkout requests
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	identity, err := middleware.GetIdentity(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, svcErr := oc.orderService.CreateOrder(ctx.Request.Context(), identity, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}

	if result.Payment != nil {
		// the client redirects the shopper to the hosted payment page
		ctx.JSON(http.StatusOK, gin.H{"payment": result.Payment})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"order": result.Order})
}

// GetOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(ctx)
	filter, ok := parseOrderFilter(ctx)
	if !ok {
		return
	}

	result, svcErr := oc.orderService.GetUserOrders(ctx.Request.Context(), userID, filter, page, limit)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetOrderByID returns a single order owned by the caller
func (oc *OrderController) GetOrderByID(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	identity, _ := middleware.GetIdentity(ctx)
	order, svcErr := oc.orderService.GetOrderByID(ctx.Request.Context(), userID, orderID, identity.Role == "admin")
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetOrderByTracking returns a single order located by tracking number
func (oc *OrderController) GetOrderByTracking(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	trackingNumber := ctx.Param("trackingNumber")
	if len(trackingNumber) != 12 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tracking number"})
		return
	}

	order, svcErr := oc.orderService.GetOrderByTracking(ctx.Request.Context(), userID, trackingNumber)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetAllOrders returns paginated orders for all users (admin only)
func (oc *OrderController) GetAllOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	filter, ok := parseOrderFilter(ctx)
	if !ok {
		return
	}

	result, svcErr := oc.orderService.GetAllOrders(ctx.Request.Context(), filter, page, limit)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// UpdateOrderStatus moves an order along the fulfilment lifecycle (admin only)
func (oc *OrderController) UpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdateOrderStatus(ctx.Request.Context(), orderID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdatePaymentStatus sets an order's payment state directly (admin only)
func (oc *OrderController) UpdatePaymentStatus(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req models.UpdatePaymentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdatePaymentStatus(ctx.Request.Context(), orderID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels the caller's own order
func (oc *OrderController) CancelOrder(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req models.CancelOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.CancelOrder(ctx.Request.Context(), userID, orderID, &req)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// RegenerateTrackingNumber assigns a fresh tracking number to the caller's order
func (oc *OrderController) RegenerateTrackingNumber(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	order, svcErr := oc.orderService.RegenerateTrackingNumber(ctx.Request.Context(), userID, orderID)
	if svcErr != nil {
		respondServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

func respondServiceError(ctx *gin.Context, err *services.ServiceError) {
	body := gin.H{"error": err.Message}
	if err.Details != nil {
		body["details"] = err.Details
	}
	ctx.JSON(err.StatusCode, body)
}

func parseOrderID(ctx *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return uuid.Nil, false
	}
	return orderID, true
}

func parsePaginationParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	return page, limit
}

func parseOrderFilter(ctx *gin.Context) (repository.OrderFilter, bool) {
	var filter repository.OrderFilter

	if status := ctx.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		if !orderStatus.Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter", "details": models.ValidOrderStatuses})
			return filter, false
		}
		filter.Status = orderStatus
	}
	if from := ctx.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected RFC3339"})
			return filter, false
		}
		filter.StartDate = &t
	}
	if to := ctx.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected RFC3339"})
			return filter, false
		}
		filter.EndDate = &t
	}
	return filter, true
}
