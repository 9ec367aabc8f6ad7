package routes

import (
	"order-service/controllers"
	"order-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, orderController *controllers.OrderController, paymentController *controllers.PaymentController) {
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(middleware.AuthMiddleware())
	orderRoutes.POST("/", orderController.CreateOrder)
	orderRoutes.GET("/", orderController.GetOrders)
	orderRoutes.GET("/:id", orderController.GetOrderByID)
	orderRoutes.POST("/:id/cancel", orderController.CancelOrder)
	orderRoutes.GET("/tracking/:trackingNumber", orderController.GetOrderByTracking)
	orderRoutes.PATCH("/:id/tracking", orderController.RegenerateTrackingNumber)

	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	adminRoutes.GET("/orders", orderController.GetAllOrders)
	adminRoutes.PATCH("/orders/:id/status", orderController.UpdateOrderStatus)
	adminRoutes.PATCH("/orders/:id/payment-status", orderController.UpdatePaymentStatus)

	// no auth: the gateway calls this directly, authenticity comes from the hash
	r.POST("/payments/callback", paymentController.Callback)
	r.GET("/payments/callback", paymentController.Callback)
}
