package controllers

import (
	"fmt"
	"net/http"

	"order-service/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(paymentService *services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

// Callback receives the gateway's signed payment result and redirects the
// shopper to the storefront. The gateway posts form fields; some deployments
// send them as query parameters instead, so both are accepted.
func (pc *PaymentController) Callback(ctx *gin.Context) {
	params := services.CallbackParams{
		Status:      callbackParam(ctx, "status"),
		TxnID:       callbackParam(ctx, "txnid"),
		Amount:      callbackParam(ctx, "amount"),
		ProductInfo: callbackParam(ctx, "productinfo"),
		Firstname:   callbackParam(ctx, "firstname"),
		Email:       callbackParam(ctx, "email"),
		Phone:       callbackParam(ctx, "phone"),
		Mode:        callbackParam(ctx, "mode"),
		EasepayID:   callbackParam(ctx, "easepayid"),
		Hash:        callbackParam(ctx, "hash"),
	}
	for i := 0; i < 10; i++ {
		params.UDF[i] = callbackParam(ctx, fmt.Sprintf("udf%d", i+1))
	}

	redirectURL := pc.paymentService.HandleCallback(ctx.Request.Context(), params)
	ctx.Redirect(http.StatusFound, redirectURL)
}

func callbackParam(ctx *gin.Context, key string) string {
	if v := ctx.PostForm(key); v != "" {
		return v
	}
	return ctx.Query(key)
}
