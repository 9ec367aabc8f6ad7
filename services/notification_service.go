package services

import (
	"bytes"
	"context"
	"html/template"

	"order-service/models"
	"order-service/sender"

	"go.uber.org/zap"
)

type statusEmail struct {
	tmpl    *template.Template
	subject string
}

var statusEmails = map[models.OrderStatus]statusEmail{
	models.OrderStatusShipped:   {tmpl: tmplOrderShipped, subject: "Your order has shipped!"},
	models.OrderStatusDelivered: {tmpl: tmplOrderDelivered, subject: "Your order has been delivered!"},
	models.OrderStatusCancelled: {tmpl: tmplOrderCancelled, subject: "Your order was cancelled"},
	models.OrderStatusReturned:  {tmpl: tmplOrderReturned, subject: "Your return was processed"},
}

// Pending and Initiated are transient states the customer never acted on,
// so only settled payment outcomes get a mail.
var paymentEmails = map[models.PaymentStatus]statusEmail{
	models.PaymentStatusPaid:     {tmpl: tmplPaymentReceived, subject: "Payment received"},
	models.PaymentStatusRefunded: {tmpl: tmplPaymentRefunded, subject: "Your refund is on its way"},
	models.PaymentStatusFailed:   {tmpl: tmplPaymentNotReceived, subject: "Payment failed"},
}

// NotificationService sends transactional emails about order lifecycle
// changes. Every send is best-effort: a mail outage must never fail or roll
// back the order mutation that triggered it.
type NotificationService struct {
	sender sender.EmailSender
	logger *zap.Logger
}

func NewNotificationService(emailSender sender.EmailSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{sender: emailSender, logger: logger}
}

func (s *NotificationService) OrderConfirmed(ctx context.Context, order *models.Order) {
	s.send(ctx, order.CustomerEmail, "Order Confirmed!", tmplOrderConfirmed, map[string]interface{}{
		"Name":           displayName(order.CustomerName),
		"OrderNumber":    order.OrderNumber,
		"TotalAmount":    order.TotalAmount,
		"TrackingNumber": order.TrackingNumber,
	})
}

func (s *NotificationService) StatusChanged(ctx context.Context, order *models.Order) {
	email, ok := statusEmails[order.OrderStatus]
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Name":           displayName(order.CustomerName),
		"OrderNumber":    order.OrderNumber,
		"TrackingNumber": order.TrackingNumber,
		"Refunded":       order.PaymentStatus == models.PaymentStatusRefunded,
	}
	if order.DeliveryDate != nil {
		data["DeliveryDate"] = order.DeliveryDate.Format("Jan 2, 2006")
	}
	s.send(ctx, order.CustomerEmail, email.subject, email.tmpl, data)
}

func (s *NotificationService) PaymentStatusChanged(ctx context.Context, order *models.Order) {
	email, ok := paymentEmails[order.PaymentStatus]
	if !ok {
		return
	}
	s.send(ctx, order.CustomerEmail, email.subject, email.tmpl, map[string]interface{}{
		"Name":        displayName(order.CustomerName),
		"OrderNumber": order.OrderNumber,
		"TotalAmount": order.TotalAmount,
	})
}

func (s *NotificationService) PaymentFailed(ctx context.Context, email, name, reference string) {
	s.send(ctx, email, "Payment failed", tmplPaymentFailed, map[string]interface{}{
		"Name":      displayName(name),
		"Reference": reference,
	})
}

func (s *NotificationService) send(ctx context.Context, to, subject string, tmpl *template.Template, data interface{}) {
	if s == nil || s.sender == nil || to == "" {
		return
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		s.logger.Warn("email template render failed",
			zap.String("template", tmpl.Name()),
			zap.Error(err))
		return
	}
	if _, err := s.sender.SendEmail(ctx, to, subject, body.String()); err != nil {
		s.logger.Warn("email send failed",
			zap.String("template", tmpl.Name()),
			zap.String("to", to),
			zap.Error(err))
		return
	}
	s.logger.Info("email sent",
		zap.String("template", tmpl.Name()),
		zap.String("to", to))
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
