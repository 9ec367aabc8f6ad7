package services

import "html/template"

// Email bodies are small enough to keep inline; parsing happens once at
// package init so a broken template fails fast.

const orderConfirmedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Thanks for your order, {{.Name}}!</h2>
    <p>Your order <strong>{{.OrderNumber}}</strong> has been confirmed.</p>
    <p>Total: <strong>{{printf "%.2f" .TotalAmount}}</strong></p>
    <p>Tracking number: <strong>{{.TrackingNumber}}</strong></p>
    <p>We will let you know as soon as it ships.</p>
  </body>
</html>`

const orderShippedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your order is on its way, {{.Name}}!</h2>
    <p>Order <strong>{{.OrderNumber}}</strong> has shipped.</p>
    <p>Tracking number: <strong>{{.TrackingNumber}}</strong></p>
    {{if .DeliveryDate}}<p>Expected delivery: {{.DeliveryDate}}</p>{{end}}
  </body>
</html>`

const orderDeliveredTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your order has arrived, {{.Name}}!</h2>
    <p>Order <strong>{{.OrderNumber}}</strong> was delivered.</p>
    <p>We hope your pet loves it.</p>
  </body>
</html>`

const orderCancelledTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your order was cancelled</h2>
    <p>Order <strong>{{.OrderNumber}}</strong> has been cancelled.</p>
    {{if .Refunded}}<p>Your payment will be refunded to the original payment method.</p>{{end}}
  </body>
</html>`

const orderReturnedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your return was processed</h2>
    <p>Order <strong>{{.OrderNumber}}</strong> has been marked as returned.</p>
    <p>If a refund is due it will follow once the items are inspected.</p>
  </body>
</html>`

const paymentReceivedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Payment received, {{.Name}}!</h2>
    <p>We received your payment of <strong>{{printf "%.2f" .TotalAmount}}</strong> for order <strong>{{.OrderNumber}}</strong>.</p>
  </body>
</html>`

const paymentRefundedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your refund is on its way</h2>
    <p>Hi {{.Name}}, the payment for order <strong>{{.OrderNumber}}</strong> has been refunded to your original payment method.</p>
  </body>
</html>`

const paymentNotReceivedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Payment failed</h2>
    <p>Hi {{.Name}}, the payment for order <strong>{{.OrderNumber}}</strong> did not go through.</p>
    <p>Please update your payment details or contact support.</p>
  </body>
</html>`

const paymentFailedTmpl = `
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Payment failed</h2>
    <p>Hi {{.Name}}, your payment for checkout <strong>{{.Reference}}</strong> did not go through.</p>
    <p>No money was taken and your items are back in stock. Please try again.</p>
  </body>
</html>`

var (
	tmplOrderConfirmed = template.Must(template.New("order_confirmed").Parse(orderConfirmedTmpl))
	tmplOrderShipped   = template.Must(template.New("order_shipped").Parse(orderShippedTmpl))
	tmplOrderDelivered = template.Must(template.New("order_delivered").Parse(orderDeliveredTmpl))
	tmplOrderCancelled = template.Must(template.New("order_cancelled").Parse(orderCancelledTmpl))
	tmplOrderReturned  = template.Must(template.New("order_returned").Parse(orderReturnedTmpl))
	tmplPaymentFailed  = template.Must(template.New("payment_failed").Parse(paymentFailedTmpl))

	tmplPaymentReceived    = template.Must(template.New("payment_received").Parse(paymentReceivedTmpl))
	tmplPaymentRefunded    = template.Must(template.New("payment_refunded").Parse(paymentRefundedTmpl))
	tmplPaymentNotReceived = template.Must(template.New("payment_not_received").Parse(paymentNotReceivedTmpl))
)
