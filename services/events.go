package services

import (
	"context"
	"encoding/json"
	"time"

	awspkg "order-service/aws"
	"order-service/models"

	"go.uber.org/zap"
)

// EventPublisher is what the Kafka producer provides.
type EventPublisher interface {
	SendOrderEvent(ctx context.Context, evt models.OrderEvent) error
}

// EventEmitter fans order lifecycle events out to Kafka and mirrors them to
// SNS. Both legs are best-effort: a broker outage never fails the request
// that triggered the event.
type EventEmitter struct {
	producer    EventPublisher
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

func NewEventEmitter(producer EventPublisher, snsClient awspkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) *EventEmitter {
	return &EventEmitter{
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

func (e *EventEmitter) Emit(ctx context.Context, evt models.OrderEvent) {
	if e == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	if e.producer != nil {
		if err := e.producer.SendOrderEvent(ctx, evt); err != nil {
			e.logger.Warn("kafka publish failed",
				zap.String("event_type", evt.Type),
				zap.String("order_id", evt.OrderID),
				zap.Error(err))
		}
	}

	if e.snsClient != nil && e.snsTopicArn != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			e.logger.Warn("event marshal failed", zap.Error(err))
			return
		}
		if err := e.snsClient.Publish(ctx, e.snsTopicArn, data); err != nil {
			e.logger.Warn("sns publish failed",
				zap.String("event_type", evt.Type),
				zap.String("order_id", evt.OrderID),
				zap.Error(err))
		}
	}
}

func orderEvent(eventType string, order *models.Order) models.OrderEvent {
	return models.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID.String(),
		Amount:        order.TotalAmount,
		OrderStatus:   string(order.OrderStatus),
		PaymentStatus: string(order.PaymentStatus),
	}
}
