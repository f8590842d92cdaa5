package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"RostrDating/internal/model"
	"RostrDating/pkg/snowflake"
	"RostrDating/storage/mq"
)

// Publisher 领域事件发布
type Publisher interface {
	Publish(ctx context.Context, msg model.EventMessage) error
}

// NewEvent 构造事件，OccurredAt 使用 UTC RFC3339
func NewEvent(eventType, deviceID, userID string, payload map[string]interface{}, now time.Time) model.EventMessage {
	return model.EventMessage{
		EventType:  eventType,
		DeviceID:   deviceID,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: now.UTC().Format(time.RFC3339),
	}
}

// AMQPPublisher 发到 topic exchange，路由键即事件类型
type AMQPPublisher struct {
	exchange string
	log      *zap.Logger
}

func NewAMQPPublisher(exchange string, log *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{exchange: exchange, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg model.EventMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextString()
		if err != nil {
			p.log.Error("Failed to generate message ID",
				zap.String("event_type", msg.EventType),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = "evt_" + id
	}

	if err := mq.PublishMessage(ctx, p.exchange, msg.EventType, msg.MessageID, msg); err != nil {
		p.log.Error("Failed to publish event",
			zap.String("message_id", msg.MessageID),
			zap.String("event_type", msg.EventType),
			zap.Error(err),
		)
		return err
	}

	p.log.Debug("Published event",
		zap.String("message_id", msg.MessageID),
		zap.String("event_type", msg.EventType),
		zap.String("device_id", msg.DeviceID),
	)
	return nil
}

// LogPublisher MQ_ENABLED=false 时使用，只写日志
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, msg model.EventMessage) error {
	p.log.Info("Event",
		zap.String("event_type", msg.EventType),
		zap.String("device_id", msg.DeviceID),
		zap.String("user_id", msg.UserID),
		zap.Any("payload", msg.Payload),
	)
	return nil
}
