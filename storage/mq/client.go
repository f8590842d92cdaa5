package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/pkg/logger"
)

var conn *amqp.Connection

// Init 建连并声明事件 topic exchange
func Init() error {
	url := config.Cfg.GetRabbitMQURL()

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.RetryNotify(func() error {
		c, dialErr := amqp.Dial(url)
		if dialErr != nil {
			return dialErr
		}
		conn = c
		return nil
	}, bo, func(e error, wait time.Duration) {
		logger.Logger.Warn("RabbitMQ dial failed, retrying",
			zap.String("addr", config.Cfg.RabbitMQAddr),
			zap.Duration("wait", wait),
			zap.Error(e),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		config.Cfg.EventsExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", config.Cfg.EventsExchange, err)
	}

	logger.Logger.Info("RabbitMQ initialized",
		zap.String("exchange", config.Cfg.EventsExchange),
	)
	return nil
}

func Close(ctx context.Context) error {
	pubMutex.Lock()
	if publisherCh != nil {
		_ = publisherCh.Close()
		publisherCh = nil
	}
	pubMutex.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Close()
}
