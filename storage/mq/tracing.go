package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "RostrDating/storage/mq"

// headerCarrier 把 trace 上下文写入 amqp 消息头，下游消费者据此续接链路
type headerCarrier amqp.Table

func (c headerCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	c[key] = value
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// startPublishSpan 开启发布 span 并把上下文注入消息头
func startPublishSpan(ctx context.Context, exchange, routingKey string, msg *amqp.Publishing) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "rabbitmq.publish "+exchange,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			semconv.MessagingMessageID(msg.MessageId),
			attribute.String("messaging.operation", "publish"),
		),
	)

	if msg.Headers == nil {
		msg.Headers = amqp.Table{}
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier(msg.Headers))

	return ctx, span
}

func endPublishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
