package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publisher/subscriber pair handed to modules.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects the transport. An empty NATSURL keeps events in process.
type Config struct {
	NATSURL    string
	QueueGroup string
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// NewEventBus connects to NATS when cfg.NATSURL is set, otherwise it returns an
// in-process gochannel bus.
func NewEventBus(cfg Config, logger *slog.Logger) (EventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wmLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		logger.Info("Using in-process event bus")
		pubSub := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
		return &eventBus{publisher: pubSub, subscriber: pubSub, logger: logger}, nil
	}

	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Name("truthtable"),
	}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.NATSURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.NATSURL,
			QueueGroupPrefix: cfg.QueueGroup,
			SubscribersCount: 1,
			Unmarshaler:      marshaler,
			NatsOptions:      natsOptions,
			JetStream:        jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		logger.Error("Failed to create Watermill subscriber", attr.Error(err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Connected event bus to NATS", attr.String("url", cfg.NATSURL))
	return &eventBus{publisher: publisher, subscriber: subscriber, logger: logger}, nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		eb.logger.Debug("Publishing message",
			attr.String("topic", topic),
			attr.String("message_id", msg.UUID),
			attr.String(attr.CorrelationIDKey, middleware.MessageCorrelationID(msg)),
		)
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", attr.String("topic", topic))
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *eventBus) Close() error {
	pubErr := eb.publisher.Close()
	// gochannel uses one value for both sides
	if any(eb.subscriber) == any(eb.publisher) {
		return pubErr
	}
	subErr := eb.subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}

// PublishJSON encodes payload as JSON and publishes it on topic, carrying the
// correlation id from ctx. A nil publisher drops the event.
func PublishJSON(ctx context.Context, pub message.Publisher, topic string, payload any) error {
	if pub == nil {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	correlationID := attr.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = watermill.NewShortUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.SetContext(ctx)
	return pub.Publish(topic, msg)
}

// DecodeJSON unmarshals a message payload into T.
func DecodeJSON[T any](msg *message.Message) (*T, error) {
	var out T
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.UUID, err)
	}
	return &out, nil
}
