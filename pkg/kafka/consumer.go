package kafka

import (
	"context"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// HandlerFunc processes a single decoded event.
type HandlerFunc func(ctx context.Context, event CloudEvent) error

// Consumer reads CloudEvents from one topic as part of a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	logger *zap.Logger
}

// NewConsumer creates a Consumer for topic in the given group.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			StartOffset: kafkago.FirstOffset,
			MinBytes:    1,
			MaxBytes:    10e6,
		}),
		logger: logger,
	}
}

// Consume blocks, passing each event to handle, until ctx is cancelled.
// Malformed messages are logged and committed; a handler error stops consumption
// without committing the failed message.
func (c *Consumer) Consume(ctx context.Context, handle HandlerFunc) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		evt, err := ParseCloudEvent(msg.Value)
		if err != nil {
			c.logger.Error("skipping malformed message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else if err := handle(ctx, evt); err != nil {
			return fmt.Errorf("failed to handle %s: %w", evt.Type, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}

// Close releases the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
