// Package kafka carries the service's two event streams over
// segmentio/kafka-go: the index-updated notifications that trigger snapshot
// refreshes, and the rank/refresh analytics events. Values are JSON on the
// wire.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. Returning an error skips the
// commit, so the message is redelivered after a rebalance.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer pulls a topic inside a consumer group and hands each message to
// its MessageHandler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	handler MessageHandler
}

func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{
		reader:  reader,
		logger:  slog.Default().With("component", "kafka-consumer", "topic", topic),
		handler: handler,
	}
}

// Start fetches and processes messages until ctx is cancelled. Fetch and
// handler errors are logged and the loop keeps going; a stuck broker must
// not take the rank path down with it.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", "reason", ctx.Err())
			return c.reader.Close()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("message received",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
		"value_size", len(msg.Value),
	)
	if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
		c.logger.Error("failed to process message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("failed to commit message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
