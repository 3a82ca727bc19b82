package analytics

import (
	"context"
	"log/slog"

	"github.com/Algolizen-Inc/LinkRanker/pkg/kafka"
)

// Collector buffers rank and refresh events and publishes them to Kafka
// off the request path. Track never blocks: when the buffer is full the
// event is dropped, since losing an analytics sample is cheaper than
// stalling a rank response.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "rank-analytics-collector"),
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop. On ctx cancellation it flushes whatever
// is still buffered before returning.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.flush()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("rank event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the publish loop to drain.
func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   partitionKey(event),
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish rank event", "error", err)
	}
}

// partitionKey keeps one query's events on one partition so per-query
// aggregation sees them in order.
func partitionKey(event any) string {
	switch e := event.(type) {
	case RankEvent:
		if e.Query != "" {
			return e.Query
		}
		return "rank"
	case RefreshEvent:
		return "refresh"
	default:
		return "rank"
	}
}

func (c *Collector) flush() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}
