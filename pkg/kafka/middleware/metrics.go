package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"hallbook/pkg/kafka"
)

// Metrics counts Kafka operations for one process.
type Metrics struct {
	published       atomic.Int64
	publishedFailed atomic.Int64
	publishDuration atomic.Int64

	consumed        atomic.Int64
	consumedFailed  atomic.Int64
	consumeDuration atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of the counters, suitable for logging.
type MetricsSnapshot struct {
	Published          int64
	PublishedFailed    int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumedFailed     int64
	AvgConsumeDuration time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published:       m.published.Load(),
		PublishedFailed: m.publishedFailed.Load(),
		Consumed:        m.consumed.Load(),
		ConsumedFailed:  m.consumedFailed.Load(),
	}
	if total := s.Published + s.PublishedFailed; total > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDuration.Load() / total)
	}
	if total := s.Consumed + s.ConsumedFailed; total > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeDuration.Load() / total)
	}
	return s
}

// LogAttrs renders the snapshot as slog key/value pairs.
func (s MetricsSnapshot) LogAttrs() []any {
	return []any{
		"published", s.Published,
		"published_failed", s.PublishedFailed,
		"avg_publish_duration", s.AvgPublishDuration,
		"consumed", s.Consumed,
		"consumed_failed", s.ConsumedFailed,
		"avg_consume_duration", s.AvgConsumeDuration,
	}
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.publishDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.publishedFailed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.consumeDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.consumedFailed.Add(1)
		} else {
			m.consumed.Add(1)
		}
		return err
	}
}
