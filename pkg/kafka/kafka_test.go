package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hallbook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	err      error
	messages []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	msg := r.pending[0]
	r.pending = r.pending[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("resource-1").
		WithValue(map[string]any{"booking_id": "b1"}).
		WithEventType("booking.created").
		WithSource("bookings").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.GetEventType() != "booking.created" {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["booking_id"] != "b1" {
		t.Errorf("DecodeValue() = %v, %v", decoded, err)
	}
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Error("expected encoding error")
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, nil, "booking-events", logger.Discard())

	var seen []string
	producer.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("resource-1").WithValue("payload").Build()
	if err := producer.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(writer.messages) != 1 || string(writer.messages[0].Key) != "resource-1" {
		t.Fatalf("unexpected writes: %+v", writer.messages)
	}
	if len(seen) != 1 || seen[0] != "booking-events" {
		t.Errorf("middleware saw %v", seen)
	}
}

func TestProducer_PublishValidation(t *testing.T) {
	producer := newProducer(&fakeWriter{}, nil, "t", logger.Discard())

	if err := producer.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := producer.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	_ = producer.Close()
	if err := producer.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_FailedPublishGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	producer := newProducer(&fakeWriter{err: writeErr}, dlq, "booking-events", logger.Discard())

	msg, _ := NewMessage().WithKey("resource-1").WithValue("payload").Build()
	err := producer.Publish(context.Background(), msg)
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected original error, got %v", err)
	}

	if len(dlq.messages) != 1 {
		t.Fatalf("DLQ writes = %d, want 1", len(dlq.messages))
	}
	if got := headerValue(dlq.messages[0], HeaderOriginalTopic); got != "booking-events" {
		t.Errorf("original topic header = %q", got)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("DLQ headers must not leak into the caller's message")
	}
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		pending: []kafka.Message{{Key: []byte("a"), Value: []byte("1")}, {Key: []byte("b"), Value: []byte("2")}},
		cancel:  cancel,
	}

	var handled []string
	consumer := newConsumer(reader, nil, "booking-events", "group", 3, func(ctx context.Context, msg Message) error {
		handled = append(handled, msg.Key)
		return nil
	}, logger.Discard())

	if err := consumer.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start() error = %v", err)
	}

	if len(handled) != 2 || len(reader.committed) != 2 {
		t.Errorf("handled=%v committed=%d", handled, len(reader.committed))
	}
}

func TestConsumer_RetriesTransientThenSucceeds(t *testing.T) {
	attempts := 0
	consumer := newConsumer(&fakeReader{}, nil, "t", "g", 3, func(ctx context.Context, msg Message) error {
		attempts++
		if attempts < 3 {
			return NewTransientError("deliver", errors.New("smtp timeout"))
		}
		return nil
	}, logger.Discard())
	consumer.sleep = func(context.Context, time.Duration) error { return nil }

	if err := consumer.processMessage(context.Background(), Message{Key: "k", Headers: map[string]string{}}); err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestConsumer_PermanentErrorGoesToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	attempts := 0
	consumer := newConsumer(&fakeReader{}, dlq, "booking-events", "notifications", 3, func(ctx context.Context, msg Message) error {
		attempts++
		return NewPermanentError("decode", errors.New("bad json"))
	}, logger.Discard())
	consumer.sleep = func(context.Context, time.Duration) error { return nil }

	err := consumer.processMessage(context.Background(), Message{Key: "k", Value: []byte("{"), Headers: map[string]string{}})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("permanent errors must not be retried, attempts = %d", attempts)
	}
	if len(dlq.messages) != 1 || headerValue(dlq.messages[0], HeaderDLQGroup) != "notifications" {
		t.Errorf("unexpected DLQ writes: %+v", dlq.messages)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "transient wrapper", err: NewTransientError("x", nil), want: ErrorTypeTransient},
		{name: "permanent wrapper", err: NewPermanentError("x", nil), want: ErrorTypePermanent},
		{name: "deadline", err: context.DeadlineExceeded, want: ErrorTypeTransient},
		{name: "connection refused", err: errors.New("dial tcp: Connection Refused"), want: ErrorTypeTransient},
		{name: "unknown", err: errors.New("something odd"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}
