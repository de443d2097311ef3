package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"billboards/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
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

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "pending"}).
		WithEventType("booking.created").
		WithSource("bookings").
		WithCorrelationID("").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Key != "booking-1" || msg.GetEventType() != "booking.created" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.GetEventID() == "" || msg.Headers[HeaderTimestamp] == "" {
		t.Errorf("event id and timestamp must be generated: %+v", msg.Headers)
	}
	if _, ok := msg.Headers[HeaderCorrelationID]; ok {
		t.Errorf("empty correlation id should not be set")
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["status"] != "pending" {
		t.Errorf("DecodeValue = %v, %v", decoded, err)
	}

	_, err = NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage for unencodable value, got %v", err)
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	if msg.GetRetryCount() != 0 {
		t.Fatal("fresh message should have zero retries")
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if msg.GetRetryCount() != 12 {
		t.Errorf("retry count = %d, want 12", msg.GetRetryCount())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("x", errors.New("timeout")), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("schema mismatch"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	if ShouldRetry(NewTransientError("x", nil), 3, 3) {
		t.Error("retries must stop at the limit")
	}
}

func TestProducer_PublishAndMiddleware(t *testing.T) {
	w := &fakeWriter{}
	p := newProducerWithWriters("billboard-bookings", w, nil)

	var order []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		order = append(order, "inner")
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("b-1").WithValue("x").WithEventType("booking.created").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}
	if len(w.messages) != 1 || string(w.messages[0].Key) != "b-1" {
		t.Fatalf("unexpected writes: %+v", w.messages)
	}
	if header(w.messages[0], HeaderEventType) != "booking.created" {
		t.Errorf("headers not propagated")
	}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_FailedPublishGoesToDLQ(t *testing.T) {
	boom := errors.New("broker down")
	w := &fakeWriter{err: boom}
	dlq := &fakeWriter{}
	p := newProducerWithWriters("billboard-bookings", w, dlq)

	msg, _ := NewMessage().WithKey("b-1").WithValue("x").Build()
	err := p.Publish(context.Background(), msg)
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.messages))
	}
	if header(dlq.messages[0], HeaderOriginalTopic) != "billboard-bookings" || header(dlq.messages[0], HeaderDLQError) != boom.Error() {
		t.Errorf("DLQ headers missing: %+v", dlq.messages[0].Headers)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Errorf("caller's message headers must not be mutated")
	}
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		km := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return km, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestConsumer_RetriesThenDLQ(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Key: []byte("ok"), Offset: 1},
		{Key: []byte("flaky"), Offset: 2},
		{Key: []byte("bad"), Offset: 3},
	}}
	dlq := &fakeWriter{}

	var mu sync.Mutex
	attempts := map[string]int{}
	handler := func(ctx context.Context, msg Message) error {
		mu.Lock()
		attempts[msg.Key]++
		n := attempts[msg.Key]
		mu.Unlock()

		switch msg.Key {
		case "flaky":
			if n < 3 {
				return NewTransientError("temporarily busy", nil)
			}
			return nil
		case "bad":
			return NewPermanentError("cannot decode", nil)
		}
		return nil
	}

	c := &Consumer{
		reader:       reader,
		dlqWriter:    dlq,
		topic:        "billboard-bookings",
		groupID:      "test",
		maxRetries:   3,
		retryBackoff: time.Millisecond,
		handler:      handler,
		log:          logger.Discard(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for reader.committedCount() < 3 {
		select {
		case <-deadline:
			t.Fatal("consumer did not commit all messages in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts["flaky"] != 3 {
		t.Errorf("flaky attempts = %d, want 3", attempts["flaky"])
	}
	if attempts["bad"] != 1 {
		t.Errorf("permanent failures must not be retried, attempts = %d", attempts["bad"])
	}
	if len(dlq.messages) != 1 || string(dlq.messages[0].Key) != "bad" {
		t.Fatalf("expected only the bad message on the DLQ, got %d", len(dlq.messages))
	}
	if header(dlq.messages[0], HeaderDLQGroup) != "test" {
		t.Errorf("DLQ message missing consumer group header")
	}
}
