package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/customer-address-backend/internal/model"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to in-process subscribers with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error

	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	Log     *logrus.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log *logrus.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		Log:        log,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for {
		err := handler(job.Payload)
		if err == nil {
			return
		}

		job.RetryCount++
		entry := q.Log.WithFields(logrus.Fields{"topic": job.Topic, "attempt": job.RetryCount, "max_retries": job.MaxRetries})
		if job.RetryCount > job.MaxRetries {
			entry.WithError(err).Error("job permanently failed")
			return
		}
		entry.WithError(err).Warn("job failed, retrying")

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DecodeEvent accepts either an in-process ChangeEvent or a JSON body off the wire.
func DecodeEvent(payload any) (model.ChangeEvent, error) {
	switch p := payload.(type) {
	case model.ChangeEvent:
		return p, nil
	case *model.ChangeEvent:
		return *p, nil
	case json.RawMessage:
		return unmarshalEvent(p)
	case []byte:
		return unmarshalEvent(p)
	default:
		return model.ChangeEvent{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}

func unmarshalEvent(body []byte) (model.ChangeEvent, error) {
	var ev model.ChangeEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Type == "" {
		return model.ChangeEvent{}, fmt.Errorf("decode change event: missing type")
	}
	return ev, nil
}
