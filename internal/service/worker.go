package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/customer-address-backend/internal/model"
	"github.com/unclebandit/customer-address-backend/internal/queue"
)

// EventSink is where the worker hands decoded change events.
type EventSink interface {
	Record(ctx context.Context, ev model.ChangeEvent) error
}

// Worker processes change events coming off the queue
type Worker struct {
	Sink EventSink
	Log  *logrus.Logger
}

// Constructor
func NewWorker(sink EventSink, log *logrus.Logger) *Worker {
	return &Worker{
		Sink: sink,
		Log:  log,
	}
}

// Handle is a queue handler. Undecodable payloads are dropped (no retry); sink
// errors are returned so the queue retries them.
func (w *Worker) Handle(payload any) error {
	ev, err := queue.DecodeEvent(payload)
	if err != nil {
		w.Log.WithError(err).Warn("dropping malformed change event")
		return nil
	}
	return w.Sink.Record(context.Background(), ev)
}

// Start subscribes the worker to topic.
func (w *Worker) Start(q queue.Queue, topic string) error {
	return q.Subscribe(topic, w.Handle)
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	Log *logrus.Logger
}

func (s *LogSink) Record(ctx context.Context, ev model.ChangeEvent) error {
	s.Log.WithFields(logrus.Fields{
		"event_id":    ev.ID,
		"event":       ev.Type,
		"customer_id": ev.CustomerID,
		"address_id":  ev.AddressID,
		"occurred_at": ev.OccurredAt,
	}).Info("customer change")
	return nil
}
