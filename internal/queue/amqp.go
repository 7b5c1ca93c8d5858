package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// amqpChannel is the part of *amqp.Channel the queue uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// AMQPQueue publishes JSON messages to durable RabbitMQ queues named after the topic.
// A channel closed by the broker is reopened on the next publish.
type AMQPQueue struct {
	conn        *amqp.Connection
	openChannel func() (amqpChannel, error)
	log         *logrus.Logger

	mu       sync.Mutex
	ch       amqpChannel
	chClosed chan *amqp.Error
	declared map[string]bool
}

// DialAMQP connects and opens the channel used for both publishing and consuming.
func DialAMQP(url string, log *logrus.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	q := newAMQPQueue(func() (amqpChannel, error) { return conn.Channel() }, log)
	q.conn = conn
	if err := q.reopen(); err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

func newAMQPQueue(open func() (amqpChannel, error), log *logrus.Logger) *AMQPQueue {
	return &AMQPQueue{openChannel: open, log: log, declared: map[string]bool{}}
}

// reopen must be called with q.mu held. Queue declarations are per channel, so they
// are redone lazily.
func (q *AMQPQueue) reopen() error {
	ch, err := q.openChannel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	q.ch = ch
	q.chClosed = ch.NotifyClose(make(chan *amqp.Error, 1))
	q.declared = map[string]bool{}
	return nil
}

// channel returns a live channel, reopening it when the broker has closed it.
// Must be called with q.mu held.
func (q *AMQPQueue) channel() (amqpChannel, error) {
	if q.ch != nil {
		select {
		case reason, ok := <-q.chClosed:
			if ok {
				q.log.WithField("reason", reason).Error("RabbitMQ channel closed, reopening")
			}
			q.ch = nil
		default:
			return q.ch, nil
		}
	}
	if err := q.reopen(); err != nil {
		return nil, err
	}
	return q.ch, nil
}

// declare must be called with q.mu held.
func (q *AMQPQueue) declare(ch amqpChannel, topic string) error {
	if q.declared[topic] {
		return nil
	}
	_, err := ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	err = q.publish(topic, msg)
	if errors.Is(err, amqp.ErrClosed) {
		// the close notification can trail the failed publish
		q.log.WithError(err).WithField("topic", topic).Error("RabbitMQ channel closed, reopening")
		q.ch = nil
		err = q.publish(topic, msg)
	}
	return err
}

func (q *AMQPQueue) publish(topic string, msg amqp.Publishing) error {
	ch, err := q.channel()
	if err != nil {
		return err
	}
	if err := q.declare(ch, topic); err != nil {
		return err
	}
	return ch.Publish("", topic, false, false, msg)
}

// Subscribe consumes topic with manual acks. The handler receives the body as
// json.RawMessage. A failed delivery is requeued once, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	ch, err := q.channel()
	if err == nil {
		err = q.declare(ch, topic)
	}
	if err != nil {
		q.mu.Unlock()
		return err
	}
	msgs, err := ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(json.RawMessage(d.Body)); err != nil {
				q.log.WithError(err).WithFields(logrus.Fields{
					"topic":       topic,
					"redelivered": d.Redelivered,
				}).Warn("message handling failed")
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
		q.log.WithField("topic", topic).Info("consumer channel closed")
	}()
	return nil
}

// NotifyClose exposes connection loss so long-running consumers can exit.
func (q *AMQPQueue) NotifyClose() <-chan *amqp.Error {
	return q.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	ch := q.ch
	q.mu.Unlock()

	var chErr error
	if ch != nil {
		chErr = ch.Close()
	}
	if q.conn == nil {
		return chErr
	}
	if err := q.conn.Close(); err != nil {
		return err
	}
	return chErr
}

var (
	_ Queue = (*InMemoryQueue)(nil)
	_ Queue = (*AMQPQueue)(nil)
)
