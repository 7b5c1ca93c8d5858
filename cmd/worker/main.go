package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/customer-address-backend/internal/config"
	"github.com/unclebandit/customer-address-backend/internal/logging"
	"github.com/unclebandit/customer-address-backend/internal/queue"
	"github.com/unclebandit/customer-address-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.AMQPURL, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to RabbitMQ")
	}
	defer q.Close()

	if err := run(q, cfg.EventsQueue, log); err != nil {
		log.WithError(err).Fatal("failed to register consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("queue", cfg.EventsQueue).Info("Worker running, waiting for messages...")
	select {
	case <-ctx.Done():
		log.Info("worker stopping")
	case amqpErr := <-q.NotifyClose():
		log.WithField("reason", amqpErr).Error("RabbitMQ connection closed")
	}
}

// run subscribes a log-only worker to the events queue.
func run(q queue.Queue, topic string, log *logrus.Logger) error {
	worker := service.NewWorker(&service.LogSink{Log: log}, log)
	return worker.Start(q, topic)
}
