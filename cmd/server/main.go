// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/customer-address-backend/internal/config"
	"github.com/unclebandit/customer-address-backend/internal/controller"
	"github.com/unclebandit/customer-address-backend/internal/db"
	"github.com/unclebandit/customer-address-backend/internal/handler"
	"github.com/unclebandit/customer-address-backend/internal/logging"
	appmw "github.com/unclebandit/customer-address-backend/internal/middleware"
	"github.com/unclebandit/customer-address-backend/internal/queue"
	"github.com/unclebandit/customer-address-backend/internal/repository"
	"github.com/unclebandit/customer-address-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	conn, err := db.Open(ctx, db.Options{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		PingTimeout:     cfg.StoreTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer conn.Close()

	if err := db.EnsureSchema(ctx, conn); err != nil {
		log.WithError(err).Fatal("failed to prepare schema")
	}
	log.Info("✅ Connected to PostgreSQL")

	q, closeQueue := openQueue(cfg, log)
	defer closeQueue()

	customerRepo := &repository.CustomerRepository{DB: conn, Timeout: cfg.StoreTimeout}
	addressRepo := &repository.AddressRepository{DB: conn, Timeout: cfg.StoreTimeout}

	customerService := &service.CustomerService{
		CustomerRepo:    customerRepo,
		AddressRepo:     addressRepo,
		Queue:           q,
		EventsTopic:     cfg.EventsQueue,
		Log:             log,
		PageSizeDefault: cfg.PageSizeDefault,
		PageSizeMax:     cfg.PageSizeMax,
	}

	routerCfg := controller.RouterConfig{
		Customers:      &controller.CustomerController{CustomerService: customerService, Log: log},
		Health:         handler.NewHealthHandler(conn, cfg.StoreTimeout, log),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	}
	if cfg.RateLimitRPS > 0 {
		limiter := appmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
		limiter.StartCleanup(time.Minute, ctx.Done())
		routerCfg.RateLimiter = limiter
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           controller.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infof("🚀 Server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}

// openQueue publishes to RabbitMQ when AMQP_URL is set; otherwise events are
// handled in-process by a log-only worker.
func openQueue(cfg *config.Config, log *logrus.Logger) (queue.Queue, func()) {
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		return amqpQueue, func() { amqpQueue.Close() }
	}

	memQueue := queue.NewInMemoryQueue(log)
	worker := service.NewWorker(&service.LogSink{Log: log}, log)
	if err := worker.Start(memQueue, cfg.EventsQueue); err != nil {
		log.WithError(err).Fatal("failed to start event worker")
	}
	log.Info("AMQP_URL not set, using in-memory event queue")
	return memQueue, func() {}
}
