package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/auth"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/checkout/internal/otel"
	"github.com/corray333/backend-labs/checkout/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/checkout/internal/service/services/pricing"
	httptransport "github.com/corray333/backend-labs/checkout/internal/transport/http"
	"github.com/corray333/backend-labs/checkout/internal/worker/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outbox.Worker
	otel           *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()

	queue := viper.GetString("rabbitmq.queue")
	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithAuthenticator(auth.MustNewClient()),
		ordersvc.WithShippingPolicy(pricing.FlatShipping{Cents: viper.GetInt64("pricing.shipping_cents")}),
		ordersvc.WithEventQueue(queue, viper.GetInt("rabbitmq.outbox.max_retries")),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, postgresClient)
	transport.RegisterRoutes()

	a := &App{
		orderSvc:       orderSvc,
		transport:      transport,
		postgresClient: postgresClient,
		otel:           otelController,
	}

	if viper.GetBool("rabbitmq.enabled") {
		a.rabbitClient = rabbitmq.MustNewClient()
		if _, err := a.rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{Name: queue, Durable: true}); err != nil {
			panic("failed to declare queue " + queue + ": " + err.Error())
		}
		a.outboxWorker = outbox.NewWorker(
			outboxrepo.NewOutboxRepository(postgresClient.Pool()),
			a.rabbitClient.Channel(),
		)
	}

	return a
}

// Run starts the application and blocks until an interrupt signal or a
// component failure, then shuts everything down gracefully.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	if a.outboxWorker != nil {
		g.Go(func() error {
			a.outboxWorker.Start(gctx)

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.transport.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped gracefully")
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Application error", "error", err)
	}

	a.close()
	slog.Info("Application shutdown complete")
}

func (a *App) close() {
	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}
}
