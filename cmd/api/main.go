package main

import (
	"context"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/api"
	v1 "github.com/BekaChkhiro/homevend-server-sub000/internal/api/v1"
	xvalidator "github.com/BekaChkhiro/homevend-server-sub000/internal/api/validator"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/database"
	apperrors "github.com/BekaChkhiro/homevend-server-sub000/internal/errors"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/publishers"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/scheduler"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/httpclient"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,
			NewFiberApp,
			NewValidator,

			database.NewConnection,
			NewMQConnection,
			NewMQPublisher,

			repository.NewLedgerRepository,
			repository.NewAccountRepository,
			repository.NewTransactionManager,

			NewPaymentGateway,
			scheduler.NewClock,
			scheduler.NewBurst,
			NewBurstStarter,
			publishers.NewReviewPublisher,

			service.NewReconcileService,
			service.NewVerifyService,
			service.NewCorrelationResolver,
			service.NewWebhookService,
			service.NewTopUpService,

			v1.NewHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, m *metrics.Metrics,
	logger *zap.Logger, burst *scheduler.Burst, rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))
	api.SetupRoutes(app, handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.QueueReview}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			burst.Stop()
			if err := app.ShutdownWithContext(ctx); err != nil {
				return err
			}
			return rabbit.Close()
		},
	})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apperrors.ErrorHandler()})
}

func NewValidator() xvalidator.IXValidator {
	return xvalidator.NewXValidator(validator.New())
}

func NewPaymentGateway(cfg *config.Config) payprovider.Gateway {
	client := httpclient.NewHTTPClient(cfg.Provider.Timeout)
	return payprovider.NewFlittGateway(cfg.Provider, client)
}

func NewBurstStarter(burst *scheduler.Burst) service.BurstStarter {
	return burst
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}
