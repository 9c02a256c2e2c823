package main

import (
	"context"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/consumers"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/database"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/httpclient"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,

			database.NewConnection,
			NewMQConnection,
			NewMQConsumer,

			repository.NewLedgerRepository,
			repository.NewAccountRepository,
			repository.NewTransactionManager,

			NewPaymentGateway,
			service.NewReconcileService,
			service.NewVerifyService,

			consumers.NewVerifyConsumer,
		),
		fx.Invoke(runVerifyConsumer),
	).Run()
}

func runVerifyConsumer(cfg *config.Config, verifyConsumer *consumers.VerifyConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{consumers.QueueVerify}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			go func() {
				if err := verifyConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("verify consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping verify consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewPaymentGateway(cfg *config.Config) payprovider.Gateway {
	client := httpclient.NewHTTPClient(cfg.Provider.Timeout)
	return payprovider.NewFlittGateway(cfg.Provider, client)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}
