package main

import (
	"context"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/database"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/publishers"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,

			database.NewConnection,
			NewMQConnection,
			NewMQPublisher,

			repository.NewLedgerRepository,

			service.NewVerifyQueueService,

			publishers.NewVerifyPublisher,
		),
		fx.Invoke(runVerifyPublisher),
	).Run()
}

func runVerifyPublisher(cfg *config.Config, publisher *publishers.VerifyPublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.QueueVerify}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go func() {
				ticker := time.NewTicker(cfg.Verification.SweepInterval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := publisher.PublishDueVerifications(appCtx); err != nil {
							logger.Error("failed to publish due verifications", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("verify publisher started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping verify publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}
