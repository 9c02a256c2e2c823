package consumers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"go.uber.org/zap"
)

const (
	QueueVerify   = "payments.verify"
	prefetchCount = 8
)

// VerifyConsumer drains the sweep queue: each message is one transaction
// to check against the provider. Gateway outages requeue the message;
// everything else is settled on first delivery.
type VerifyConsumer struct {
	consumer mq.Consumer
	verify   service.VerifyService
	logger   *zap.Logger
}

func NewVerifyConsumer(consumer mq.Consumer, verify service.VerifyService, logger *zap.Logger) *VerifyConsumer {
	return &VerifyConsumer{consumer: consumer, verify: verify, logger: logger}
}

func (c *VerifyConsumer) Consume(ctx context.Context) error {
	return c.consumer.Consume(ctx, prefetchCount, QueueVerify, c.Handle)
}

func (c *VerifyConsumer) Handle(ctx context.Context, body []byte) error {
	var cmd service.VerifyTransactionCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		c.logger.Error("Failed to unmarshal verify command", zap.Error(err))
		return err
	}

	mode := cmd.Mode
	if mode == "" {
		mode = service.VerifyModeSweep
	}

	result, err := c.verify.VerifyOne(ctx, cmd.TransactionID, mode)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			c.logger.Warn("Verify command references unknown transaction",
				zap.String("transactionID", cmd.TransactionID))
			return err
		}

		var serviceErr service.Error
		if errors.As(err, &serviceErr) && serviceErr.Code == constants.ErrCodeGatewayUnavailable {
			c.logger.Warn("Gateway unavailable, requeueing verification",
				zap.String("transactionID", cmd.TransactionID),
				zap.Error(err))
			return mq.Temporary(err)
		}

		c.logger.Error("Verification failed",
			zap.String("transactionID", cmd.TransactionID),
			zap.Error(err))
		return err
	}

	c.logger.Info("Sweep verification processed",
		zap.String("transactionID", cmd.TransactionID),
		zap.String("result", string(result)))

	return nil
}
