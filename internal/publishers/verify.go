package publishers

import (
	"context"
	"encoding/json"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"go.uber.org/zap"
)

const (
	QueueVerify = "payments.verify"
	QueueReview = "payments.review"
)

// VerifyPublisher fans stale PENDING transactions out to the verification
// workers. One message per transaction so a poisoned entry never blocks
// the rest of the batch.
type VerifyPublisher struct {
	queue     service.VerifyQueueService
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewVerifyPublisher(queue service.VerifyQueueService, publisher mq.Publisher, logger *zap.Logger) *VerifyPublisher {
	return &VerifyPublisher{queue: queue, publisher: publisher, logger: logger}
}

func (p *VerifyPublisher) PublishDueVerifications(ctx context.Context) error {
	commands, err := p.queue.FindVerificationsToQueue(ctx)
	if err != nil {
		return err
	}

	if len(commands) == 0 {
		return nil
	}

	published := 0
	for _, cmd := range commands {
		body, err := json.Marshal(cmd)
		if err != nil {
			p.logger.Error("Failed to marshal verify command",
				zap.String("transactionID", cmd.TransactionID),
				zap.Error(err))
			continue
		}

		if err := p.publisher.Publish(ctx, "", QueueVerify, body); err != nil {
			p.logger.Error("Failed to publish verify command",
				zap.String("transactionID", cmd.TransactionID),
				zap.Error(err))
			continue
		}
		published++
	}

	p.logger.Info("Queued sweep verifications",
		zap.Int("selected", len(commands)),
		zap.Int("published", published))

	return nil
}
