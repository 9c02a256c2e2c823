package publishers

import (
	"context"
	"encoding/json"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mq"
	"go.uber.org/zap"
)

// ReviewPublisher hands unattributable confirmations to the operations
// queue for manual placement.
type ReviewPublisher struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewReviewPublisher(publisher mq.Publisher, logger *zap.Logger) service.ReviewPublisher {
	return &ReviewPublisher{publisher: publisher, logger: logger}
}

func (p *ReviewPublisher) PublishReview(ctx context.Context, review service.ReviewCommand) error {
	body, err := json.Marshal(review)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, "", QueueReview, body); err != nil {
		return err
	}

	p.logger.Info("Published confirmation for manual review",
		zap.String("providerOrderID", review.ProviderOrderID),
		zap.String("reason", review.Reason))

	return nil
}
