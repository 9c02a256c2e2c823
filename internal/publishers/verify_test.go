package publishers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/mocks"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/publishers"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	pkgmocks "github.com/BekaChkhiro/homevend-server-sub000/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const testTransactionID = "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c"

func TestVerifyPublisher_PublishDueVerifications(t *testing.T) {
	t.Run("publishes one message per stale transaction", func(t *testing.T) {
		queue := &mocks.VerifyQueueService{}
		publisher := &pkgmocks.Publisher{}
		p := publishers.NewVerifyPublisher(queue, publisher, zap.NewNop())

		commands := []service.VerifyTransactionCommand{
			{TransactionID: testTransactionID, Mode: service.VerifyModeSweep},
			{TransactionID: "d4b2f901-6c3e-4d7f-8b80-2e3f4a5b6c7d", Mode: service.VerifyModeSweep},
		}

		queue.On("FindVerificationsToQueue", mock.Anything).Return(commands, nil)
		publisher.On("Publish", mock.Anything, "", publishers.QueueVerify,
			mock.MatchedBy(func(body []byte) bool {
				var cmd service.VerifyTransactionCommand
				return json.Unmarshal(body, &cmd) == nil && cmd.Mode == service.VerifyModeSweep
			})).Return(nil).Times(2)

		err := p.PublishDueVerifications(context.Background())

		assert.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("skips publishing when nothing is due", func(t *testing.T) {
		queue := &mocks.VerifyQueueService{}
		publisher := &pkgmocks.Publisher{}
		p := publishers.NewVerifyPublisher(queue, publisher, zap.NewNop())

		queue.On("FindVerificationsToQueue", mock.Anything).
			Return([]service.VerifyTransactionCommand{}, nil)

		err := p.PublishDueVerifications(context.Background())

		assert.NoError(t, err)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("a failed publish does not block the rest of the batch", func(t *testing.T) {
		queue := &mocks.VerifyQueueService{}
		publisher := &pkgmocks.Publisher{}
		p := publishers.NewVerifyPublisher(queue, publisher, zap.NewNop())

		commands := []service.VerifyTransactionCommand{
			{TransactionID: testTransactionID, Mode: service.VerifyModeSweep},
			{TransactionID: "d4b2f901-6c3e-4d7f-8b80-2e3f4a5b6c7d", Mode: service.VerifyModeSweep},
		}

		queue.On("FindVerificationsToQueue", mock.Anything).Return(commands, nil)
		publisher.On("Publish", mock.Anything, "", publishers.QueueVerify, mock.Anything).
			Return(assert.AnError).Once()
		publisher.On("Publish", mock.Anything, "", publishers.QueueVerify, mock.Anything).
			Return(nil).Once()

		err := p.PublishDueVerifications(context.Background())

		assert.NoError(t, err)
		publisher.AssertNumberOfCalls(t, "Publish", 2)
	})
}

func TestReviewPublisher_PublishReview(t *testing.T) {
	t.Run("publishes review command to review queue", func(t *testing.T) {
		publisher := &pkgmocks.Publisher{}
		p := publishers.NewReviewPublisher(publisher, zap.NewNop())

		review := service.ReviewCommand{
			ProviderOrderID: "805243938",
			Outcome:         "SUCCESS",
			SettledAmount:   5000,
			Reason:          "not_found",
		}

		publisher.On("Publish", mock.Anything, "", publishers.QueueReview,
			mock.MatchedBy(func(body []byte) bool {
				var got service.ReviewCommand
				return json.Unmarshal(body, &got) == nil &&
					got.ProviderOrderID == "805243938" &&
					got.Reason == "not_found"
			})).Return(nil)

		err := p.PublishReview(context.Background(), review)

		assert.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("propagates broker failure", func(t *testing.T) {
		publisher := &pkgmocks.Publisher{}
		p := publishers.NewReviewPublisher(publisher, zap.NewNop())

		publisher.On("Publish", mock.Anything, "", publishers.QueueReview, mock.Anything).
			Return(assert.AnError)

		err := p.PublishReview(context.Background(), service.ReviewCommand{Reason: "ambiguous"})

		assert.Error(t, err)
	})
}
