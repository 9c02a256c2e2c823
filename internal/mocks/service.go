package mocks

import (
	"context"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/stretchr/testify/mock"
)

type ReconcileService struct {
	mock.Mock
}

func (m *ReconcileService) Apply(ctx context.Context, transactionID string, event payprovider.ConfirmationEvent) (service.ReconcileResult, error) {
	args := m.Called(ctx, transactionID, event)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}

type VerifyService struct {
	mock.Mock
}

func (m *VerifyService) VerifyOne(ctx context.Context, transactionID string, mode string) (service.ReconcileResult, error) {
	args := m.Called(ctx, transactionID, mode)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}

type VerifyQueueService struct {
	mock.Mock
}

func (m *VerifyQueueService) FindVerificationsToQueue(ctx context.Context) ([]service.VerifyTransactionCommand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.VerifyTransactionCommand), args.Error(1)
}

type CorrelationResolver struct {
	mock.Mock
}

func (m *CorrelationResolver) Resolve(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

type ReviewPublisher struct {
	mock.Mock
}

func (m *ReviewPublisher) PublishReview(ctx context.Context, review service.ReviewCommand) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

type BurstStarter struct {
	mock.Mock
}

func (m *BurstStarter) Start(transactionID string) {
	m.Called(transactionID)
}
