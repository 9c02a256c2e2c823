package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BurstStarter kicks off the short aggressive polling window that follows
// order creation.
type BurstStarter interface {
	Start(transactionID string)
}

type TopUpService interface {
	Initiate(ctx context.Context, cmd InitiateTopUpCommand) (InitiateTopUpResult, error)
	GetStatus(ctx context.Context, transactionID string) (TransactionView, error)
	VerifyNow(ctx context.Context, transactionID string) (TransactionView, error)
	VerifyAllPendingForAccount(ctx context.Context, accountID int64) ([]TransactionView, error)
}

type topUp struct {
	ledger   repository.LedgerRepository
	accounts repository.AccountRepository
	gateway  payprovider.Gateway
	verify   VerifyService
	burst    BurstStarter
	cfg      payprovider.Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewTopUpService(ledger repository.LedgerRepository, accounts repository.AccountRepository,
	gateway payprovider.Gateway, verify VerifyService, burst BurstStarter,
	cfg *config.Config, metrics *metrics.Metrics, logger *zap.Logger) TopUpService {
	return &topUp{ledger: ledger, accounts: accounts, gateway: gateway, verify: verify,
		burst: burst, cfg: cfg.Provider, metrics: metrics, logger: logger}
}

// Initiate opens a PENDING ledger entry, registers the order with the
// provider and hands the caller a checkout URL. The ledger entry is written
// first so a crash between the two steps leaves a record the sweep can
// resolve, never an untracked provider order.
func (t *topUp) Initiate(ctx context.Context, cmd InitiateTopUpCommand) (InitiateTopUpResult, error) {
	if _, err := t.accounts.GetByID(cmd.AccountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return InitiateTopUpResult{}, NewServiceError(constants.ErrCodeAccountNotFound, ErrAccountNotFound)
		}
		return InitiateTopUpResult{}, ErrDatabase
	}

	transaction := &model.Transaction{
		ID:           uuid.NewString(),
		AccountID:    cmd.AccountID,
		Type:         model.TransactionTypeTopUp,
		Status:       model.TransactionStatusPending,
		Amount:       cmd.Amount,
		AlternateIDs: model.StringList{},
	}
	transaction.AlternateIDs = append(transaction.AlternateIDs, transaction.ID)

	if err := t.ledger.Create(ctx, transaction); err != nil {
		t.logger.Error("Failed to create ledger entry", zap.Error(err))
		return InitiateTopUpResult{}, ErrDatabase
	}

	order, err := t.createOrder(ctx, transaction, cmd.Description)
	if err != nil {
		transaction.Status = model.TransactionStatusFailed
		if updateErr := t.ledger.Update(ctx, transaction); updateErr != nil {
			t.logger.Error("Failed to mark transaction failed after gateway error",
				zap.String("transactionID", transaction.ID),
				zap.Error(updateErr))
		}
		return InitiateTopUpResult{}, err
	}

	if order.ProviderOrderID != "" {
		id := order.ProviderOrderID
		transaction.ProviderOrderID = &id
	}
	if err := t.ledger.Update(ctx, transaction); err != nil {
		t.logger.Error("Failed to store provider order id",
			zap.String("transactionID", transaction.ID),
			zap.Error(err))
		return InitiateTopUpResult{}, ErrDatabase
	}

	t.burst.Start(transaction.ID)

	t.logger.Info("Top-up initiated",
		zap.String("transactionID", transaction.ID),
		zap.Int64("accountID", cmd.AccountID),
		zap.Int64("amount", cmd.Amount))

	return InitiateTopUpResult{TransactionID: transaction.ID, CheckoutURL: order.CheckoutURL}, nil
}

func (t *topUp) createOrder(ctx context.Context, transaction *model.Transaction, description string) (payprovider.CreateOrderResponse, error) {
	request := payprovider.CreateOrderRequest{
		OrderRef:    transaction.ID,
		Amount:      transaction.Amount,
		Currency:    t.cfg.Currency,
		Description: description,
		CallbackURL: t.cfg.CallbackURL,
		ResponseURL: t.cfg.ResponseURL,
	}

	var lastErr error
	for attempt := 1; attempt <= t.cfg.MaxRetries; attempt++ {
		start := time.Now()
		order, err := t.gateway.CreateOrder(ctx, request)
		if err == nil {
			t.metrics.RecordGatewayRequest("create_order", "success", time.Since(start))
			return order, nil
		}

		var rejection payprovider.RejectionError
		if errors.As(err, &rejection) {
			t.metrics.RecordGatewayRequest("create_order", "rejected", time.Since(start))
			t.logger.Warn("Provider rejected order",
				zap.String("transactionID", transaction.ID),
				zap.Int("code", rejection.Code),
				zap.String("message", rejection.Message))
			return payprovider.CreateOrderResponse{}, NewServiceError(constants.ErrCodeGatewayRejected, err)
		}

		t.metrics.RecordGatewayRequest("create_order", "error", time.Since(start))
		t.logger.Warn("Order creation attempt failed",
			zap.String("transactionID", transaction.ID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		lastErr = err
	}

	return payprovider.CreateOrderResponse{},
		NewServiceError(constants.ErrCodeGatewayUnavailable, fmt.Errorf("order creation exhausted retries: %w", lastErr))
}

func (t *topUp) GetStatus(ctx context.Context, transactionID string) (TransactionView, error) {
	transaction, err := t.ledger.GetByID(transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return TransactionView{}, NewServiceError(constants.ErrCodeTransactionNotFound, ErrTransactionNotFound)
		}
		return TransactionView{}, ErrDatabase
	}

	return NewTransactionView(transaction), nil
}

// VerifyNow runs one on-demand check and reports whatever state the
// transaction lands in. A gateway outage is not an error to the caller;
// the transaction simply remains pending.
func (t *topUp) VerifyNow(ctx context.Context, transactionID string) (TransactionView, error) {
	_, err := t.verify.VerifyOne(ctx, transactionID, VerifyModeOnDemand)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return TransactionView{}, NewServiceError(constants.ErrCodeTransactionNotFound, err)
		}

		var serviceErr Error
		if !errors.As(err, &serviceErr) || serviceErr.Code != constants.ErrCodeGatewayUnavailable {
			return TransactionView{}, err
		}
	}

	return t.GetStatus(ctx, transactionID)
}

func (t *topUp) VerifyAllPendingForAccount(ctx context.Context, accountID int64) ([]TransactionView, error) {
	if _, err := t.accounts.GetByID(accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, NewServiceError(constants.ErrCodeAccountNotFound, ErrAccountNotFound)
		}
		return nil, ErrDatabase
	}

	pending, err := t.ledger.FindPendingByAccount(accountID, maxAccountVerifyBatch)
	if err != nil {
		return nil, ErrDatabase
	}

	views := make([]TransactionView, 0, len(pending))
	for i := range pending {
		view, err := t.VerifyNow(ctx, pending[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

const maxAccountVerifyBatch = 50
