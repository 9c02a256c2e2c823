package service

import (
	"context"
	"errors"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/constants"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"go.uber.org/zap"
)

const (
	VerifyModeBurst    = "burst"
	VerifyModeSweep    = "sweep"
	VerifyModeOnDemand = "on_demand"
)

// VerifyService runs a single active status check against the provider and
// feeds the result through reconciliation. All three polling modes and the
// consumer worker call the same entry point.
type VerifyService interface {
	VerifyOne(ctx context.Context, transactionID string, mode string) (ReconcileResult, error)
}

type verify struct {
	ledger    repository.LedgerRepository
	gateway   payprovider.Gateway
	reconcile ReconcileService
	cfg       config.Verification
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewVerifyService(ledger repository.LedgerRepository, gateway payprovider.Gateway, reconcile ReconcileService,
	cfg *config.Config, metrics *metrics.Metrics, logger *zap.Logger) VerifyService {
	return &verify{ledger: ledger, gateway: gateway, reconcile: reconcile,
		cfg: cfg.Verification, metrics: metrics, logger: logger}
}

func (v *verify) VerifyOne(ctx context.Context, transactionID string, mode string) (ReconcileResult, error) {
	transaction, err := v.ledger.GetByID(transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return "", ErrTransactionNotFound
		}
		return "", ErrDatabase
	}

	if transaction.IsTerminal() {
		v.metrics.RecordVerification(mode, "already_terminal")
		return ResultAlreadyProcessed, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, v.cfg.CallTimeout)
	defer cancel()

	// The status poll keys on our own transaction ID: it is the merchant
	// order reference sent at creation, so it resolves even for orders
	// whose provider ID never made it back to us.
	event, err := v.gateway.GetStatus(callCtx, transaction.ID)
	if err != nil {
		if errors.Is(err, payprovider.ErrOrderNotFound) {
			// The provider has no record yet. Creation may still be in
			// flight on their side; leave the transaction for the sweep.
			v.metrics.RecordVerification(mode, "order_not_found")
			v.logger.Warn("Provider has no order for pending transaction",
				zap.String("transactionID", transaction.ID),
				zap.String("mode", mode))
			if stampErr := v.stampVerified(ctx, transaction); stampErr != nil {
				return "", stampErr
			}
			return ResultPendingKept, nil
		}

		var rejection payprovider.RejectionError
		if errors.As(err, &rejection) {
			v.metrics.RecordVerification(mode, "rejected")
			v.logger.Warn("Provider rejected status request",
				zap.String("transactionID", transaction.ID),
				zap.Int("code", rejection.Code),
				zap.String("message", rejection.Message))
			return "", NewServiceError(constants.ErrCodeGatewayRejected, err)
		}

		v.metrics.RecordVerification(mode, "gateway_error")
		v.logger.Error("Status request failed",
			zap.String("transactionID", transaction.ID),
			zap.String("mode", mode),
			zap.Error(err))
		return "", NewServiceError(constants.ErrCodeGatewayUnavailable, err)
	}

	result, err := v.reconcile.Apply(ctx, transaction.ID, event)
	if err != nil {
		v.metrics.RecordVerification(mode, "reconcile_error")
		return "", err
	}

	v.metrics.RecordVerification(mode, string(result))
	return result, nil
}

// stampVerified records the attempt on paths that never reach Apply, so
// the sweep ordering still observes that the transaction was looked at.
func (v *verify) stampVerified(ctx context.Context, transaction *model.Transaction) error {
	now := time.Now()
	transaction.LastVerifiedAt = &now
	if err := v.ledger.Update(ctx, transaction); err != nil {
		return ErrDatabase
	}
	return nil
}
