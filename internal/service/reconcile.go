package service

import (
	"context"
	"errors"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/metrics"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"go.uber.org/zap"
)

type ReconcileResult string

// metadataKeyInsufficientBalance marks a refund debit that drove the
// account balance negative. Written by reconciliation, not the provider.
const metadataKeyInsufficientBalance = "insufficient_balance"

// auditMetadataKeys are annotations of our own that must survive the
// capture of later confirmation payloads.
var auditMetadataKeys = []string{metadataKeyInsufficientBalance}

const (
	ResultCredited         ReconcileResult = "CREDITED"
	ResultAlreadyProcessed ReconcileResult = "ALREADY_PROCESSED"
	ResultMarkedFailed     ReconcileResult = "MARKED_FAILED"
	ResultRefundDebited    ReconcileResult = "REFUND_DEBITED"
	ResultPendingKept      ReconcileResult = "PENDING_KEPT"
	ResultUnknownKept      ReconcileResult = "UNKNOWN_KEPT"
)

// ReconcileService applies a provider confirmation to the ledger entry and
// the owning account. This is the only place a balance is ever mutated.
// Webhook delivery, burst polling, the background sweep and user-triggered
// checks may all race here for the same transaction; the per-account row
// lock totally orders them and the COMPLETED check makes every loser a
// no-op.
type ReconcileService interface {
	Apply(ctx context.Context, transactionID string, event payprovider.ConfirmationEvent) (ReconcileResult, error)
}

type reconcile struct {
	ledger    repository.LedgerRepository
	accounts  repository.AccountRepository
	txManager repository.TxManager
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewReconcileService(ledger repository.LedgerRepository, accounts repository.AccountRepository,
	txManager repository.TxManager, metrics *metrics.Metrics, logger *zap.Logger) ReconcileService {
	return &reconcile{ledger: ledger, accounts: accounts, txManager: txManager, metrics: metrics, logger: logger}
}

func (r *reconcile) Apply(ctx context.Context, transactionID string, event payprovider.ConfirmationEvent) (ReconcileResult, error) {
	var result ReconcileResult

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		transaction, err := r.ledger.GetByIDForUpdate(ctx, transactionID)
		if err != nil {
			if errors.Is(err, repository.ErrTransactionNotFound) {
				return ErrTransactionNotFound
			}
			return ErrDatabase
		}

		account, err := r.accounts.GetForUpdate(ctx, transaction.AccountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrAccountNotFound
			}
			return ErrDatabase
		}

		newBalance, balanceChanged := int64(0), false
		result, newBalance, balanceChanged = applyTransition(transaction, account.Balance, event, time.Now())

		if err := r.ledger.Update(ctx, transaction); err != nil {
			r.logger.Error("Failed to persist transaction transition",
				zap.String("transactionID", transaction.ID),
				zap.Error(err))
			return ErrDatabase
		}

		if !balanceChanged {
			return nil
		}

		if newBalance < 0 {
			r.logger.Warn("Refund debit drove account balance negative",
				zap.String("transactionID", transaction.ID),
				zap.Int64("accountID", account.ID),
				zap.Int64("balance", newBalance))
		}

		if err := r.accounts.UpdateBalance(ctx, account.ID, newBalance); err != nil {
			r.logger.Error("Failed to persist account balance",
				zap.Int64("accountID", account.ID),
				zap.Error(err))
			return ErrDatabase
		}

		return nil
	})

	if err != nil {
		return "", err
	}

	r.metrics.RecordReconciliation(string(event.Outcome), string(result))

	r.logger.Info("Reconciliation applied",
		zap.String("transactionID", transactionID),
		zap.String("outcome", string(event.Outcome)),
		zap.String("result", string(result)))

	return result, nil
}

// applyTransition is the single exhaustive transition function: it takes
// the full prior state plus the confirmation and produces the full next
// state and the new account balance. No branch mutates fields implicitly;
// every path records the raw payload for audit.
func applyTransition(transaction *model.Transaction, balance int64, event payprovider.ConfirmationEvent,
	now time.Time) (ReconcileResult, int64, bool) {

	recordConfirmation(transaction, event, now)

	switch event.Outcome {
	case payprovider.OutcomeSuccess:
		if transaction.Status != model.TransactionStatusPending {
			// Duplicate delivery of an applied confirmation, or a success
			// signal for a transaction already failed: never reverses a
			// terminal state.
			if transaction.Status == model.TransactionStatusCompleted {
				return ResultAlreadyProcessed, balance, false
			}
			return ResultUnknownKept, balance, false
		}

		before := balance
		after := before + transaction.Amount
		transaction.Status = model.TransactionStatusCompleted
		transaction.BalanceBefore = &before
		transaction.BalanceAfter = &after
		transaction.CompletedAt = &now
		return ResultCredited, after, true

	case payprovider.OutcomeRejected:
		if transaction.Status != model.TransactionStatusPending {
			return ResultAlreadyProcessed, balance, false
		}

		transaction.Status = model.TransactionStatusFailed
		return ResultMarkedFailed, balance, false

	case payprovider.OutcomeRefunded, payprovider.OutcomePartiallyRefunded:
		switch transaction.Status {
		case model.TransactionStatusCompleted:
			// The one sanctioned exit from COMPLETED. The debit is bounded
			// by what is still attributable to this transaction and is
			// recorded even when it drives the balance negative.
			refund := event.SettledAmount
			remaining := transaction.Amount - transaction.RefundedAmount
			if refund <= 0 || refund > remaining {
				refund = remaining
			}

			newBalance := balance - refund
			if newBalance < 0 {
				transaction.ProviderMetadata[metadataKeyInsufficientBalance] = "true"
			}

			transaction.RefundedAmount += refund
			transaction.Status = model.TransactionStatusFailed
			transaction.WasCompleted = true
			return ResultRefundDebited, newBalance, true

		case model.TransactionStatusPending:
			// Refunded before the credit was ever applied: nothing to
			// debit, the payment simply never settles.
			transaction.Status = model.TransactionStatusFailed
			return ResultMarkedFailed, balance, false

		default:
			return ResultAlreadyProcessed, balance, false
		}

	case payprovider.OutcomePendingAuth:
		// Pre-authorization is not settlement.
		return ResultPendingKept, balance, false

	default:
		return ResultUnknownKept, balance, false
	}
}

// recordConfirmation captures the raw payload for audit and promotes newly
// seen identifiers so later confirmations can correlate directly.
func recordConfirmation(transaction *model.Transaction, event payprovider.ConfirmationEvent, now time.Time) {
	if len(event.RawPayload) > 0 {
		metadata := make(model.Metadata, len(event.RawPayload)+len(auditMetadataKeys))
		for key, value := range event.RawPayload {
			metadata[key] = value
		}
		for _, key := range auditMetadataKeys {
			if value, ok := transaction.ProviderMetadata[key]; ok {
				metadata[key] = value
			}
		}
		transaction.ProviderMetadata = metadata
	} else if transaction.ProviderMetadata == nil {
		transaction.ProviderMetadata = model.Metadata{}
	}

	if event.ProviderOrderID != "" {
		if transaction.ProviderOrderID == nil {
			id := event.ProviderOrderID
			transaction.ProviderOrderID = &id
		} else if *transaction.ProviderOrderID != event.ProviderOrderID {
			appendAlternateID(transaction, event.ProviderOrderID)
		}
	}

	if event.AlternateID != "" {
		if transaction.ProviderOrderID == nil || *transaction.ProviderOrderID != event.AlternateID {
			appendAlternateID(transaction, event.AlternateID)
		}
	}

	transaction.LastVerifiedAt = &now
	transaction.UpdatedAt = now
}

func appendAlternateID(transaction *model.Transaction, id string) {
	if transaction.HasAlternateID(id) {
		return
	}
	transaction.AlternateIDs = append(transaction.AlternateIDs, id)
}
