package service

import (
	"context"
	"errors"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/model"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"go.uber.org/zap"
)

// CorrelationResolver locates the exactly-one ledger entry an inbound
// confirmation refers to. The provider references the same transaction by
// different identifiers across its endpoints, so matching runs through an
// ordered list of strategies, first match wins. Direct identifier matches
// are authoritative; the trailing amount heuristic only ever narrows a
// single candidate and reports ambiguity instead of guessing.
type CorrelationResolver interface {
	Resolve(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error)
}

type matchStrategy struct {
	name  string
	match func(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error)
}

type resolver struct {
	ledger     repository.LedgerRepository
	window     time.Duration
	strategies []matchStrategy
	logger     *zap.Logger
}

func NewCorrelationResolver(ledger repository.LedgerRepository, cfg *config.Config, logger *zap.Logger) CorrelationResolver {
	r := &resolver{ledger: ledger, window: cfg.Verification.MatchWindow, logger: logger}

	r.strategies = []matchStrategy{
		{name: "provider_order_id", match: r.byProviderOrderID},
		{name: "alternate_id", match: r.byAlternateID},
		{name: "metadata", match: r.byMetadata},
		{name: "amount_heuristic", match: r.byAmountHeuristic},
	}

	return r
}

func (r *resolver) Resolve(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	for _, strategy := range r.strategies {
		transaction, err := strategy.match(ctx, event)
		if err != nil {
			return nil, err
		}

		if transaction != nil {
			r.logger.Debug("Confirmation correlated",
				zap.String("strategy", strategy.name),
				zap.String("transactionID", transaction.ID),
				zap.String("providerOrderID", event.ProviderOrderID))
			return transaction, nil
		}
	}

	return nil, ErrCorrelationNotFound
}

func (r *resolver) byProviderOrderID(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	if event.ProviderOrderID == "" {
		return nil, nil
	}

	return r.lookup(r.ledger.FindByProviderOrderID(event.ProviderOrderID))
}

// byAlternateID matches either event identifier against the ids recorded in
// the transaction's alternate list. Covers the provider referencing the
// merchant order reference where another endpoint used its own payment id.
func (r *resolver) byAlternateID(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	for _, id := range eventIdentifiers(event) {
		transaction, err := r.lookup(r.ledger.FindByAlternateID(id))
		if err != nil {
			return nil, err
		}
		if transaction != nil {
			return transaction, nil
		}
	}

	return nil, nil
}

// byMetadata searches identifiers captured from earlier confirmation
// payloads that were never classified as primary or alternate.
func (r *resolver) byMetadata(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	for _, id := range eventIdentifiers(event) {
		transaction, err := r.lookup(r.ledger.FindByMetadataValue(id))
		if err != nil {
			return nil, err
		}
		if transaction != nil {
			return transaction, nil
		}
	}

	return nil, nil
}

// byAmountHeuristic is the last resort: a single PENDING top-up with the
// exact settled amount inside the recency window. Two or more candidates
// mean the event cannot be attributed safely.
func (r *resolver) byAmountHeuristic(ctx context.Context, event payprovider.ConfirmationEvent) (*model.Transaction, error) {
	if event.SettledAmount <= 0 {
		return nil, nil
	}

	since := time.Now().Add(-r.window)
	candidates, err := r.ledger.FindPendingByTypeAmount(model.TransactionTypeTopUp, event.SettledAmount, since)
	if err != nil {
		return nil, ErrDatabase
	}

	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return &candidates[0], nil
	default:
		r.logger.Warn("Amount heuristic matched multiple pending transactions",
			zap.Int64("amount", event.SettledAmount),
			zap.Int("candidates", len(candidates)))
		return nil, ErrCorrelationAmbiguous
	}
}

func (r *resolver) lookup(transaction *model.Transaction, err error) (*model.Transaction, error) {
	if err == nil {
		return transaction, nil
	}

	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, nil
	}

	return nil, ErrDatabase
}

func eventIdentifiers(event payprovider.ConfirmationEvent) []string {
	ids := make([]string, 0, 2)
	if event.ProviderOrderID != "" {
		ids = append(ids, event.ProviderOrderID)
	}
	if event.AlternateID != "" && event.AlternateID != event.ProviderOrderID {
		ids = append(ids, event.AlternateID)
	}
	return ids
}
