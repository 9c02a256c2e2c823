package service

import (
	"context"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/repository"
	"go.uber.org/zap"
)

// VerifyQueueService selects the stale PENDING transactions the sweep
// publisher should enqueue. A transaction qualifies once its creation grace
// period has passed and it has not been checked within the last sweep
// interval; the burst covers everything younger.
type VerifyQueueService interface {
	FindVerificationsToQueue(ctx context.Context) ([]VerifyTransactionCommand, error)
}

type verifyQueue struct {
	ledger repository.LedgerRepository
	cfg    config.Verification
	logger *zap.Logger
}

func NewVerifyQueueService(ledger repository.LedgerRepository, cfg *config.Config, logger *zap.Logger) VerifyQueueService {
	return &verifyQueue{ledger: ledger, cfg: cfg.Verification, logger: logger}
}

func (s *verifyQueue) FindVerificationsToQueue(ctx context.Context) ([]VerifyTransactionCommand, error) {
	now := time.Now()
	createdBefore := now.Add(-s.cfg.SweepGrace)
	checkedBefore := now.Add(-s.cfg.SweepInterval)

	transactions, err := s.ledger.FindPendingForSweep(createdBefore, checkedBefore, s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.Error("Failed to select transactions for sweep", zap.Error(err))
		return nil, ErrDatabase
	}

	commands := make([]VerifyTransactionCommand, 0, len(transactions))
	for _, transaction := range transactions {
		commands = append(commands, VerifyTransactionCommand{
			TransactionID: transaction.ID,
			Mode:          VerifyModeSweep,
		})
	}

	return commands, nil
}
