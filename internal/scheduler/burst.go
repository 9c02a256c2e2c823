package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"go.uber.org/zap"
)

// Burst polls a freshly created transaction at short intervals until it
// reaches a terminal state or the attempt and wall-clock caps run out.
// Most checkouts settle inside this window; whatever it misses the sweep
// picks up later.
type Burst struct {
	verify service.VerifyService
	clock  Clock
	cfg    config.Verification
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBurst(verify service.VerifyService, clock Clock, cfg *config.Config, logger *zap.Logger) *Burst {
	ctx, cancel := context.WithCancel(context.Background())
	return &Burst{verify: verify, clock: clock, cfg: cfg.Verification, logger: logger, ctx: ctx, cancel: cancel}
}

// Start launches the polling loop for one transaction and returns
// immediately. The loop runs on the scheduler's own context so an aborted
// HTTP request does not kill it.
func (b *Burst) Start(transactionID string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(transactionID)
	}()
}

func (b *Burst) run(transactionID string) {
	deadline := b.clock.Now().Add(b.cfg.BurstMaxElapsed)

	for attempt := 1; attempt <= b.cfg.BurstMaxAttempts; attempt++ {
		select {
		case <-b.ctx.Done():
			return
		case <-b.clock.After(b.cfg.BurstInterval):
		}

		if b.clock.Now().After(deadline) {
			b.logger.Info("Burst window elapsed, leaving transaction to sweep",
				zap.String("transactionID", transactionID),
				zap.Int("attempts", attempt-1))
			return
		}

		result, err := b.verify.VerifyOne(b.ctx, transactionID, service.VerifyModeBurst)
		if err != nil {
			if errors.Is(err, service.ErrTransactionNotFound) {
				return
			}
			b.logger.Warn("Burst verification attempt failed",
				zap.String("transactionID", transactionID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		switch result {
		case service.ResultPendingKept, service.ResultUnknownKept:
			continue
		default:
			b.logger.Info("Burst verification settled transaction",
				zap.String("transactionID", transactionID),
				zap.String("result", string(result)),
				zap.Int("attempts", attempt))
			return
		}
	}

	b.logger.Info("Burst attempts exhausted, leaving transaction to sweep",
		zap.String("transactionID", transactionID))
}

// Stop cancels in-flight loops and waits for them to exit.
func (b *Burst) Stop() {
	b.cancel()
	b.wg.Wait()
}
