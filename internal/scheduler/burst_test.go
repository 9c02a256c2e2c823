package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/internal/config"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/mocks"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/scheduler"
	"github.com/BekaChkhiro/homevend-server-sub000/internal/service"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const burstTransactionID = "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c"

// fakeClock fires every After immediately and advances its own time by one
// step per call, so the loop's interval and deadline logic runs without
// real sleeps.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Now(), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(c.step)
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

func burstConfig(maxAttempts int, maxElapsed time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Verification.BurstInterval = 5 * time.Second
	cfg.Verification.BurstMaxAttempts = maxAttempts
	cfg.Verification.BurstMaxElapsed = maxElapsed
	return cfg
}

func awaitSignal(t *testing.T, signal <-chan struct{}) {
	t.Helper()
	select {
	case <-signal:
	case <-time.After(5 * time.Second):
		t.Fatal("burst loop did not finish in time")
	}
}

func TestBurst_Start(t *testing.T) {
	t.Run("stops polling once transaction settles", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		clock := newFakeClock(time.Second)
		burst := scheduler.NewBurst(verify, clock, burstConfig(10, time.Hour), zap.NewNop())
		settled := make(chan struct{})

		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultPendingKept, nil).Twice()
		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultCredited, nil).Once().
			Run(func(args mock.Arguments) { close(settled) })

		burst.Start(burstTransactionID)
		awaitSignal(t, settled)
		burst.Stop()

		verify.AssertNumberOfCalls(t, "VerifyOne", 3)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		clock := newFakeClock(time.Second)
		burst := scheduler.NewBurst(verify, clock, burstConfig(4, time.Hour), zap.NewNop())
		exhausted := make(chan struct{})

		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultPendingKept, nil).Times(3)
		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultPendingKept, nil).Once().
			Run(func(args mock.Arguments) { close(exhausted) })

		burst.Start(burstTransactionID)
		awaitSignal(t, exhausted)
		burst.Stop()

		verify.AssertNumberOfCalls(t, "VerifyOne", 4)
	})

	t.Run("gives up once wall clock budget is spent", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		// Each tick advances one minute against a two minute budget, so the
		// deadline cuts the loop off long before the attempt cap.
		clock := newFakeClock(time.Minute)
		burst := scheduler.NewBurst(verify, clock, burstConfig(100, 2*time.Minute), zap.NewNop())
		lastAttempt := make(chan struct{})

		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultPendingKept, nil).Once()
		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ResultPendingKept, nil).Once().
			Run(func(args mock.Arguments) { close(lastAttempt) })

		burst.Start(burstTransactionID)
		awaitSignal(t, lastAttempt)
		burst.Stop()

		verify.AssertNumberOfCalls(t, "VerifyOne", 2)
	})

	t.Run("stops when transaction disappears", func(t *testing.T) {
		verify := &mocks.VerifyService{}
		clock := newFakeClock(time.Second)
		burst := scheduler.NewBurst(verify, clock, burstConfig(10, time.Hour), zap.NewNop())
		gone := make(chan struct{})

		verify.On("VerifyOne", mock.Anything, burstTransactionID, service.VerifyModeBurst).
			Return(service.ReconcileResult(""), service.ErrTransactionNotFound).Once().
			Run(func(args mock.Arguments) { close(gone) })

		burst.Start(burstTransactionID)
		awaitSignal(t, gone)
		burst.Stop()

		verify.AssertNumberOfCalls(t, "VerifyOne", 1)
	})
}
