package finalizer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the sweeps on a fixed tick. Both sweeps run every tick;
// the per-company and per-team clock gates inside the service decide whether
// anything actually happens, so the tick itself carries no timezone logic.
type Scheduler struct {
	service      Service
	TickInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	logger *zap.Logger
}

func NewScheduler(service Service) *Scheduler {
	return &Scheduler{
		service:      service,
		TickInterval: time.Hour,
		stop:         make(chan struct{}),
		logger:       zap.L().Named("finalizer.scheduler"),
	}
}

func (sc *Scheduler) Start() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.ticker = time.NewTicker(sc.TickInterval)
	sc.wg.Add(1)
	go sc.run()

	sc.logger.Info("finalizer scheduler started", zap.Duration("tick_interval", sc.TickInterval))
}

func (sc *Scheduler) Stop() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.ticker == nil {
		return
	}
	sc.ticker.Stop()
	close(sc.stop)
	sc.wg.Wait()

	sc.logger.Info("finalizer scheduler stopped")
}

func (sc *Scheduler) run() {
	defer sc.wg.Done()

	for {
		select {
		case <-sc.stop:
			return
		case <-sc.ticker.C:
			sc.tick()
		}
	}
}

func (sc *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now().UTC()

	if _, err := sc.service.RunYesterdaySweep(ctx, now, false); err != nil {
		sc.logger.Error("yesterday sweep failed", zap.Error(err))
	}
	if _, err := sc.service.RunShiftEndSweep(ctx, now, false); err != nil {
		sc.logger.Error("shift end sweep failed", zap.Error(err))
	}
}
