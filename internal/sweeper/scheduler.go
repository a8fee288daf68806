package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	sweeper *SweeperService
	log     *zap.Logger
	stopCh  chan struct{}
}

func NewScheduler(sweeper *SweeperService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start запускает планировщик задач
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting sweep scheduler")

	go s.runStockSweep(ctx)
	go s.runTokenCleanup(ctx)
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.log.Info("stopping sweep scheduler")
	close(s.stopCh)
}

// runStockSweep снимает товары без остатка каждые 15 минут
func (s *Scheduler) runStockSweep(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	// Выполняем сразу при старте
	if err := s.sweeper.DisableOutOfStockProducts(ctx); err != nil {
		s.log.Error("initial stock sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := s.sweeper.DisableOutOfStockProducts(ctx); err != nil {
				s.log.Error("stock sweep failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("stock sweep stopped")
			return
		case <-ctx.Done():
			s.log.Info("stock sweep cancelled")
			return
		}
	}
}

// runTokenCleanup очищает истёкшие refresh токены каждые 30 минут
func (s *Scheduler) runTokenCleanup(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sweeper.CleanupExpiredTokens(ctx); err != nil {
				s.log.Error("token cleanup failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("token cleanup stopped")
			return
		case <-ctx.Done():
			s.log.Info("token cleanup cancelled")
			return
		}
	}
}

// RunOnceNow выполняет полную зачистку немедленно (для тестирования)
func (s *Scheduler) RunOnceNow(ctx context.Context) error {
	return s.sweeper.RunFullSweep(ctx)
}
