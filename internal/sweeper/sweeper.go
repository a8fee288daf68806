package sweeper

import (
	"context"
	"time"

	"ecommerce-backend/internal/repository"

	"go.uber.org/zap"
)

// SweeperService выполняет фоновую гигиену хранилища: снимает с продажи
// товары без остатка и удаляет истёкшие refresh токены.
type SweeperService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSweeperService(repo *repository.Repository, log *zap.Logger) *SweeperService {
	return &SweeperService{
		repo: repo,
		log:  log,
	}
}

// DisableOutOfStockProducts помечает отсутствующими товары с нулевым
// запасом и без доступных вариаций
func (s *SweeperService) DisableOutOfStockProducts(ctx context.Context) error {
	n, err := s.repo.Products.DisableOutOfStock(ctx)
	if err != nil {
		s.log.Error("failed to disable out of stock products", zap.Error(err))
		return err
	}
	if n > 0 {
		s.log.Info("disabled out of stock products", zap.Int64("count", n))
	}
	return nil
}

// CleanupExpiredTokens удаляет истёкшие refresh токены
func (s *SweeperService) CleanupExpiredTokens(ctx context.Context) error {
	n, err := s.repo.Refresh.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to cleanup expired refresh tokens", zap.Error(err))
		return err
	}
	if n > 0 {
		s.log.Info("cleaned up expired refresh tokens", zap.Int64("count", n))
	}
	return nil
}

// RunFullSweep выполняет все задачи сразу
func (s *SweeperService) RunFullSweep(ctx context.Context) error {
	s.log.Info("starting full sweep")

	if err := s.DisableOutOfStockProducts(ctx); err != nil {
		return err
	}
	if err := s.CleanupExpiredTokens(ctx); err != nil {
		return err
	}

	s.log.Info("full sweep completed")
	return nil
}
