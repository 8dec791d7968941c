package service

import (
	"context"
	"time"

	"companion-counselling-be/internal/pkg/logger"
	"companion-counselling-be/internal/repository/unitofwork"
)

// IReaperService expires rooms whose participant never came back to end them.
type IReaperService interface {
	Run(ctx context.Context, interval time.Duration)
	Sweep(ctx context.Context) (int64, error)
}

type reaperService struct {
	uowFactory unitofwork.RepositoryFactory
	maxAge     time.Duration
	now        Clock
	logger     logger.ILogger
}

func NewReaperService(uowFactory unitofwork.RepositoryFactory, maxAge time.Duration, clock Clock, log logger.ILogger) IReaperService {
	return &reaperService{
		uowFactory: uowFactory,
		maxAge:     maxAge,
		now:        clockOrDefault(clock),
		logger:     log,
	}
}

// Run blocks until ctx is done. A non-positive interval disables the sweep.
func (s *reaperService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("ReaperService", "Sweep failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func (s *reaperService) Sweep(ctx context.Context) (int64, error) {
	now := s.now()
	uow := s.uowFactory.NewUnitOfWork(ctx)
	expired, err := uow.VideoSessionRepository().ExpireActiveCreatedBefore(ctx, now.Add(-s.maxAge), now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("ReaperService", "Expired stale sessions", map[string]interface{}{"count": expired})
	}
	return expired, nil
}
