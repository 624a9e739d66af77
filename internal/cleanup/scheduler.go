package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	janitor  *MediaJanitor
	interval time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewScheduler(janitor *MediaJanitor, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		janitor:  janitor,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start запускает планировщик задач
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting media cleanup scheduler", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop останавливает планировщик и ждёт завершения текущего прохода
func (s *Scheduler) Stop() {
	s.log.Info("stopping media cleanup scheduler")
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Выполняем сразу при старте
	if _, err := s.janitor.CleanupOrphanedMedia(ctx); err != nil {
		s.log.Error("initial media cleanup failed", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if _, err := s.janitor.CleanupOrphanedMedia(ctx); err != nil {
				s.log.Error("media cleanup failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("media cleanup stopped")
			return
		case <-ctx.Done():
			s.log.Info("media cleanup cancelled")
			return
		}
	}
}
