package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"books-commons/internal/config"
	"books-commons/internal/shared"
	"books-commons/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	catalog   config.CatalogConfig
}

func NewScheduler(redis asynq.RedisConnOpt, catalog config.CatalogConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		catalog:   catalog,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerEnrichSweepJob()
}

// ================================================
// Catalog enrichment sweep (mặc định 3 AM UTC hằng ngày)
// ================================================
// Bắt lại các book mà enqueue lúc tạo bị lỗi, hoặc provider lúc đó chưa có dữ liệu.
func (s *Scheduler) registerEnrichSweepJob() error {
	task := asynq.NewTask(shared.TypeCatalogEnrichSweep, nil)

	_, err := s.scheduler.Register(
		s.catalog.EnrichSweepCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CatalogEnrichSweep job", err)
		return err
	}

	logger.Info("✓ Registered CatalogEnrichSweep", map[string]interface{}{
		"cron":  s.catalog.EnrichSweepCron,
		"batch": s.catalog.EnrichSweepBatch,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
