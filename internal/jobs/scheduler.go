package jobs

import (
	"fmt"
	"log"
	"time"

	"StockBook/internal/logger"
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
	cron   *cron.Cron
	stopCh chan struct{}
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
		stopCh: make(chan struct{}),
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	snapCfg := NewDefaultStockSnapshotConfig()
	if s.config != nil {
		if schedule, ok := s.config["stock_snapshot_schedule"].(string); ok && schedule != "" {
			snapCfg.Schedule = schedule
		}
		if tz, ok := s.config["timezone"].(string); ok && tz != "" {
			snapCfg.TimeZone = tz
		}
	}

	c, err := RunStockSnapshotScheduler(snapCfg, s.db)
	if err != nil {
		return fmt.Errorf("failed to start stock snapshot scheduler: %v", err)
	}
	s.cron = c
	logger.Audit("Cron service started, stock snapshot scheduled")

	// Forget finished import jobs once an hour.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				if removed := Registry().Sweep(6 * time.Hour); removed > 0 {
					logger.Audit(fmt.Sprintf("Progress registry swept %d finished import jobs", removed))
				}
			}
		}
	}()

	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	close(s.stopCh)
	log.Println("Cron service stopped.")
	return nil
}
