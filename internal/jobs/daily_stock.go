package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"StockBook/api/inventory"
	"StockBook/internal/config"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// StockSnapshotConfig holds configuration for the daily stock summary job.
type StockSnapshotConfig struct {
	Schedule string // cron schedule
	TimeZone string
}

func NewDefaultStockSnapshotConfig() *StockSnapshotConfig {
	schedule := os.Getenv("STOCK_SNAPSHOT_SCHEDULE")
	if schedule == "" {
		schedule = config.DefaultStockSnapshotSchedule
	}
	return &StockSnapshotConfig{
		Schedule: schedule,
		TimeZone: config.DefaultTimeZone,
	}
}

// RunStockSnapshotScheduler starts the cron job that freezes each day's
// stock summary into stock_daily_summary. The returned cron instance is the
// caller's to stop.
func RunStockSnapshotScheduler(cfg *StockSnapshotConfig, db *pgxpool.Pool) (*cron.Cron, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultStockSnapshotSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
		logger.Audit(fmt.Sprintf("Invalid timezone %s, falling back to UTC: %v", cfg.TimeZone, err))
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		day := time.Now().In(loc).Format(config.DateFormat)
		logger.Audit("Starting stock snapshot job for " + day)
		if err := SnapshotStockForDate(db, day); err != nil {
			logger.Audit(fmt.Sprintf("Stock snapshot job failed: %v", err))
			log.Printf("ERROR: stock snapshot job failed: %v", err)
		} else {
			logger.Audit("Stock snapshot job completed for " + day)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule stock snapshot job: %v", err)
	}

	c.Start()
	logger.Audit(fmt.Sprintf("Stock snapshot scheduler started with schedule: %s (timezone: %s)", cfg.Schedule, cfg.TimeZone))
	return c, nil
}

// SnapshotStockForDate recomputes the stock summary for one date and
// replaces that date's stock_daily_summary rows in a single transaction.
func SnapshotStockForDate(db *pgxpool.Pool, day string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	days, err := inventory.FetchMaterialDays(ctx, db, day)
	if err != nil {
		return fmt.Errorf("failed to load material movements: %w", err)
	}
	rows := inventory.Summarize(days)

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM stock_daily_summary WHERE summary_date = $1`, day); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}
	for _, row := range rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO stock_daily_summary (summary_date, material, opening, qty_in, qty_out, closing)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, day, row.Material, row.Opening, row.In, row.Out, row.Closing)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for %s: %w", row.Material, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	log.Printf("[AUDIT] Stock snapshot for %s wrote %d materials", day, len(rows))
	return nil
}
