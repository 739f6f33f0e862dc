package billing

import (
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BillingService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewBillingService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &BillingService{config: cfg, pool: pool}
}

func (s *BillingService) Name() string {
	return "billing"
}

func (s *BillingService) Start() error {
	go StartBillingService(s.config, s.pool)
	return nil
}

func (s *BillingService) Stop() error {
	return nil
}
