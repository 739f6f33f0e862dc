package inventory

import (
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewInventoryService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &InventoryService{config: cfg, pool: pool}
}

func (s *InventoryService) Name() string {
	return "inventory"
}

func (s *InventoryService) Start() error {
	go StartInventoryService(s.config, s.pool)
	return nil
}

func (s *InventoryService) Stop() error {
	return nil
}
