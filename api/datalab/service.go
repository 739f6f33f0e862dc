package datalab

import (
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DataLabService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewDataLabService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &DataLabService{config: cfg, pool: pool}
}

func (s *DataLabService) Name() string {
	return "datalab"
}

func (s *DataLabService) Start() error {
	go StartDataLabService(s.config, s.pool)
	return nil
}

func (s *DataLabService) Stop() error {
	return nil
}
