package importexport

import (
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ImportExportService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewImportExportService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ImportExportService{config: cfg, pool: pool}
}

func (s *ImportExportService) Name() string {
	return "importexport"
}

func (s *ImportExportService) Start() error {
	go StartImportExportService(s.config, s.pool)
	return nil
}

func (s *ImportExportService) Stop() error {
	return nil
}
