package directory

import (
	"StockBook/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DirectoryService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewDirectoryService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &DirectoryService{config: cfg, pool: pool}
}

func (s *DirectoryService) Name() string {
	return "directory"
}

func (s *DirectoryService) Start() error {
	go StartDirectoryService(s.pool)
	return nil
}

func (s *DirectoryService) Stop() error {
	return nil
}
