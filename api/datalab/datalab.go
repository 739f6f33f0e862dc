package datalab

import (
	"log"
	"net/http"

	"StockBook/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartDataLabService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	threshold := config.MatchAutoThreshold
	if cfg != nil {
		switch v := cfg["green_threshold"].(type) {
		case int:
			if v > 0 {
				threshold = v
			}
		case float64:
			if v > 0 {
				threshold = int(v)
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/datalab/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Data Lab Service is active"))
	})
	mux.Handle("/datalab/triangulate", TriangulateHandler(pool, threshold))
	mux.Handle("/datalab/basket", BasketHandler(pool))
	mux.Handle("/datalab/correct_bill", CorrectBillHandler(pool))
	mux.Handle("/datalab/legacy_import", LegacyImportHandler(pool))

	log.Println("Data Lab Service started on :6151")
	if err := http.ListenAndServe(":6151", mux); err != nil {
		log.Fatalf("Data Lab Service failed: %v", err)
	}
}
