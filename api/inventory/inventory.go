package inventory

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartInventoryService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inventory/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Inventory Service is active"))
	})
	mux.Handle("/inventory/stock_summary", StockSummaryHandler(pool))
	mux.Handle("/inventory/material_ledger", MaterialLedgerHandler(pool))

	log.Println("Inventory Service started on :4151")
	if err := http.ListenAndServe(":4151", mux); err != nil {
		log.Fatalf("Inventory Service failed: %v", err)
	}
}
