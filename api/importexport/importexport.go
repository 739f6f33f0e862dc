package importexport

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartImportExportService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/importexport/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Import Export Service is active"))
	})
	mux.Handle("/importexport/import_entries", ImportEntriesHandler(pool))
	mux.Handle("/importexport/import_status", ImportStatusHandler())
	mux.Handle("/importexport/export_entries", ExportEntriesHandler(pool))

	log.Println("Import Export Service started on :5151")
	if err := http.ListenAndServe(":5151", mux); err != nil {
		log.Fatalf("Import Export Service failed: %v", err)
	}
}
