package directory

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartDirectoryService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()

	mux.HandleFunc("/directory/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Directory Service is active"))
	})
	mux.Handle("/directory/clients", ListClientsHandler(pool))
	mux.Handle("/directory/clients/lookup", LookupClientHandler(pool))
	mux.Handle("/directory/materials", ListMaterialsHandler(pool))

	log.Println("Directory Service started on :2151")
	if err := http.ListenAndServe(":2151", mux); err != nil {
		log.Fatalf("Directory Service failed: %v", err)
	}
}
