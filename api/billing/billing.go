package billing

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

func StartBillingService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/billing/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Billing Service is active"))
	})
	mux.Handle("/billing/payments", AllocatePaymentHandler(pool))
	mux.Handle("/billing/ledger", FinancialLedgerHandler(pool))
	mux.Handle("/billing/pending_bills", ListPendingBillsHandler(pool))
	mux.Handle("/billing/pending_bills/import", ImportPendingBillsHandler(pool))
	mux.Handle("/billing/bookings", RecordBookingHandler(pool))
	mux.Handle("/billing/direct_sales", RecordDirectSaleHandler(pool))

	log.Println("Billing Service started on :3151")
	if err := http.ListenAndServe(":3151", mux); err != nil {
		log.Fatalf("Billing Service failed: %v", err)
	}
}
