package datalab

import (
	"encoding/json"
	"net/http"
	"strings"

	"StockBook/api"
	"StockBook/api/constants"
	"StockBook/api/directory"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BasketRow is a persisted basket entry as returned to the review screen.
type BasketRow struct {
	ID         int64   `json:"id"`
	BillNo     string  `json:"bill_no"`
	FinClient  string  `json:"fin_client"`
	DispClient string  `json:"disp_client"`
	Material   string  `json:"material"`
	Qty        float64 `json:"qty"`
	Status     string  `json:"status"`
	MatchScore int     `json:"match_score"`
	CreatedAt  string  `json:"created_at"`
}

// BasketHandler returns the basket grouped by status. GREEN is always
// present and always empty: auto-matched rows never reach the basket.
func BasketHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := pgxPool.Query(r.Context(), `
			SELECT id, bill_no, fin_client, disp_client, material, qty, status, match_score, created_at::text
			FROM recon_baskets
			ORDER BY id ASC
		`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		groups := map[string][]BasketRow{
			StatusGreen:  {},
			StatusYellow: {},
			StatusRed:    {},
			StatusBlue:   {},
		}
		for rows.Next() {
			var b BasketRow
			if err := rows.Scan(&b.ID, &b.BillNo, &b.FinClient, &b.DispClient, &b.Material, &b.Qty, &b.Status, &b.MatchScore, &b.CreatedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			groups[b.Status] = append(groups[b.Status], b)
		}

		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"basket":  groups,
		})
	}
}

// CorrectBillHandler is the authoritative override: the operator names the
// true client for a bill, and that identity is rewritten across pending
// bills and ledger postings before the bill's basket entries are dropped.
// Re-running it on an already-corrected bill is a successful no-op.
func CorrectBillHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID     string `json:"user_id"`
			BillNo     string `json:"bill_no"`
			ClientCode string `json:"client_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		req.BillNo = strings.TrimSpace(req.BillNo)
		if req.BillNo == "" {
			api.RespondWithResult(w, false, constants.ErrMissingBillNo)
			return
		}

		ctx := r.Context()
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		client, err := directory.LookupClientByCode(ctx, tx, req.ClientCode)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if client == nil {
			api.RespondWithResult(w, false, constants.ErrUnknownClientCode)
			return
		}

		if _, err := tx.Exec(ctx, `
			UPDATE pending_bills SET client_name = $1, client_code = $2 WHERE bill_no = $3
		`, client.Name, client.Code, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to update pending bills: "+err.Error())
			return
		}
		if _, err := tx.Exec(ctx, `
			UPDATE entries SET client_name = $1, client_code = $2 WHERE bill_no = $3
		`, client.Name, client.Code, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to update entries: "+err.Error())
			return
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recon_baskets WHERE bill_no = $1`, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to clear basket: "+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}

		logger.Audit("Bill " + req.BillNo + " corrected to client " + client.Code)
		api.RespondWithResult(w, true, "Bill corrected across records")
	}
}

// LegacyImportHandler is the finance-wins override: the pending bill's
// client identity is taken as truth and copied onto every matching ledger
// posting, then the bill's basket entries are dropped.
func LegacyImportHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID string `json:"user_id"`
			BillNo string `json:"bill_no"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		req.BillNo = strings.TrimSpace(req.BillNo)
		if req.BillNo == "" {
			api.RespondWithResult(w, false, constants.ErrMissingBillNo)
			return
		}

		ctx := r.Context()
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		var clientName, clientCode string
		err = tx.QueryRow(ctx, `
			SELECT client_name, COALESCE(client_code, '')
			FROM pending_bills WHERE bill_no = $1
			ORDER BY id LIMIT 1
		`, req.BillNo).Scan(&clientName, &clientCode)
		if err == pgx.ErrNoRows {
			api.RespondWithResult(w, false, constants.ErrNoPendingBill)
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}

		if _, err := tx.Exec(ctx, `DELETE FROM recon_baskets WHERE bill_no = $1`, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to clear basket: "+err.Error())
			return
		}
		if _, err := tx.Exec(ctx, `
			UPDATE entries SET client_name = $1, client_code = NULLIF($2, '') WHERE bill_no = $3
		`, clientName, clientCode, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to update entries: "+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}

		logger.Audit("Legacy import applied for bill " + req.BillNo)
		api.RespondWithResult(w, true, "Legacy import applied")
	}
}
