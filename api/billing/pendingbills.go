package billing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"StockBook/api"
	"StockBook/api/auth"
	"StockBook/api/constants"
	"StockBook/api/datalab"
	"StockBook/api/directory"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ListPendingBillsHandler serves outstanding bills, optionally filtered by
// client and paid status.
func ListPendingBillsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		ctx := r.Context()
		sql := `
			SELECT id, bill_no, client_name, COALESCE(client_code, ''), amount, is_paid, COALESCE(created_at, '')
			FROM pending_bills WHERE 1=1
		`
		args := []any{}
		if client := strings.TrimSpace(r.URL.Query().Get("client")); client != "" {
			c, err := directory.LookupClientByCodeOrName(ctx, pgxPool, client)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			if c == nil {
				api.RespondWithResult(w, false, constants.ErrClientNotFound)
				return
			}
			args = append(args, c.Code)
			sql += fmt.Sprintf(" AND client_code = $%d", len(args))
		}
		switch r.URL.Query().Get("status") {
		case "paid":
			sql += " AND is_paid = true"
		case "unpaid", "":
			sql += " AND is_paid = false"
		case "all":
		}
		sql += " ORDER BY id ASC"

		rows, err := pgxPool.Query(ctx, sql, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		bills := make([]PendingBill, 0)
		for rows.Next() {
			var b PendingBill
			if err := rows.Scan(&b.ID, &b.BillNo, &b.ClientName, &b.ClientCode, &b.Amount, &b.IsPaid, &b.CreatedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			bills = append(bills, b)
		}
		api.RespondWithPayload(w, true, "", bills)
	}
}

// ImportPendingBillsHandler loads opening balances from an uploaded sheet.
// Each row names a client, a bill number and an amount; clients are created
// on the fly and rows whose (bill_no, client) pair already exists are
// skipped, so re-uploading the same sheet is harmless.
func ImportPendingBillsHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMultipartParse+err.Error())
			return
		}
		userID := r.FormValue("user_id")
		userName := auth.UsernameFor(userID)
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrNoFilesUploaded)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrOpenUploadedFile+err.Error())
			return
		}
		table := datalab.ReadTable(data, header.Filename)
		if table == nil || len(table.Rows) == 0 {
			api.RespondWithResult(w, false, constants.ErrNoFilesUploaded)
			return
		}

		ctx := r.Context()
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		imported, skipped := 0, 0
		for _, row := range table.Rows {
			name := firstField(row, "ClientName", "client_name", "client")
			code := firstField(row, "ClientCode", "client_code", "code")
			billNo := firstField(row, "BillNo", "bill_no")
			amountStr := firstField(row, "Amount", "amount")
			if name == "" || billNo == "" {
				skipped++
				continue
			}
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				skipped++
				continue
			}
			client, err := directory.EnsureClient(ctx, tx, name, code)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve client: "+err.Error())
				return
			}
			var existing int64
			err = tx.QueryRow(ctx, `
				SELECT id FROM pending_bills WHERE bill_no = $1 AND client_code = $2 LIMIT 1
			`, billNo, client.Code).Scan(&existing)
			if err == nil {
				skipped++
				continue
			}
			if err != pgx.ErrNoRows {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO pending_bills (bill_no, client_name, client_code, amount, is_paid)
				VALUES ($1, $2, $3, $4, false)
			`, billNo, client.Name, client.Code, amount); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to insert pending bill: "+err.Error())
				return
			}
			imported++
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		logger.Audit(fmt.Sprintf("Pending bills import by %s: %d imported, %d skipped", userName, imported, skipped))
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"imported": imported,
			"skipped":  skipped,
		})
	}
}

func firstField(row datalab.Row, cols ...string) string {
	for _, col := range cols {
		if v := strings.TrimSpace(row[col]); v != "" {
			return v
		}
	}
	return ""
}

type saleRequest struct {
	UserID   string          `json:"user_id"`
	Client   string          `json:"client"`
	Material string          `json:"material"`
	Qty      decimal.Decimal `json:"qty"`
	Amount   decimal.Decimal `json:"amount"`
	Paid     decimal.Decimal `json:"paid_amount"`
	BillNo   string          `json:"bill_no,omitempty"`
}

// RecordBookingHandler creates a booking: a debit in the client's ledger
// and, for any unpaid portion, a pending bill the FIFO allocator can settle
// later.
func RecordBookingHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return recordSale(pgxPool, "bookings", "Booking")
}

// RecordDirectSaleHandler creates a direct sale. Same shape as a booking
// but dispatched immediately, so it also posts an OUT entry for the
// material.
func RecordDirectSaleHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return recordSale(pgxPool, "direct_sales", "Direct sale")
}

func recordSale(pgxPool *pgxpool.Pool, table, label string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var req saleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		userName := auth.UsernameFor(req.UserID)
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		req.Client = strings.TrimSpace(req.Client)
		req.Material = strings.TrimSpace(req.Material)
		if req.Client == "" || req.Material == "" {
			api.RespondWithResult(w, false, constants.ErrNoMaterialOrClient)
			return
		}
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			api.RespondWithResult(w, false, constants.ErrInvalidAmount)
			return
		}

		ctx := r.Context()
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		client, err := directory.EnsureClient(ctx, tx, req.Client, "")
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve client: "+err.Error())
			return
		}
		material, err := directory.EnsureMaterial(ctx, tx, req.Material)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve material: "+err.Error())
			return
		}
		if material == nil {
			api.RespondWithResult(w, false, constants.ErrUnknownMaterial)
			return
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO `+table+` (client_name, material, qty, amount, paid_amount, manual_bill_no)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		`, client.Name, material.Name, req.Qty, req.Amount, req.Paid, req.BillNo); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to record "+strings.ToLower(label)+": "+err.Error())
			return
		}

		if table == "direct_sales" {
			if _, err := tx.Exec(ctx, `
				INSERT INTO entries (bill_no, client_name, client_code, material, qty, entry_type, created_by)
				VALUES (NULLIF($1, ''), $2, $3, $4, $5, 'OUT', $6)
			`, req.BillNo, client.Name, client.Code, material.Name, req.Qty, userName); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to post dispatch entry: "+err.Error())
				return
			}
		}

		outstanding := req.Amount.Sub(req.Paid)
		if outstanding.GreaterThan(decimal.Zero) && req.BillNo != "" {
			if _, err := tx.Exec(ctx, `
				INSERT INTO pending_bills (bill_no, client_name, client_code, amount, is_paid)
				VALUES ($1, $2, $3, $4, false)
			`, req.BillNo, client.Name, client.Code, outstanding); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to create pending bill: "+err.Error())
				return
			}
		}

		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		logger.Audit(fmt.Sprintf("%s by %s: %s x %s for %s, amount %s", label, userName, material.Name, req.Qty, client.Name, req.Amount))
		api.RespondWithResult(w, true, label+" recorded")
	}
}
