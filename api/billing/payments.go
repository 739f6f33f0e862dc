package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"StockBook/api"
	"StockBook/api/auth"
	"StockBook/api/constants"
	"StockBook/api/directory"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PendingBill is an outstanding amount owed by a client against one bill
// number. FIFO order is creation order (id ascending), never amount order.
type PendingBill struct {
	ID         int64           `json:"id"`
	BillNo     string          `json:"bill_no"`
	ClientName string          `json:"client_name"`
	ClientCode string          `json:"client_code"`
	Amount     decimal.Decimal `json:"amount"`
	IsPaid     bool            `json:"is_paid"`
	CreatedAt  string          `json:"created_at"`
}

// Applied is one bill's share of an allocated payment.
type Applied struct {
	BillNo string          `json:"bill_no"`
	Amount decimal.Decimal `json:"amount"`
}

// AllocateFIFO walks the bills in the given order and applies the payment
// oldest-first: full settlement while the remainder covers the bill, one
// partial application otherwise. It returns the per-bill applications and
// the unapplied remainder; sum(applied) + unapplied always equals amount.
// The input slice is not modified.
func AllocateFIFO(bills []PendingBill, amount decimal.Decimal) ([]Applied, decimal.Decimal) {
	applied := make([]Applied, 0, len(bills))
	remaining := amount
	for _, bill := range bills {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if bill.IsPaid {
			continue
		}
		if remaining.GreaterThanOrEqual(bill.Amount) {
			applied = append(applied, Applied{BillNo: bill.BillNo, Amount: bill.Amount})
			remaining = remaining.Sub(bill.Amount)
		} else {
			applied = append(applied, Applied{BillNo: bill.BillNo, Amount: remaining})
			remaining = decimal.Zero
		}
	}
	return applied, remaining
}

// AllocatePaymentHandler records a payment and applies it to the client's
// unpaid bills oldest-first. The whole allocation is one transaction; bills
// are updated with compare-and-swap row checks so a concurrent allocation
// against the same bill aborts instead of losing an update.
func AllocatePaymentHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			UserID string          `json:"user_id"`
			Client string          `json:"client"`
			Amount decimal.Decimal `json:"amount"`
			BillNo string          `json:"bill_no,omitempty"`
			Method string          `json:"method,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		userName := auth.UsernameFor(req.UserID)
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			api.RespondWithResult(w, false, constants.ErrInvalidAmount)
			return
		}
		req.Client = strings.TrimSpace(req.Client)
		req.BillNo = strings.TrimSpace(req.BillNo)

		ctx := r.Context()
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		client, err := directory.LookupClientByCodeOrName(ctx, tx, req.Client)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		clientName := req.Client
		if client != nil {
			clientName = client.Name
		}

		method := req.Method
		if method == "" {
			method = "Cash"
		}
		var paymentID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO payments (client_name, amount, method, manual_bill_no)
			VALUES ($1, $2, $3, NULLIF($4, ''))
			RETURNING id
		`, clientName, req.Amount, method, req.BillNo).Scan(&paymentID); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to record payment: "+err.Error())
			return
		}

		// Payments against unknown clients are still recorded; there is
		// just nothing to apply them to.
		applied := []Applied{}
		unapplied := req.Amount
		if client != nil {
			bills, err := selectUnpaidBills(ctx, tx, client.Code, req.BillNo)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			applied, unapplied = AllocateFIFO(bills, req.Amount)
			for i, app := range applied {
				bill := bills[i]
				newAmount := bill.Amount.Sub(app.Amount)
				paid := newAmount.LessThanOrEqual(decimal.Zero)
				tag, err := tx.Exec(ctx, `
					UPDATE pending_bills SET amount = $1, is_paid = $2
					WHERE id = $3 AND amount = $4 AND is_paid = false
				`, newAmount, paid, bill.ID, bill.Amount)
				if err != nil {
					api.RespondWithError(w, http.StatusInternalServerError, "Failed to apply payment: "+err.Error())
					return
				}
				if tag.RowsAffected() == 0 {
					api.RespondWithError(w, http.StatusConflict, constants.ErrPaymentConflict)
					return
				}
			}
		}

		// Advances live on the payment row, not as separate credit records.
		if unapplied.GreaterThan(decimal.Zero) {
			if _, err := tx.Exec(ctx, `
				UPDATE payments SET unapplied = $1 WHERE id = $2
			`, unapplied, paymentID); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to record unapplied balance: "+err.Error())
				return
			}
		}

		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}

		msg := fmt.Sprintf("Payment of %s by %s for %s applied to %d bills", req.Amount, userName, clientName, len(applied))
		if unapplied.GreaterThan(decimal.Zero) {
			msg += fmt.Sprintf(", %s unapplied (advance)", unapplied)
		}
		logger.Audit(msg)

		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"applied":   applied,
			"unapplied": unapplied,
		})
	}
}

// selectUnpaidBills loads the allocation candidates in FIFO order, locking
// the rows for the rest of the transaction.
func selectUnpaidBills(ctx context.Context, tx pgx.Tx, clientCode, billNo string) ([]PendingBill, error) {
	sql := `
		SELECT id, bill_no, client_name, COALESCE(client_code, ''), amount, is_paid, COALESCE(created_at, '')
		FROM pending_bills
		WHERE client_code = $1 AND is_paid = false
	`
	args := []any{clientCode}
	if billNo != "" {
		sql += ` AND bill_no = $2`
		args = append(args, billNo)
	}
	sql += ` ORDER BY id ASC FOR UPDATE`

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]PendingBill, 0)
	for rows.Next() {
		var b PendingBill
		if err := rows.Scan(&b.ID, &b.BillNo, &b.ClientName, &b.ClientCode, &b.Amount, &b.IsPaid, &b.CreatedAt); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
