package billing

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"StockBook/api"
	"StockBook/api/constants"
	"StockBook/api/directory"
	"StockBook/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerTxn is one money movement pulled from bookings, payments or direct
// sales before projection. Debit is money the client owes, credit is money
// received.
type LedgerTxn struct {
	Date        time.Time
	Description string
	BillNo      string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// LedgerLine is a projected row with the running balance after the
// transaction it describes.
type LedgerLine struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	BillNo      string          `json:"bill_no"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// ProjectLedger computes running balances in chronological order, then
// returns the lines newest-first for display. The balance on each line is
// the balance after that transaction regardless of display order, so the
// first returned line always carries the current balance. Ties on date keep
// their input order.
func ProjectLedger(txns []LedgerTxn) []LedgerLine {
	sorted := make([]LedgerTxn, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	lines := make([]LedgerLine, 0, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		balance = balance.Add(t.Debit).Sub(t.Credit)
		lines = append(lines, LedgerLine{
			Date:        t.Date.Format(config.DateTimeFormat),
			Description: t.Description,
			BillNo:      t.BillNo,
			Debit:       t.Debit,
			Credit:      t.Credit,
			Balance:     balance,
		})
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// FinancialLedgerHandler serves the per-client money ledger: bookings and
// direct sales post debits (with their paid portion as an immediate
// credit), payments post credits.
func FinancialLedgerHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		q := strings.TrimSpace(r.URL.Query().Get("client"))
		if q == "" {
			api.RespondWithResult(w, false, constants.ErrClientNotFound)
			return
		}
		ctx := r.Context()
		client, err := directory.LookupClientByCodeOrName(ctx, pgxPool, q)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if client == nil {
			api.RespondWithResult(w, false, constants.ErrClientNotFound)
			return
		}

		txns, err := fetchLedgerTxns(ctx, pgxPool, client.Name)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		lines := ProjectLedger(txns)

		totalDebit, totalCredit := decimal.Zero, decimal.Zero
		for _, t := range txns {
			totalDebit = totalDebit.Add(t.Debit)
			totalCredit = totalCredit.Add(t.Credit)
		}
		balance := decimal.Zero
		if len(lines) > 0 {
			balance = lines[0].Balance
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"client":       client,
			"rows":         lines,
			"total_debit":  totalDebit,
			"total_credit": totalCredit,
			"balance":      balance,
		})
	}
}

func fetchLedgerTxns(ctx context.Context, pgxPool *pgxpool.Pool, clientName string) ([]LedgerTxn, error) {
	txns := make([]LedgerTxn, 0)

	rows, err := pgxPool.Query(ctx, `
		SELECT material, qty, amount, COALESCE(paid_amount, 0), COALESCE(manual_bill_no, ''), date_posted
		FROM bookings WHERE client_name = $1
	`, clientName)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var material string
		var qty, amount, paid decimal.Decimal
		var billNo string
		var posted time.Time
		if err := rows.Scan(&material, &qty, &amount, &paid, &billNo, &posted); err != nil {
			rows.Close()
			return nil, err
		}
		txns = append(txns, LedgerTxn{
			Date:        posted,
			Description: fmt.Sprintf("Booking: %s x %s", material, qty),
			BillNo:      billNo,
			Debit:       amount,
			Credit:      paid,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pgxPool.Query(ctx, `
		SELECT material, qty, amount, COALESCE(paid_amount, 0), COALESCE(manual_bill_no, ''), date_posted
		FROM direct_sales WHERE client_name = $1
	`, clientName)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var material string
		var qty, amount, paid decimal.Decimal
		var billNo string
		var posted time.Time
		if err := rows.Scan(&material, &qty, &amount, &paid, &billNo, &posted); err != nil {
			rows.Close()
			return nil, err
		}
		txns = append(txns, LedgerTxn{
			Date:        posted,
			Description: fmt.Sprintf("Direct Sale: %s x %s", material, qty),
			BillNo:      billNo,
			Debit:       amount,
			Credit:      paid,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = pgxPool.Query(ctx, `
		SELECT amount, COALESCE(method, 'Cash'), COALESCE(manual_bill_no, ''), date_posted
		FROM payments WHERE client_name = $1
	`, clientName)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var amount decimal.Decimal
		var method, billNo string
		var posted time.Time
		if err := rows.Scan(&amount, &method, &billNo, &posted); err != nil {
			rows.Close()
			return nil, err
		}
		txns = append(txns, LedgerTxn{
			Date:        posted,
			Description: fmt.Sprintf("Payment (%s)", method),
			BillNo:      billNo,
			Credit:      amount,
		})
	}
	rows.Close()
	return txns, rows.Err()
}
