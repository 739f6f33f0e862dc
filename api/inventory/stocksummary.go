package inventory

import (
	"context"
	"net/http"
	"strings"
	"time"

	"StockBook/api"
	"StockBook/api/constants"
	"StockBook/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MaterialDay aggregates one material's movement around a target date:
// the net quantity of everything posted before that date, plus the IN and
// OUT totals on the date itself.
type MaterialDay struct {
	Material string
	PrevNet  decimal.Decimal
	In       decimal.Decimal
	Out      decimal.Decimal
}

// SummaryRow is one line of the daily stock summary. Opening includes the
// day's own receipts, so a material received and fully dispatched the same
// day shows opening == out and closing zero rather than a negative opening.
type SummaryRow struct {
	Material string          `json:"material"`
	Opening  decimal.Decimal `json:"opening"`
	In       decimal.Decimal `json:"qty_in"`
	Out      decimal.Decimal `json:"qty_out"`
	Closing  decimal.Decimal `json:"closing"`
}

// Summarize turns per-material movement aggregates into summary rows.
func Summarize(days []MaterialDay) []SummaryRow {
	rows := make([]SummaryRow, 0, len(days))
	for _, d := range days {
		opening := d.PrevNet.Add(d.In)
		rows = append(rows, SummaryRow{
			Material: d.Material,
			Opening:  opening,
			In:       d.In,
			Out:      d.Out,
			Closing:  opening.Sub(d.Out),
		})
	}
	return rows
}

// FetchMaterialDays loads movement aggregates for every material with any
// entry on or before the given date (YYYY-MM-DD).
func FetchMaterialDays(ctx context.Context, db *pgxpool.Pool, day string) ([]MaterialDay, error) {
	rows, err := db.Query(ctx, `
		SELECT material,
			COALESCE(SUM(CASE
				WHEN created_at::date < $1::date AND entry_type = 'IN' THEN qty
				WHEN created_at::date < $1::date AND entry_type = 'OUT' THEN -qty
				ELSE 0 END), 0) AS prev_net,
			COALESCE(SUM(CASE WHEN created_at::date = $1::date AND entry_type = 'IN' THEN qty ELSE 0 END), 0) AS day_in,
			COALESCE(SUM(CASE WHEN created_at::date = $1::date AND entry_type = 'OUT' THEN qty ELSE 0 END), 0) AS day_out
		FROM entries
		WHERE created_at::date <= $1::date
		GROUP BY material
		ORDER BY material
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]MaterialDay, 0)
	for rows.Next() {
		var d MaterialDay
		if err := rows.Scan(&d.Material, &d.PrevNet, &d.In, &d.Out); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// StockSummaryHandler serves the per-material stock position for one date,
// computed live from the entries ledger. Defaults to today.
func StockSummaryHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		day := strings.TrimSpace(r.URL.Query().Get("date"))
		if day == "" {
			day = time.Now().Format(config.DateFormat)
		} else if _, err := time.Parse(config.DateFormat, day); err != nil {
			api.RespondWithResult(w, false, "Invalid date, expected YYYY-MM-DD")
			return
		}
		days, err := FetchMaterialDays(r.Context(), pgxPool, day)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"date":    day,
			"rows":    Summarize(days),
		})
	}
}
