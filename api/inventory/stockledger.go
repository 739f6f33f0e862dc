package inventory

import (
	"context"
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

// StockTxn is one material movement before projection.
type StockTxn struct {
	Date     time.Time
	Material string
	Client   string
	BillNo   string
	In       decimal.Decimal
	Out      decimal.Decimal
}

// StockLine is a projected movement row with a running quantity balance.
type StockLine struct {
	Date     string          `json:"date"`
	Material string          `json:"material"`
	Client   string          `json:"client"`
	BillNo   string          `json:"bill_no"`
	In       decimal.Decimal `json:"qty_in"`
	Out      decimal.Decimal `json:"qty_out"`
	Balance  decimal.Decimal `json:"balance"`
}

// ProjectStockLedger computes running balances oldest-first and returns the
// lines newest-first. With perMaterial set, each material keeps its own
// balance (the client view mixes materials); otherwise a single balance
// runs through every line (the per-material view). Ties on date keep input
// order.
func ProjectStockLedger(txns []StockTxn, perMaterial bool) []StockLine {
	sorted := make([]StockTxn, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	balances := make(map[string]decimal.Decimal)
	lines := make([]StockLine, 0, len(sorted))
	for _, t := range sorted {
		key := ""
		if perMaterial {
			key = t.Material
		}
		balance := balances[key].Add(t.In).Sub(t.Out)
		balances[key] = balance
		lines = append(lines, StockLine{
			Date:     t.Date.Format(config.DateTimeFormat),
			Material: t.Material,
			Client:   t.Client,
			BillNo:   t.BillNo,
			In:       t.In,
			Out:      t.Out,
			Balance:  balance,
		})
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// MaterialLedgerHandler serves material movement history. Filter by
// material for the single-balance material view, or by client for the
// per-material client view; at least one of the two is required.
func MaterialLedgerHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		materialQ := strings.TrimSpace(r.URL.Query().Get("material"))
		clientQ := strings.TrimSpace(r.URL.Query().Get("client"))
		if materialQ == "" && clientQ == "" {
			api.RespondWithResult(w, false, constants.ErrNoMaterialOrClient)
			return
		}
		ctx := r.Context()

		var materialName, clientCode string
		if materialQ != "" {
			m, err := directory.LookupMaterialByName(ctx, pgxPool, materialQ)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			if m == nil {
				api.RespondWithResult(w, false, constants.ErrUnknownMaterial)
				return
			}
			materialName = m.Name
		}
		if clientQ != "" {
			c, err := directory.LookupClientByCodeOrName(ctx, pgxPool, clientQ)
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			if c == nil {
				api.RespondWithResult(w, false, constants.ErrClientNotFound)
				return
			}
			clientCode = c.Code
		}

		txns, err := fetchStockTxns(ctx, pgxPool, materialName, clientCode)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		lines := ProjectStockLedger(txns, materialName == "")
		api.RespondWithPayload(w, true, "", lines)
	}
}

func fetchStockTxns(ctx context.Context, pgxPool *pgxpool.Pool, materialName, clientCode string) ([]StockTxn, error) {
	sql := `
		SELECT COALESCE(bill_no, ''), client_name, material, qty, entry_type, created_at
		FROM entries WHERE 1=1
	`
	args := []any{}
	if materialName != "" {
		args = append(args, materialName)
		sql += ` AND material = $1`
	}
	if clientCode != "" {
		args = append(args, clientCode)
		if materialName != "" {
			sql += ` AND client_code = $2`
		} else {
			sql += ` AND client_code = $1`
		}
	}
	sql += ` ORDER BY created_at ASC, id ASC`

	rows, err := pgxPool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]StockTxn, 0)
	for rows.Next() {
		var t StockTxn
		var qty decimal.Decimal
		var entryType string
		if err := rows.Scan(&t.BillNo, &t.Client, &t.Material, &qty, &entryType, &t.Date); err != nil {
			return nil, err
		}
		if entryType == "IN" {
			t.In = qty
		} else {
			t.Out = qty
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
