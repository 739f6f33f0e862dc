package importexport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"StockBook/api"
	"StockBook/api/constants"
	"StockBook/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportEntriesHandler streams the entries ledger as an .xlsx workbook,
// optionally restricted to one date.
func ExportEntriesHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		day := strings.TrimSpace(r.URL.Query().Get("date"))
		sql := `
			SELECT COALESCE(bill_no, ''), client_name, COALESCE(client_code, ''), material, qty, entry_type, COALESCE(created_by, ''), created_at
			FROM entries
		`
		args := []any{}
		if day != "" {
			if _, err := time.Parse(config.DateFormat, day); err != nil {
				api.RespondWithResult(w, false, "Invalid date, expected YYYY-MM-DD")
				return
			}
			sql += ` WHERE created_at::date = $1::date`
			args = append(args, day)
		}
		sql += ` ORDER BY created_at ASC, id ASC`

		rows, err := pgxPool.Query(r.Context(), sql, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		header := []interface{}{"bill_no", "client_name", "client_code", "material", "qty", "entry_type", "created_by", "created_at"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to build workbook: "+err.Error())
			return
		}
		line := 2
		for rows.Next() {
			var billNo, clientName, clientCode, material, entryType, createdBy string
			var qty decimal.Decimal
			var createdAt time.Time
			if err := rows.Scan(&billNo, &clientName, &clientCode, &material, &qty, &entryType, &createdBy, &createdAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			cell := fmt.Sprintf("A%d", line)
			row := []interface{}{billNo, clientName, clientCode, material, qty.String(), entryType, createdBy, createdAt.Format(config.DateTimeFormat)}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Failed to build workbook: "+err.Error())
				return
			}
			line++
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}

		name := "entries.xlsx"
		if day != "" {
			name = "entries-" + day + ".xlsx"
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		if err := f.Write(w); err != nil {
			api.LogError("Failed to stream workbook: " + err.Error())
		}
	}
}
