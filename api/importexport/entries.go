package importexport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"StockBook/api"
	"StockBook/api/auth"
	"StockBook/api/constants"
	"StockBook/api/datalab"
	"StockBook/api/directory"
	"StockBook/internal/config"
	"StockBook/internal/jobs"
	"StockBook/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ImportEntriesHandler accepts a stock entries sheet and loads it in the
// background. The response carries a job token immediately; callers poll
// /importexport/import_status with it. mode=daily replaces that date's
// entries before loading, mode=append (the default) only adds.
func ImportEntriesHandler(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMultipartParse+err.Error())
			return
		}
		userName := auth.UsernameFor(r.FormValue("user_id"))
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		mode := r.FormValue("mode")
		if mode == "" {
			mode = "append"
		}
		day := strings.TrimSpace(r.FormValue("date"))
		if mode == "daily" {
			if _, err := time.Parse(config.DateFormat, day); err != nil {
				api.RespondWithResult(w, false, "mode=daily requires date=YYYY-MM-DD")
				return
			}
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

		job := jobs.Registry().NewJob()
		job.SetTotal(len(table.Rows))
		go runEntriesImport(pgxPool, job, table, mode, day, userName)

		logger.Audit(fmt.Sprintf("Entries import started by %s: %d rows, mode=%s, token=%s", userName, len(table.Rows), mode, job.Token))
		api.RespondWithJSON(w, http.StatusAccepted, map[string]interface{}{
			"success": true,
			"token":   job.Token,
			"total":   len(table.Rows),
		})
	}
}

func runEntriesImport(pgxPool *pgxpool.Pool, job *jobs.ImportJob, table *datalab.Table, mode, day, userName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	err := importEntries(ctx, pgxPool, job, table, mode, day, userName)
	job.Finish(err)
	if err != nil {
		logger.Audit(fmt.Sprintf("Entries import %s failed: %v", job.Token, err))
	} else {
		logger.Audit(fmt.Sprintf("Entries import %s completed", job.Token))
	}
}

// entryRow is one normalized sheet row ready to post.
type entryRow struct {
	BillNo    string
	Client    string
	Material  string
	Qty       decimal.Decimal
	EntryType string
	Amount    decimal.Decimal
	HasAmount bool
	PostedAt  string // "YYYY-MM-DD HH:MM:SS"; empty when the sheet has no date
}

// parseEntryRow reads one sheet row into an entryRow. Rows without a
// client, material or parseable quantity are skipped (false). The sheet's
// own date and time columns are honored so historical re-imports keep their
// chronology; rows without a date post at import time.
func parseEntryRow(row datalab.Row, schema datalab.TableSchema) (entryRow, bool) {
	e := entryRow{
		BillNo:   rowField(row, schema.BillNo, "bill_no"),
		Client:   rowField(row, schema.Client, "client_name", "client"),
		Material: rowField(row, schema.Material, "material", "item"),
	}
	if e.Client == "" || e.Material == "" {
		return e, false
	}
	qty, err := decimal.NewFromString(rowField(row, schema.Qty, "qty", "quantity"))
	if err != nil {
		return e, false
	}
	e.Qty = qty

	e.EntryType = "IN"
	if t := strings.ToUpper(rowField(row, "", "entry_type", "type")); strings.Contains(t, "OUT") {
		e.EntryType = "OUT"
	}

	if a := rowField(row, "", "amount"); a != "" {
		if amt, err := decimal.NewFromString(a); err == nil {
			e.Amount = amt
			e.HasAmount = true
		}
	}

	if d := rowField(row, "", "date"); d != "" {
		if _, err := time.Parse(config.DateFormat, d); err == nil {
			ts := d + " 00:00:00"
			if tm := rowField(row, "", "time"); tm != "" {
				if _, err := time.Parse(config.TimeFormat, tm); err == nil {
					ts = d + " " + tm
				}
			}
			e.PostedAt = ts
		}
	}
	return e, true
}

// importEntries commits in batches so a failure late in a large sheet
// keeps the already-committed batches. The job snapshot records how far it
// got.
func importEntries(ctx context.Context, pgxPool *pgxpool.Pool, job *jobs.ImportJob, table *datalab.Table, mode, day, userName string) error {
	schema := datalab.DetectSchema(table.Columns)

	if mode == "daily" {
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		defer tx.Rollback(ctx)
		if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE created_at::date = $1::date`, day); err != nil {
			return fmt.Errorf("failed to clear entries for %s: %w", day, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit daily reset: %w", err)
		}
	}

	processed := 0
	for start := 0; start < len(table.Rows); start += config.ImportCommitBatch {
		end := start + config.ImportCommitBatch
		if end > len(table.Rows) {
			end = len(table.Rows)
		}
		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}
		for _, raw := range table.Rows[start:end] {
			processed++
			e, ok := parseEntryRow(raw, schema)
			if !ok {
				continue
			}
			client, err := directory.EnsureClient(ctx, tx, e.Client, "")
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to resolve client %q: %w", e.Client, err)
			}
			material, err := directory.EnsureMaterial(ctx, tx, e.Material)
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to resolve material %q: %w", e.Material, err)
			}
			if client == nil || material == nil {
				continue
			}

			postedAt := e.PostedAt
			if mode == "daily" {
				postedAt = day + " 00:00:00"
			}
			if postedAt == "" {
				_, err = tx.Exec(ctx, `
					INSERT INTO entries (bill_no, client_name, client_code, material, qty, entry_type, created_by)
					VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7)
				`, e.BillNo, client.Name, client.Code, material.Name, e.Qty, e.EntryType, userName)
			} else {
				_, err = tx.Exec(ctx, `
					INSERT INTO entries (bill_no, client_name, client_code, material, qty, entry_type, created_by, created_at)
					VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8::timestamp)
				`, e.BillNo, client.Name, client.Code, material.Name, e.Qty, e.EntryType, userName, postedAt)
			}
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to insert entry (row %d): %w", processed, err)
			}

			if e.BillNo != "" {
				if err := ensurePendingBill(ctx, tx, e.BillNo, client, e.Amount, e.HasAmount); err != nil {
					tx.Rollback(ctx)
					return fmt.Errorf("failed to ensure pending bill %s (row %d): %w", e.BillNo, processed, err)
				}
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit batch: %w", err)
		}
		job.Advance(processed)
	}
	return nil
}

// ensurePendingBill keeps the billing side of an imported entry: every
// billed row gets a pending bill, and a positive sheet amount overwrites an
// existing bill's outstanding amount (reopening it if it was settled).
func ensurePendingBill(ctx context.Context, tx pgx.Tx, billNo string, client *directory.Client, amount decimal.Decimal, hasAmount bool) error {
	var id int64
	err := tx.QueryRow(ctx, `
		SELECT id FROM pending_bills WHERE bill_no = $1 AND client_code = $2 ORDER BY id LIMIT 1
	`, billNo, client.Code).Scan(&id)
	if err == pgx.ErrNoRows {
		amt := decimal.Zero
		if hasAmount {
			amt = amount
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO pending_bills (bill_no, client_name, client_code, amount, is_paid)
			VALUES ($1, $2, $3, $4, false)
		`, billNo, client.Name, client.Code, amt)
		return err
	}
	if err != nil {
		return err
	}
	if hasAmount && amount.GreaterThan(decimal.Zero) {
		_, err = tx.Exec(ctx, `
			UPDATE pending_bills SET amount = $1, is_paid = false WHERE id = $2
		`, amount, id)
	}
	return err
}

// rowField reads the schema-detected column when one was found, then falls
// back to the usual header names, case-insensitively.
func rowField(row datalab.Row, detected string, fallbacks ...string) string {
	if detected != "" {
		if v := strings.TrimSpace(row[detected]); v != "" {
			return v
		}
	}
	for _, col := range fallbacks {
		for key, v := range row {
			if strings.EqualFold(key, col) {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// ImportStatusHandler reports progress for one import token.
func ImportStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, constants.ErrMethodNotAllowed, http.StatusMethodNotAllowed)
			return
		}
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		job, err := jobs.Registry().Get(token)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"progress": job.Snapshot(),
		})
	}
}
