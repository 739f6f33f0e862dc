package datalab

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockBook/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Basket statuses. GREEN exists only as a reporting key: auto-matched rows
// are applied to the ledger directly and never persist a basket entry.
const (
	StatusGreen  = "GREEN"
	StatusYellow = "YELLOW"
	StatusRed    = "RED"
	StatusBlue   = "BLUE"
)

// BasketEntry is one classified, unresolved reconciliation outcome.
type BasketEntry struct {
	BillNo     string  `json:"bill_no"`
	FinClient  string  `json:"fin_client"`
	DispClient string  `json:"disp_client"`
	Material   string  `json:"material"`
	Qty        float64 `json:"qty"`
	Status     string  `json:"status"`
	MatchScore int     `json:"match_score"`
}

// StagedPosting is an auto-resolved ledger posting waiting for commit.
type StagedPosting struct {
	Date       string
	Time       string
	Type       string
	Material   string
	ClientName string
	ClientCode string
	Qty        float64
	BillNo     string
	CreatedBy  string
}

// EnsureBill instructs the commit to create a pending bill if none exists
// for the bill number. It never overwrites an existing bill's amount.
type EnsureBill struct {
	BillNo     string
	ClientName string
	ClientCode string
}

// RunResult is everything one triangulation batch wants to persist. Nothing
// here touches storage; CommitRun applies the whole batch in one
// transaction.
type RunResult struct {
	Postings    []StagedPosting
	Baskets     []BasketEntry
	EnsureBills []EnsureBill
}

// Triangulate cross-references the reference, finance and dispatch tables.
// Any table may be nil ("no data") and contributes zero records. threshold
// is the auto-apply score; pass config.MatchAutoThreshold unless the
// deployment overrides it.
func Triangulate(ref, fin, disp *Table, threshold int, now time.Time) *RunResult {
	if threshold <= 0 {
		threshold = config.MatchAutoThreshold
	}
	result := &RunResult{}

	// Reference table: optional code<->name lookup.
	refNames := map[string]string{}
	nameToCode := map[string]string{}
	if ref != nil {
		sch := DetectSchema(ref.Columns)
		if sch.Code != "" && sch.Name != "" {
			for _, row := range ref.Rows {
				code := field(row, sch.Code)
				name := field(row, sch.Name)
				if code == "" || name == "" {
					continue
				}
				refNames[code] = name
				nameToCode[strings.ToLower(name)] = code
			}
		}
	}

	// Finance table: first row per bill number wins; later duplicates are
	// never consulted.
	var finSch TableSchema
	finByBill := map[string]Row{}
	finBills := []string{}
	if fin != nil {
		finSch = DetectSchema(fin.Columns)
		if finSch.BillNo != "" {
			for _, row := range fin.Rows {
				bill := field(row, finSch.BillNo)
				if bill == "" || strings.EqualFold(bill, "nan") {
					continue
				}
				if _, seen := finByBill[bill]; !seen {
					finByBill[bill] = row
					finBills = append(finBills, bill)
				}
			}
		}
	}

	dispatchBills := map[string]bool{}
	if disp != nil {
		sch := DetectSchema(disp.Columns)
		for _, row := range disp.Rows {
			bill := field(row, sch.BillNo)
			client := field(row, sch.Client)
			material := field(row, sch.Material)
			qty := 0.0
			if q := field(row, sch.Qty); q != "" {
				if parsed, err := strconv.ParseFloat(q, 64); err == nil {
					qty = parsed
				}
			}

			if bill == "" || strings.EqualFold(bill, "nan") {
				// unbilled dispatch
				result.Baskets = append(result.Baskets, BasketEntry{
					DispClient: client,
					Material:   material,
					Qty:        qty,
					Status:     StatusBlue,
				})
				continue
			}
			dispatchBills[bill] = true

			finRow, matched := finByBill[bill]
			if !matched {
				// present in dispatch, missing from finance
				result.Baskets = append(result.Baskets, BasketEntry{
					BillNo:     bill,
					DispClient: client,
					Material:   material,
					Qty:        qty,
					Status:     StatusRed,
				})
				continue
			}

			finClient := field(finRow, finSch.Client)
			score := NameScore(finClient, client)
			if score >= threshold {
				name := finClient
				if name == "" {
					name = client
				}
				code := nameToCode[strings.ToLower(name)]
				result.Postings = append(result.Postings, StagedPosting{
					Date:       now.Format(config.DateFormat),
					Time:       now.Format(config.TimeFormat),
					Type:       "OUT",
					Material:   material,
					ClientName: name,
					ClientCode: code,
					Qty:        qty,
					BillNo:     bill,
					CreatedBy:  "import",
				})
				result.EnsureBills = append(result.EnsureBills, EnsureBill{
					BillNo:     bill,
					ClientName: finClient,
					ClientCode: code,
				})
			} else {
				result.Baskets = append(result.Baskets, BasketEntry{
					BillNo:     bill,
					FinClient:  finClient,
					DispClient: client,
					Material:   material,
					Qty:        qty,
					Status:     StatusYellow,
					MatchScore: score,
				})
			}
		}
	}

	// Finance-only bills: the opposite kind of gap, one entry per bill
	// number.
	for _, bill := range finBills {
		if dispatchBills[bill] {
			continue
		}
		result.Baskets = append(result.Baskets, BasketEntry{
			BillNo:    bill,
			FinClient: field(finByBill[bill], finSch.Client),
			Status:    StatusRed,
		})
	}

	return result
}

// CommitRun applies one triangulation batch as a single transaction. A
// failure anywhere discards the whole batch; no partial postings or basket
// entries become visible.
func CommitRun(ctx context.Context, pool *pgxpool.Pool, run *RunResult) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, p := range run.Postings {
		_, err := tx.Exec(ctx, `
			INSERT INTO entries (bill_no, client_name, client_code, material, qty, entry_type, created_by, created_at)
			VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $6, $7, ($8 || ' ' || $9)::timestamp)
		`, p.BillNo, p.ClientName, p.ClientCode, p.Material, p.Qty, p.Type, p.CreatedBy, p.Date, p.Time)
		if err != nil {
			return fmt.Errorf("failed to stage posting %d (bill %s): %w", i+1, p.BillNo, err)
		}
	}

	for i, b := range run.Baskets {
		_, err := tx.Exec(ctx, `
			INSERT INTO recon_baskets (bill_no, fin_client, disp_client, material, qty, status, match_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, b.BillNo, b.FinClient, b.DispClient, b.Material, b.Qty, b.Status, b.MatchScore)
		if err != nil {
			return fmt.Errorf("failed to stage basket entry %d (bill %s): %w", i+1, b.BillNo, err)
		}
	}

	for _, e := range run.EnsureBills {
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM pending_bills WHERE bill_no = $1 ORDER BY id LIMIT 1`, e.BillNo).Scan(&id)
		if err == pgx.ErrNoRows {
			_, err = tx.Exec(ctx, `
				INSERT INTO pending_bills (bill_no, client_name, client_code, amount, is_paid, created_at)
				VALUES ($1, $2, NULLIF($3, ''), 0, false, $4)
			`, e.BillNo, e.ClientName, e.ClientCode, run.postingDate())
		}
		if err != nil {
			return fmt.Errorf("failed to ensure pending bill %s: %w", e.BillNo, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit triangulation batch: %w", err)
	}
	return nil
}

func (r *RunResult) postingDate() string {
	if len(r.Postings) > 0 {
		return r.Postings[0].Date
	}
	return time.Now().Format(config.DateFormat)
}
