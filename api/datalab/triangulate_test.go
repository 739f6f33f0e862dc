package datalab_test

import (
	"testing"
	"time"

	"StockBook/api/datalab"
)

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func mkTable(columns []string, rows ...[]string) *datalab.Table {
	t := &datalab.Table{Columns: columns}
	for _, rec := range rows {
		row := make(datalab.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func refTable() *datalab.Table {
	return mkTable([]string{"code", "name"},
		[]string{"tmpc-000001", "Acme Trader"},
		[]string{"tmpc-000002", "Bulk Cement Co"},
	)
}

func TestTriangulateAutoApply(t *testing.T) {
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"B100", "Acme Trader"},
	)
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"B100", "Acme Traders", "Cement", "5"},
	)

	run := datalab.Triangulate(refTable(), fin, disp, 90, testNow)

	if len(run.Postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(run.Postings))
	}
	p := run.Postings[0]
	if p.Type != "OUT" {
		t.Errorf("posting type = %q, want OUT", p.Type)
	}
	if p.ClientName != "Acme Trader" {
		t.Errorf("posting client = %q, want the finance-side name", p.ClientName)
	}
	if p.ClientCode != "tmpc-000001" {
		t.Errorf("posting code = %q, want tmpc-000001", p.ClientCode)
	}
	if p.Qty != 5 {
		t.Errorf("posting qty = %v, want 5", p.Qty)
	}
	if p.CreatedBy != "import" {
		t.Errorf("posting created_by = %q, want import", p.CreatedBy)
	}
	if len(run.Baskets) != 0 {
		t.Errorf("auto-applied match must not create basket entries, got %+v", run.Baskets)
	}
	if len(run.EnsureBills) != 1 || run.EnsureBills[0].BillNo != "B100" {
		t.Errorf("expected an ensure-bill for B100, got %+v", run.EnsureBills)
	}
}

func TestTriangulateLowScoreGoesYellow(t *testing.T) {
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"B200", "Acme Trader"},
	)
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"B200", "Bulk Cement Co", "Cement", "3"},
	)

	run := datalab.Triangulate(nil, fin, disp, 90, testNow)

	if len(run.Postings) != 0 {
		t.Fatalf("low score must not post, got %+v", run.Postings)
	}
	if len(run.Baskets) != 1 {
		t.Fatalf("expected 1 basket entry, got %d", len(run.Baskets))
	}
	b := run.Baskets[0]
	if b.Status != datalab.StatusYellow {
		t.Errorf("status = %q, want YELLOW", b.Status)
	}
	if b.FinClient != "Acme Trader" || b.DispClient != "Bulk Cement Co" {
		t.Errorf("basket clients = %q / %q", b.FinClient, b.DispClient)
	}
	if b.MatchScore <= 0 || b.MatchScore >= 90 {
		t.Errorf("match score = %d, want a positive sub-threshold score", b.MatchScore)
	}
}

func TestTriangulateDispatchWithoutFinanceIsRed(t *testing.T) {
	fin := mkTable([]string{"bill_no", "client"})
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"B300", "Acme Trader", "Steel", "2"},
	)

	run := datalab.Triangulate(nil, fin, disp, 90, testNow)

	if len(run.Baskets) != 1 || run.Baskets[0].Status != datalab.StatusRed {
		t.Fatalf("expected one RED entry, got %+v", run.Baskets)
	}
	if run.Baskets[0].BillNo != "B300" {
		t.Errorf("bill = %q, want B300", run.Baskets[0].BillNo)
	}
}

func TestTriangulateFinanceWithoutDispatchIsRed(t *testing.T) {
	// Duplicate finance rows for the same bill still produce exactly one
	// RED entry.
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"B400", "Acme Trader"},
		[]string{"B400", "Acme Trader"},
	)

	run := datalab.Triangulate(nil, fin, nil, 90, testNow)

	if len(run.Baskets) != 1 {
		t.Fatalf("expected exactly one RED entry, got %d", len(run.Baskets))
	}
	b := run.Baskets[0]
	if b.Status != datalab.StatusRed || b.BillNo != "B400" || b.FinClient != "Acme Trader" {
		t.Errorf("unexpected entry: %+v", b)
	}
}

func TestTriangulateUnbilledDispatchIsBlue(t *testing.T) {
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"", "Acme Trader", "Cement", "1"},
		[]string{"nan", "Bulk Cement Co", "Steel", "2"},
		[]string{"NaN", "Acme Trader", "Sand", "3"},
	)

	run := datalab.Triangulate(nil, nil, disp, 90, testNow)

	if len(run.Postings) != 0 {
		t.Fatalf("unbilled rows must not post, got %+v", run.Postings)
	}
	if len(run.Baskets) != 3 {
		t.Fatalf("expected 3 BLUE entries, got %d", len(run.Baskets))
	}
	for _, b := range run.Baskets {
		if b.Status != datalab.StatusBlue {
			t.Errorf("status = %q, want BLUE", b.Status)
		}
		if b.BillNo != "" {
			t.Errorf("BLUE entry carries bill %q, want none", b.BillNo)
		}
	}
}

func TestTriangulateFinanceFirstRowWins(t *testing.T) {
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"B500", "Acme Trader"},
		[]string{"B500", "Completely Different Name"},
	)
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"B500", "Acme Trader", "Cement", "4"},
	)

	run := datalab.Triangulate(nil, fin, disp, 90, testNow)

	if len(run.Postings) != 1 {
		t.Fatalf("expected the first finance row to match, got %+v baskets %+v", run.Postings, run.Baskets)
	}
	if run.Postings[0].ClientName != "Acme Trader" {
		t.Errorf("client = %q, want first finance row's name", run.Postings[0].ClientName)
	}
}

func TestTriangulateEmptyFinanceBillsIgnored(t *testing.T) {
	// Finance rows without a usable bill number never reach the
	// finance-only RED pass.
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"", "Acme Trader"},
		[]string{"nan", "Bulk Cement Co"},
	)

	run := datalab.Triangulate(nil, fin, nil, 90, testNow)

	if len(run.Baskets) != 0 {
		t.Errorf("expected no entries, got %+v", run.Baskets)
	}
}

func TestTriangulateAllNilTables(t *testing.T) {
	run := datalab.Triangulate(nil, nil, nil, 90, testNow)
	if len(run.Postings) != 0 || len(run.Baskets) != 0 || len(run.EnsureBills) != 0 {
		t.Errorf("expected an empty run, got %+v", run)
	}
}

func TestTriangulatePostingTimestamp(t *testing.T) {
	fin := mkTable([]string{"bill_no", "client"},
		[]string{"B600", "Acme Trader"},
	)
	disp := mkTable([]string{"bill_no", "client", "material", "qty"},
		[]string{"B600", "Acme Trader", "Cement", "7"},
	)

	run := datalab.Triangulate(nil, fin, disp, 90, testNow)

	if len(run.Postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(run.Postings))
	}
	if run.Postings[0].Date != "2025-03-14" {
		t.Errorf("date = %q, want 2025-03-14", run.Postings[0].Date)
	}
	if run.Postings[0].Time != "10:30:00" {
		t.Errorf("time = %q, want 10:30:00", run.Postings[0].Time)
	}
}
