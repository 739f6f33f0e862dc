package importexport

import (
	"testing"

	"StockBook/api/datalab"

	"github.com/shopspring/decimal"
)

func entrySchema() datalab.TableSchema {
	return datalab.DetectSchema([]string{"bill_no", "client", "material", "qty"})
}

func TestParseEntryRowCarriesBillAmount(t *testing.T) {
	row := datalab.Row{
		"bill_no":  "B1",
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "10",
		"Amount":   "5000",
	}
	e, ok := parseEntryRow(row, entrySchema())
	if !ok {
		t.Fatal("row rejected")
	}
	if !e.HasAmount {
		t.Fatal("sheet amount was dropped")
	}
	if !e.Amount.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("amount = %s, want 5000", e.Amount)
	}
	if e.BillNo != "B1" {
		t.Errorf("bill = %q, want B1", e.BillNo)
	}
}

func TestParseEntryRowWithoutAmount(t *testing.T) {
	row := datalab.Row{
		"bill_no":  "B2",
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "3",
	}
	e, ok := parseEntryRow(row, entrySchema())
	if !ok {
		t.Fatal("row rejected")
	}
	if e.HasAmount {
		t.Errorf("HasAmount = true with no amount column")
	}
}

func TestParseEntryRowKeepsSheetDate(t *testing.T) {
	row := datalab.Row{
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "1",
		"Date":     "2024-11-05",
		"Time":     "14:22:10",
	}
	e, ok := parseEntryRow(row, entrySchema())
	if !ok {
		t.Fatal("row rejected")
	}
	if e.PostedAt != "2024-11-05 14:22:10" {
		t.Errorf("posted at %q, want the sheet's own timestamp", e.PostedAt)
	}
}

func TestParseEntryRowDateWithoutTime(t *testing.T) {
	row := datalab.Row{
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "1",
		"date":     "2024-11-05",
	}
	e, _ := parseEntryRow(row, entrySchema())
	if e.PostedAt != "2024-11-05 00:00:00" {
		t.Errorf("posted at %q, want midnight on the sheet date", e.PostedAt)
	}
}

func TestParseEntryRowNoDateMeansImportTime(t *testing.T) {
	row := datalab.Row{
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "1",
	}
	e, _ := parseEntryRow(row, entrySchema())
	if e.PostedAt != "" {
		t.Errorf("posted at %q, want empty (post at import time)", e.PostedAt)
	}
}

func TestParseEntryRowTypeHeaderAnyCase(t *testing.T) {
	for _, header := range []string{"type", "Type", "TYPE", "entry_type"} {
		row := datalab.Row{
			"client":   "Acme Trader",
			"material": "Cement",
			"qty":      "2",
			header:     "Out",
		}
		e, ok := parseEntryRow(row, entrySchema())
		if !ok {
			t.Fatalf("header %q: row rejected", header)
		}
		if e.EntryType != "OUT" {
			t.Errorf("header %q: entry type = %q, want OUT", header, e.EntryType)
		}
	}
}

func TestParseEntryRowDefaultsToIn(t *testing.T) {
	row := datalab.Row{
		"client":   "Acme Trader",
		"material": "Cement",
		"qty":      "2",
	}
	e, _ := parseEntryRow(row, entrySchema())
	if e.EntryType != "IN" {
		t.Errorf("entry type = %q, want IN", e.EntryType)
	}
}

func TestParseEntryRowRejectsIncompleteRows(t *testing.T) {
	cases := []datalab.Row{
		{"material": "Cement", "qty": "1"},                          // no client
		{"client": "Acme Trader", "qty": "1"},                       // no material
		{"client": "Acme Trader", "material": "Cement"},             // no qty
		{"client": "Acme Trader", "material": "Cement", "qty": "x"}, // bad qty
	}
	for i, row := range cases {
		if _, ok := parseEntryRow(row, entrySchema()); ok {
			t.Errorf("case %d: incomplete row accepted: %v", i, row)
		}
	}
}
