package datalab_test

import (
	"testing"

	"StockBook/api/datalab"

	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	data := []byte("bill_no,client,qty\nB100,Acme Trader,5\nB200,Bulk Cement Co,12\n")
	table := datalab.ReadTable(data, "dispatch.csv")
	if table == nil {
		t.Fatal("expected a table, got nil")
	}
	if len(table.Columns) != 3 || table.Columns[0] != "bill_no" {
		t.Fatalf("unexpected columns: %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[1]["client"] != "Bulk Cement Co" {
		t.Errorf("row value = %q, want Bulk Cement Co", table.Rows[1]["client"])
	}
}

func TestReadTableRaggedRowsPadded(t *testing.T) {
	data := []byte("bill_no,client,qty\nB100,Acme Trader\n")
	table := datalab.ReadTable(data, "short.csv")
	if table == nil {
		t.Fatal("expected a table, got nil")
	}
	if got := table.Rows[0]["qty"]; got != "" {
		t.Errorf("missing cell = %q, want empty string", got)
	}
}

func TestReadTableTrimsHeaders(t *testing.T) {
	data := []byte(" bill_no , client \nB100,Acme\n")
	table := datalab.ReadTable(data, "padded.csv")
	if table == nil {
		t.Fatal("expected a table, got nil")
	}
	if table.Columns[0] != "bill_no" || table.Columns[1] != "client" {
		t.Errorf("headers not trimmed: %v", table.Columns)
	}
	if table.Rows[0]["bill_no"] != "B100" {
		t.Errorf("row not keyed by trimmed header: %v", table.Rows[0])
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"bill_no", "client", "qty"},
		{"B100", "Acme Trader", 5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	table := datalab.ReadTable(buf.Bytes(), "dispatch.xlsx")
	if table == nil {
		t.Fatal("expected a table, got nil")
	}
	if len(table.Rows) != 1 || table.Rows[0]["bill_no"] != "B100" {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
}

func TestReadTableCSVContentWithWrongExtension(t *testing.T) {
	// Not a real workbook, so the xlsx parse fails and the CSV retry
	// should pick it up.
	data := []byte("bill_no,client\nB100,Acme Trader\n")
	table := datalab.ReadTable(data, "mislabeled.xlsx")
	if table == nil {
		t.Fatal("expected CSV fallback to produce a table")
	}
	if table.Rows[0]["client"] != "Acme Trader" {
		t.Errorf("fallback row = %+v", table.Rows[0])
	}
}

func TestReadTableEmptyInput(t *testing.T) {
	if table := datalab.ReadTable(nil, "empty.csv"); table != nil {
		t.Errorf("expected nil for empty input, got %+v", table)
	}
}
