package inventory_test

import (
	"testing"
	"time"

	"StockBook/api/inventory"
)

func txn(day int, material string, in, out string) inventory.StockTxn {
	t := inventory.StockTxn{
		Date:     time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC),
		Material: material,
	}
	if in != "" {
		t.In = d(in)
	}
	if out != "" {
		t.Out = d(out)
	}
	return t
}

func TestProjectStockLedgerSingleBalance(t *testing.T) {
	txns := []inventory.StockTxn{
		txn(3, "Cement", "", "20"),
		txn(1, "Cement", "100", ""),
		txn(2, "Cement", "", "30"),
	}
	lines := inventory.ProjectStockLedger(txns, false)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Newest first; balances computed oldest first.
	if !lines[2].Balance.Equal(d("100")) {
		t.Errorf("oldest balance = %s, want 100", lines[2].Balance)
	}
	if !lines[1].Balance.Equal(d("70")) {
		t.Errorf("middle balance = %s, want 70", lines[1].Balance)
	}
	if !lines[0].Balance.Equal(d("50")) {
		t.Errorf("newest balance = %s, want 50", lines[0].Balance)
	}
}

func TestProjectStockLedgerPerMaterialBalances(t *testing.T) {
	txns := []inventory.StockTxn{
		txn(1, "Cement", "100", ""),
		txn(2, "Steel", "40", ""),
		txn(3, "Cement", "", "25"),
	}
	lines := inventory.ProjectStockLedger(txns, true)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Newest first: the Cement dispatch must track only Cement's balance.
	if lines[0].Material != "Cement" || !lines[0].Balance.Equal(d("75")) {
		t.Errorf("line 0 = %s %s, want Cement 75", lines[0].Material, lines[0].Balance)
	}
	if lines[1].Material != "Steel" || !lines[1].Balance.Equal(d("40")) {
		t.Errorf("line 1 = %s %s, want Steel 40", lines[1].Material, lines[1].Balance)
	}
}

func TestProjectStockLedgerEmpty(t *testing.T) {
	if lines := inventory.ProjectStockLedger(nil, false); len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}
}
