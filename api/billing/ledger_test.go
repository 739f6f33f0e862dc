package billing_test

import (
	"testing"
	"time"

	"StockBook/api/billing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProjectLedgerRunningBalance(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2025, 3, n, 12, 0, 0, 0, time.UTC)
	}
	txns := []billing.LedgerTxn{
		{Date: day(3), Description: "Payment (Cash)", Credit: d("400")},
		{Date: day(1), Description: "Booking: Cement x 10", Debit: d("1000")},
		{Date: day(2), Description: "Booking: Steel x 2", Debit: d("500")},
	}

	lines := billing.ProjectLedger(txns)

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Newest first for display.
	if lines[0].Description != "Payment (Cash)" {
		t.Errorf("first line = %q, want the newest transaction", lines[0].Description)
	}
	// Balances follow chronological order regardless of display order.
	if !lines[2].Balance.Equal(d("1000")) {
		t.Errorf("oldest balance = %s, want 1000", lines[2].Balance)
	}
	if !lines[1].Balance.Equal(d("1500")) {
		t.Errorf("middle balance = %s, want 1500", lines[1].Balance)
	}
	if !lines[0].Balance.Equal(d("1100")) {
		t.Errorf("newest balance = %s, want 1100", lines[0].Balance)
	}
}

func TestProjectLedgerStableOnEqualDates(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	txns := []billing.LedgerTxn{
		{Date: at, Description: "first", Debit: d("100")},
		{Date: at, Description: "second", Debit: d("50")},
	}
	lines := billing.ProjectLedger(txns)
	if lines[1].Description != "first" || lines[0].Description != "second" {
		t.Errorf("equal-date ordering changed: %q then %q", lines[1].Description, lines[0].Description)
	}
	if !lines[0].Balance.Equal(d("150")) {
		t.Errorf("final balance = %s, want 150", lines[0].Balance)
	}
}

func TestProjectLedgerEmpty(t *testing.T) {
	if lines := billing.ProjectLedger(nil); len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}
}

func TestProjectLedgerDoesNotMutateInput(t *testing.T) {
	txns := []billing.LedgerTxn{
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Description: "late"},
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "early"},
	}
	billing.ProjectLedger(txns)
	if txns[0].Description != "late" {
		t.Errorf("input slice was reordered")
	}
}
