package inventory_test

import (
	"testing"

	"StockBook/api/inventory"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeOpeningIncludesSameDayReceipts(t *testing.T) {
	rows := inventory.Summarize([]inventory.MaterialDay{
		{Material: "Cement", PrevNet: d("100"), In: d("40"), Out: d("30")},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if !r.Opening.Equal(d("140")) {
		t.Errorf("opening = %s, want 140 (prior net plus the day's receipts)", r.Opening)
	}
	if !r.Closing.Equal(d("110")) {
		t.Errorf("closing = %s, want 110", r.Closing)
	}
}

func TestSummarizeSameDayTurnaround(t *testing.T) {
	// Received and fully dispatched on the same day: opening should show
	// the dispatched quantity instead of going negative.
	rows := inventory.Summarize([]inventory.MaterialDay{
		{Material: "Steel", PrevNet: d("0"), In: d("25"), Out: d("25")},
	})
	r := rows[0]
	if !r.Opening.Equal(d("25")) {
		t.Errorf("opening = %s, want 25", r.Opening)
	}
	if !r.Closing.IsZero() {
		t.Errorf("closing = %s, want 0", r.Closing)
	}
}

func TestSummarizeQuietDay(t *testing.T) {
	rows := inventory.Summarize([]inventory.MaterialDay{
		{Material: "Sand", PrevNet: d("60")},
	})
	r := rows[0]
	if !r.Opening.Equal(d("60")) || !r.Closing.Equal(d("60")) {
		t.Errorf("quiet day should carry the balance: opening %s closing %s", r.Opening, r.Closing)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if rows := inventory.Summarize(nil); len(rows) != 0 {
		t.Errorf("expected no rows, got %+v", rows)
	}
}
