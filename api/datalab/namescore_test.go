package datalab_test

import (
	"testing"

	"StockBook/api/datalab"
)

func TestNameScoreExactMatch(t *testing.T) {
	if got := datalab.NameScore("Acme Trader", "Acme Trader"); got != 100 {
		t.Errorf("identical names scored %d, want 100", got)
	}
	if got := datalab.NameScore("ACME TRADER", "acme trader"); got != 100 {
		t.Errorf("case-folded names scored %d, want 100", got)
	}
}

func TestNameScoreNearMatch(t *testing.T) {
	got := datalab.NameScore("Acme Trader", "Acme Traders")
	if got != 95 {
		t.Errorf("near match scored %d, want 95", got)
	}
}

func TestNameScoreDistantNames(t *testing.T) {
	got := datalab.NameScore("Acme Trader", "Bulk Cement Co")
	if got >= 90 {
		t.Errorf("unrelated names scored %d, want below auto-apply threshold", got)
	}
}

func TestNameScoreEmptyInputs(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"Acme Trader", ""},
		{"", "Acme Trader"},
		{"   ", "Acme Trader"},
	}
	for _, c := range cases {
		if got := datalab.NameScore(c[0], c[1]); got != 0 {
			t.Errorf("NameScore(%q, %q) = %d, want 0", c[0], c[1], got)
		}
	}
}
