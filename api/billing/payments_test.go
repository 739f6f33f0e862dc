package billing_test

import (
	"testing"

	"StockBook/api/billing"

	"github.com/shopspring/decimal"
)

func bill(id int64, billNo string, amount string) billing.PendingBill {
	return billing.PendingBill{
		ID:     id,
		BillNo: billNo,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestAllocateFIFOSpillsIntoNextBill(t *testing.T) {
	bills := []billing.PendingBill{
		bill(1, "B100", "1000"),
		bill(2, "B200", "800"),
	}
	applied, unapplied := billing.AllocateFIFO(bills, decimal.RequireFromString("1500"))

	if len(applied) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(applied))
	}
	if applied[0].BillNo != "B100" || !applied[0].Amount.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("first application = %+v, want B100 fully settled", applied[0])
	}
	if applied[1].BillNo != "B200" || !applied[1].Amount.Equal(decimal.RequireFromString("500")) {
		t.Errorf("second application = %+v, want 500 against B200", applied[1])
	}
	if !unapplied.IsZero() {
		t.Errorf("unapplied = %s, want 0", unapplied)
	}
}

func TestAllocateFIFOOverpaymentLeavesRemainder(t *testing.T) {
	bills := []billing.PendingBill{
		bill(1, "B100", "300"),
	}
	applied, unapplied := billing.AllocateFIFO(bills, decimal.RequireFromString("450"))

	if len(applied) != 1 || !applied[0].Amount.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("applications = %+v", applied)
	}
	if !unapplied.Equal(decimal.RequireFromString("150")) {
		t.Errorf("unapplied = %s, want 150", unapplied)
	}
}

func TestAllocateFIFONoBills(t *testing.T) {
	applied, unapplied := billing.AllocateFIFO(nil, decimal.RequireFromString("200"))
	if len(applied) != 0 {
		t.Errorf("applications = %+v, want none", applied)
	}
	if !unapplied.Equal(decimal.RequireFromString("200")) {
		t.Errorf("unapplied = %s, want the whole payment", unapplied)
	}
}

func TestAllocateFIFOSkipsPaidBills(t *testing.T) {
	paid := bill(1, "B100", "100")
	paid.IsPaid = true
	bills := []billing.PendingBill{
		paid,
		bill(2, "B200", "100"),
	}
	applied, _ := billing.AllocateFIFO(bills, decimal.RequireFromString("100"))
	if len(applied) != 1 || applied[0].BillNo != "B200" {
		t.Errorf("applications = %+v, want only B200", applied)
	}
}

func TestAllocateFIFOConservation(t *testing.T) {
	bills := []billing.PendingBill{
		bill(1, "B100", "250.50"),
		bill(2, "B200", "99.99"),
		bill(3, "B300", "1200"),
	}
	for _, payment := range []string{"0.01", "250.50", "350.49", "1550.49", "2000"} {
		amount := decimal.RequireFromString(payment)
		applied, unapplied := billing.AllocateFIFO(bills, amount)
		sum := unapplied
		for _, a := range applied {
			sum = sum.Add(a.Amount)
		}
		if !sum.Equal(amount) {
			t.Errorf("payment %s: applied+unapplied = %s, want %s", payment, sum, amount)
		}
	}
}

func TestAllocateFIFOOrderIsInputOrder(t *testing.T) {
	// The allocator trusts the caller's ordering; a larger newer bill must
	// not jump the queue.
	bills := []billing.PendingBill{
		bill(1, "B-OLD", "10"),
		bill(2, "B-NEW", "5000"),
	}
	applied, _ := billing.AllocateFIFO(bills, decimal.RequireFromString("10"))
	if len(applied) != 1 || applied[0].BillNo != "B-OLD" {
		t.Errorf("applications = %+v, want the oldest bill first", applied)
	}
}
