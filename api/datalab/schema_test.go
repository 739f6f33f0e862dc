package datalab_test

import (
	"testing"

	"StockBook/api/datalab"
)

func TestDetectSchemaRoles(t *testing.T) {
	s := datalab.DetectSchema([]string{"bill_no", "Client Name", "Material", "Qty (tons)"})
	if s.BillNo != "bill_no" {
		t.Errorf("BillNo = %q, want bill_no", s.BillNo)
	}
	if s.Client != "Client Name" {
		t.Errorf("Client = %q, want Client Name", s.Client)
	}
	if s.Material != "Material" {
		t.Errorf("Material = %q, want Material", s.Material)
	}
	if s.Qty != "Qty (tons)" {
		t.Errorf("Qty = %q, want Qty (tons)", s.Qty)
	}
}

func TestDetectSchemaFirstMatchWins(t *testing.T) {
	s := datalab.DetectSchema([]string{"client_a", "client_b"})
	if s.Client != "client_a" {
		t.Errorf("Client = %q, want client_a", s.Client)
	}
}

func TestDetectSchemaBillNoIsExact(t *testing.T) {
	// "bill_number" must not claim the bill role; only the literal header
	// does.
	s := datalab.DetectSchema([]string{"bill_number", "amount"})
	if s.BillNo != "" {
		t.Errorf("BillNo = %q, want unmatched", s.BillNo)
	}
}

func TestDetectSchemaMissingRoles(t *testing.T) {
	s := datalab.DetectSchema([]string{"foo", "bar"})
	if s != (datalab.TableSchema{}) {
		t.Errorf("expected empty schema, got %+v", s)
	}
}
