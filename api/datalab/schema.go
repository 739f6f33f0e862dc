package datalab

import "strings"

// TableSchema records which column plays which semantic role in an uploaded
// table. Empty string means the role was not found; every row then reads ""
// for that field. Detection happens once per table, not per row.
type TableSchema struct {
	BillNo   string
	Client   string
	Material string
	Qty      string
	Code     string
	Name     string
}

// DetectSchema scans column names case-insensitively for embedded keywords.
// The first column matching a keyword wins that role; later matches are
// ignored. This is a best-effort heuristic, not a validation pass.
func DetectSchema(columns []string) TableSchema {
	var s TableSchema
	for _, col := range columns {
		lc := strings.ToLower(col)
		if s.BillNo == "" && lc == "bill_no" {
			s.BillNo = col
		}
		if s.Client == "" && strings.Contains(lc, "client") {
			s.Client = col
		}
		if s.Material == "" && (strings.Contains(lc, "material") || strings.Contains(lc, "item")) {
			s.Material = col
		}
		if s.Qty == "" && (strings.Contains(lc, "qty") || strings.Contains(lc, "quantity")) {
			s.Qty = col
		}
		if s.Code == "" && strings.Contains(lc, "code") {
			s.Code = col
		}
		if s.Name == "" && strings.Contains(lc, "name") {
			s.Name = col
		}
	}
	return s
}

// field reads a row value for a detected column, trimmed. Returns "" when
// the role was not detected.
func field(row Row, col string) string {
	if col == "" {
		return ""
	}
	return strings.TrimSpace(row[col])
}
