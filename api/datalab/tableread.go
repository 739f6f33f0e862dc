package datalab

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Row is one record keyed by trimmed column name.
type Row map[string]string

// Table is the normalized form of an uploaded tabular file. Columns keeps
// the original column order so first-match field detection is stable.
type Table struct {
	Columns []string
	Rows    []Row
}

// ReadTable parses uploaded bytes into a Table. The extension picks the
// parser (.csv, .xls, anything else is tried as xlsx); a failed structured
// parse is retried once as CSV before giving up. A nil return means "no
// data" and is a valid, silent outcome, never an error the caller must
// handle.
func ReadTable(data []byte, filename string) *Table {
	if len(data) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))

	var records [][]string
	var err error
	switch ext {
	case ".csv":
		records, err = readCSV(data)
	case ".xls":
		records, err = readXLS(data)
	default:
		records, err = readXLSX(data)
	}
	if (err != nil || len(records) == 0) && ext != ".csv" {
		records, err = readCSV(data)
	}
	if err != nil || len(records) == 0 {
		return nil
	}
	return tableFromRecords(records)
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	return f.GetRows(sheet)
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cols := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		records = append(records, cols)
	}
	return records, nil
}

func tableFromRecords(records [][]string) *Table {
	header := records[0]
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}
}
