// Package decode adapts third-party binary decoders to the row/text
// shapes the extraction pipeline consumes.
package decode

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"swipe/internal/port"
)

// ExcelDecoder decodes xlsx workbooks via excelize.
type ExcelDecoder struct{}

// NewExcelDecoder creates an ExcelDecoder.
func NewExcelDecoder() *ExcelDecoder {
	return &ExcelDecoder{}
}

// Decode opens a workbook from bytes and returns every sheet as
// header-keyed row records. The first row of each sheet is treated as
// the header row; sheets without one are skipped.
func (d *ExcelDecoder) Decode(data []byte) ([]port.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sheets []port.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		if len(rows) < 1 {
			continue
		}
		sheets = append(sheets, buildSheet(name, rows[0], rows[1:]))
	}
	return sheets, nil
}

// RenderCSV renders a sheet back to CSV text, header row first, cells
// in header order.
func (d *ExcelDecoder) RenderCSV(sheet port.Sheet) string {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	_ = w.Write(sheet.Headers)
	for _, row := range sheet.Rows {
		record := make([]string, len(sheet.Headers))
		for i, h := range sheet.Headers {
			record[i] = row[h]
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.String()
}

// CSVDecoder decodes comma-separated text into the same sheet shape as
// the workbook path.
type CSVDecoder struct{}

// NewCSVDecoder creates a CSVDecoder.
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{}
}

// Decode reads the CSV as a single sheet named "csv". Rows with fewer
// fields than the header are padded with empty cells.
func (d *CSVDecoder) Decode(data []byte) ([]port.Sheet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}
		rows = append(rows, record)
	}
	return []port.Sheet{buildSheet("csv", header, rows)}, nil
}

// RenderCSV for CSV input is a plain re-render, same as the workbook path.
func (d *CSVDecoder) RenderCSV(sheet port.Sheet) string {
	return (&ExcelDecoder{}).RenderCSV(sheet)
}

func buildSheet(name string, header []string, rows [][]string) port.Sheet {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	sheet := port.Sheet{Name: name, Headers: headers}
	for _, raw := range rows {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(raw) {
				row[h] = strings.TrimSpace(raw[i])
			} else {
				row[h] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}
