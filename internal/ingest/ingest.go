// Package ingest loads client payloads from JSON and XLSX files for batch
// analysis. Values are left as strings where the source format is untyped;
// the profile normalizer handles coercion.
package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadFile loads payloads from a file, dispatching on extension.
func ReadFile(path string) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(path)
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	}
	return nil, eris.Errorf("ingest: unsupported file type %q", filepath.Ext(path))
}

// ReadJSON loads payloads from a JSON file holding either an array of
// objects or a single object.
func ReadJSON(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payloads []map[string]any
	if err := dec.Decode(&payloads); err == nil {
		return payloads, nil
	}

	dec = json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var single map[string]any
	if err := dec.Decode(&single); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}
	return []map[string]any{single}, nil
}

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX loads payloads from a spreadsheet. The first row supplies the
// field names; each following row becomes one payload. Blank rows and blank
// cells are skipped.
func ReadXLSX(path string, opts XLSXOptions) ([]map[string]any, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(sheet.Rows[0].Cells))
	for j, cell := range sheet.Rows[0].Cells {
		headers[j] = normalizeHeader(cell.String())
	}

	var payloads []map[string]any
	for _, row := range sheet.Rows[1:] {
		payload := map[string]any{}
		for j, cell := range row.Cells {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			value := strings.TrimSpace(cell.String())
			if value == "" {
				continue
			}
			payload[headers[j]] = value
		}
		if len(payload) > 0 {
			payloads = append(payloads, payload)
		}
	}
	return payloads, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// normalizeHeader maps spreadsheet column titles onto payload field names:
// "Employee Count" becomes "employee_count".
func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}
