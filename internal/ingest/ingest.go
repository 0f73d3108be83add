// Package ingest decodes uploaded fabrication workbooks into the raw tables
// the progress engine validates. Two source formats are supported: xlsx
// workbooks (the format the fabrication office exports) and csv extracts.
package ingest

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"fabtrack/pkg/progress"
)

// Format identifies a supported source encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// zip local-file-header magic; every xlsx starts with it.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// DetectFormat picks the decoder for a payload. The file extension wins when
// it names a known format; otherwise the content is sniffed (xlsx files are
// zip archives) and csv is the fallback.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Decode parses the payload into an untyped table. The first non-empty line
// (or sheet row) is the header; every following row becomes a cell map keyed
// by header name. No schema checks happen here.
func Decode(name string, data []byte) (progress.Table, error) {
	switch DetectFormat(name, data) {
	case FormatXLSX:
		return decodeXLSX(data)
	default:
		return decodeCSV(data)
	}
}

// DecodeRecords decodes the payload and runs schema validation and coercion,
// returning fully computed records. A missing required column surfaces as a
// progress.SchemaError.
func DecodeRecords(name string, data []byte) ([]progress.Record, error) {
	table, err := Decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return progress.ValidateTable(table)
}

// tableFrom builds a Table out of a header row and data rows. Rows shorter
// than the header are padded with empty cells; extra cells past the header are
// dropped. Rows with no non-empty cell are skipped.
func tableFrom(header []string, rows [][]string) progress.Table {
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	table := progress.Table{Columns: columns}
	for _, row := range rows {
		empty := true
		cells := make(map[string]string, len(columns))
		for i, col := range columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			cells[col] = cell
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}
