package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fabtrack/pkg/progress"
)

// decodeCSV reads a comma-separated extract. Ragged rows are tolerated; cell
// alignment against the header is handled downstream in tableFrom.
func decodeCSV(data []byte) (progress.Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var header []string
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return progress.Table{}, fmt.Errorf("read csv: %w", err)
		}
		if header == nil {
			header = stripBOM(row)
			continue
		}
		rows = append(rows, row)
	}
	if header == nil {
		return progress.Table{}, errors.New("csv has no header row")
	}
	return tableFrom(header, rows), nil
}

// stripBOM drops a UTF-8 byte order mark from the first header cell. Excel
// csv exports routinely carry one.
func stripBOM(row []string) []string {
	if len(row) > 0 {
		row[0] = strings.TrimPrefix(row[0], "\uFEFF")
	}
	return row
}
