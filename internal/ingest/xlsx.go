package ingest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"fabtrack/pkg/progress"
)

// decodeXLSX reads the first sheet of an xlsx workbook. The fabrication
// export always carries a single sheet; additional sheets are ignored.
func decodeXLSX(data []byte) (progress.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return progress.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return progress.Table{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return progress.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return progress.Table{}, fmt.Errorf("sheet %q has no header row", sheets[0])
	}
	return tableFrom(rows[0], rows[1:]), nil
}
