package progress

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Source table column names as they appear in the fabrication workbook.
const (
	ColumnPhase    = "PHASE"
	ColumnAssembly = "ASSEMBLY NO."
	ColumnPart     = "PART NO."
	ColumnMass     = "TOT MASS (Kg)"
	ColumnStep     = "Etape"
)

// RequiredColumns lists the columns a source table must declare before any
// processing happens. The step column is optional; absent steps initialize
// to StepNone.
func RequiredColumns() []string {
	return []string{ColumnPhase, ColumnAssembly, ColumnPart, ColumnMass}
}

// SchemaError reports a structurally required column missing from the source
// table. It is fatal to the calling flow: no partial record set is produced.
type SchemaError struct {
	Column string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("source table missing required column %q", e.Column)
}

// ValidateTable checks the table schema and coerces rows into Records.
//
// A missing required column fails with SchemaError naming the column. Cell
// level problems never fail: a mass that does not parse as a number becomes
// 0.0 (no contribution), and a step value that names no known stage becomes
// StepNone. The input table is not mutated. Derived fields are populated via
// Recompute so the returned records are immediately consistent.
func ValidateTable(t Table) ([]Record, error) {
	for _, col := range RequiredColumns() {
		if !t.HasColumn(col) {
			return nil, SchemaError{Column: col}
		}
	}
	hasStep := t.HasColumn(ColumnStep)

	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := Record{
			Phase:      row[ColumnPhase],
			AssemblyID: row[ColumnAssembly],
			PartID:     row[ColumnPart],
			MassKg:     coerceMass(row[ColumnMass]),
			Step:       StepNone,
		}
		if hasStep {
			rec.Step, _ = ParseStep(strings.TrimSpace(row[ColumnStep]))
		}
		records = append(records, rec)
	}
	return Recompute(records), nil
}

// coerceMass parses a mass cell, treating malformed values as zero
// contribution rather than rejecting the row. Negative masses are clamped to
// zero: a part cannot subtract from treated tonnage.
func coerceMass(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
