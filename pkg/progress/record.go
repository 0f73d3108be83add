package progress

// Record is one validated line item: a single fabricated part.
//
// RowProgress and CompletedMassKg are derived fields. They are never set
// independently; Recompute rewrites both from MassKg and Step on every pass,
// so a record is internally consistent whenever it leaves this package.
type Record struct {
	Phase           string  `json:"phase"`
	AssemblyID      string  `json:"assembly_id"`
	PartID          string  `json:"part_id"`
	MassKg          float64 `json:"mass_kg"`
	Step            Step    `json:"step"`
	RowProgress     float64 `json:"row_progress_pct"`
	CompletedMassKg float64 `json:"completed_mass_kg"`
}

// Table is the raw tabular input handed over by a loader collaborator.
// Cell values are untyped strings exactly as read from the source; schema
// validation and type coercion happen in ValidateTable.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Recompute returns a copy of records with RowProgress and CompletedMassKg
// derived from each row's step and mass. It is idempotent: applying it to an
// already computed slice yields identical output. Unknown step values degrade
// to zero progress, never to an error.
func Recompute(records []Record) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		rec.RowProgress = rec.Step.Weight()
		rec.CompletedMassKg = rec.MassKg * rec.RowProgress
		out[i] = rec
	}
	return out
}
