package progress

import (
	"errors"
	"testing"
)

func validTable() Table {
	return Table{
		Columns: []string{ColumnPhase, ColumnAssembly, ColumnPart, ColumnMass, ColumnStep},
		Rows: []map[string]string{
			{ColumnPhase: "P1", ColumnAssembly: "ASM-1", ColumnPart: "PT-1", ColumnMass: "120.5", ColumnStep: "Assemblage"},
			{ColumnPhase: "P1", ColumnAssembly: "ASM-1", ColumnPart: "PT-2", ColumnMass: "abc", ColumnStep: "???"},
			{ColumnPhase: "P2", ColumnAssembly: "ASM-2", ColumnPart: "PT-3", ColumnMass: " 10 ", ColumnStep: "None"},
		},
	}
}

func TestValidateTable_OK(t *testing.T) {
	records, err := ValidateTable(validTable())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].MassKg != 120.5 || records[0].Step != StepAssembly {
		t.Fatalf("row 0 coerced wrong: %+v", records[0])
	}
	if records[0].RowProgress != StepAssembly.Weight() {
		t.Fatalf("derived fields not populated: %+v", records[0])
	}
	// malformed mass and unknown step degrade, never fail
	if records[1].MassKg != 0 || records[1].Step != StepNone || records[1].CompletedMassKg != 0 {
		t.Fatalf("row 1 must degrade to zero contribution: %+v", records[1])
	}
	if records[2].MassKg != 10 || records[2].Step != StepNone {
		t.Fatalf("row 2 coerced wrong: %+v", records[2])
	}
}

func TestValidateTable_MissingColumn(t *testing.T) {
	for _, col := range RequiredColumns() {
		tbl := validTable()
		cols := make([]string, 0, len(tbl.Columns))
		for _, c := range tbl.Columns {
			if c != col {
				cols = append(cols, c)
			}
		}
		tbl.Columns = cols
		_, err := ValidateTable(tbl)
		var schemaErr SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("dropping %q: expected SchemaError, got %v", col, err)
		}
		if schemaErr.Column != col {
			t.Fatalf("SchemaError names %q, expected %q", schemaErr.Column, col)
		}
	}
}

func TestValidateTable_StepColumnOptional(t *testing.T) {
	tbl := Table{
		Columns: RequiredColumns(),
		Rows: []map[string]string{
			{ColumnPhase: "P1", ColumnAssembly: "A", ColumnPart: "X", ColumnMass: "4"},
		},
	}
	records, err := ValidateTable(tbl)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if records[0].Step != StepNone || records[0].RowProgress != 0 {
		t.Fatalf("absent step column must initialize rows to None: %+v", records[0])
	}
}

func TestValidateTable_InputNotMutated(t *testing.T) {
	tbl := validTable()
	if _, err := ValidateTable(tbl); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if tbl.Rows[1][ColumnMass] != "abc" || tbl.Rows[1][ColumnStep] != "???" {
		t.Fatalf("input table mutated: %+v", tbl.Rows[1])
	}
}

func TestCoerceMass(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.75", 12.75},
		{"  3 ", 3},
		{"", 0},
		{"n/a", 0},
		{"-5", 0},
		{"NaN", 0},
		{"+Inf", 0},
	}
	for _, tc := range cases {
		if got := coerceMass(tc.in); got != tc.want {
			t.Fatalf("coerceMass(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
