package progress

import "testing"

func TestFingerprint_StableAcrossRecompute(t *testing.T) {
	base := []Record{
		{Phase: "A", AssemblyID: "1", PartID: "a", MassKg: 10, Step: StepPreparation},
		{Phase: "B", AssemblyID: "2", PartID: "b", MassKg: 20, Step: StepNone},
	}
	before := Fingerprint(base)
	after := Fingerprint(Recompute(base))
	if before != after {
		t.Fatalf("fingerprint changed across recompute: %s vs %s", before, after)
	}
}

func TestFingerprint_SensitiveToLogicalInput(t *testing.T) {
	base := []Record{
		{Phase: "A", AssemblyID: "1", PartID: "a", MassKg: 10, Step: StepPreparation},
	}
	orig := Fingerprint(base)

	mutations := []func(r *Record){
		func(r *Record) { r.Phase = "B" },
		func(r *Record) { r.AssemblyID = "2" },
		func(r *Record) { r.PartID = "b" },
		func(r *Record) { r.MassKg = 11 },
		func(r *Record) { r.Step = StepAssembly },
	}
	for i, mutate := range mutations {
		rec := base[0]
		mutate(&rec)
		if Fingerprint([]Record{rec}) == orig {
			t.Fatalf("mutation %d did not change the fingerprint", i)
		}
	}
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	a := []Record{{Phase: "AB", AssemblyID: "C"}}
	b := []Record{{Phase: "A", AssemblyID: "BC"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("adjacent fields must not collide under concatenation")
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if Fingerprint(nil) != Fingerprint([]Record{}) {
		t.Fatalf("nil and empty snapshots must share a fingerprint")
	}
}
