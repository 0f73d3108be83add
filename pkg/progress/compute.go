package progress

import "sort"

// StepAdvancement reports cumulative treated mass for one processing step.
// A row counts toward every step up to and including its own ("tout ou
// rien"), so treated mass is monotonically non-increasing as rank advances.
type StepAdvancement struct {
	Step          Step    `json:"step"`
	TreatedMassKg float64 `json:"treated_mass_kg"`
	Pct           float64 `json:"pct"`
}

// PhaseAdvancement reports mass-weighted completion for one phase. Unlike
// the step view this is not cumulative by rank: treated mass is the sum of
// the rows' step-weighted completed mass.
type PhaseAdvancement struct {
	Phase         string  `json:"phase"`
	TreatedMassKg float64 `json:"treated_mass_kg"`
	Pct           float64 `json:"pct"`
}

// AssemblySummary rolls one assembly up to its total mass and the step of its
// least-advanced part.
type AssemblySummary struct {
	Phase      string  `json:"phase"`
	AssemblyID string  `json:"assembly_id"`
	MassKg     float64 `json:"assembly_mass_kg"`
	Step       Step    `json:"assembly_step"`
}

// Summary is the global KPI triple consumed by dashboards.
type Summary struct {
	TotalMassKg     float64 `json:"total_mass_kg"`
	CompletedMassKg float64 `json:"completed_mass_kg"`
	Pct             float64 `json:"pct"`
}

// pctOf guards every percentage in this package against a zero denominator:
// an empty or all-zero-mass dataset reports 0.0 everywhere, never NaN.
func pctOf(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// StepAdvancements computes the cumulative per-step view over the snapshot.
// The result has one entry per real step, in rank order. For step S the
// treated mass sums every row whose rank is at least rank(S): a row in a
// later step counts toward all earlier steps' totals.
func StepAdvancements(records []Record) []StepAdvancement {
	var total float64
	for _, rec := range records {
		total += rec.MassKg
	}

	out := make([]StepAdvancement, 0, len(stepOrder))
	for _, step := range stepOrder {
		rank := step.Rank()
		var treated float64
		for _, rec := range records {
			if rec.Step.Rank() >= rank {
				treated += rec.MassKg
			}
		}
		out = append(out, StepAdvancement{
			Step:          step,
			TreatedMassKg: treated,
			Pct:           pctOf(treated, total),
		})
	}
	return out
}

// PhaseAdvancements computes the mass-weighted completion of each distinct
// phase present in the snapshot, sorted by phase identifier ascending.
func PhaseAdvancements(records []Record) []PhaseAdvancement {
	type phaseTotals struct {
		mass    float64
		treated float64
	}
	totals := make(map[string]*phaseTotals)
	phases := make([]string, 0)
	for _, rec := range records {
		pt, ok := totals[rec.Phase]
		if !ok {
			pt = &phaseTotals{}
			totals[rec.Phase] = pt
			phases = append(phases, rec.Phase)
		}
		pt.mass += rec.MassKg
		pt.treated += rec.CompletedMassKg
	}
	sort.Strings(phases)

	out := make([]PhaseAdvancement, 0, len(phases))
	for _, phase := range phases {
		pt := totals[phase]
		out = append(out, PhaseAdvancement{
			Phase:         phase,
			TreatedMassKg: pt.treated,
			Pct:           pctOf(pt.treated, pt.mass),
		})
	}
	return out
}

// AssemblySummaries groups rows by (phase, assembly) and derives each
// assembly's step from the minimum rank among its parts: an assembly is only
// as far along as its least-advanced member. Results are sorted by phase then
// assembly identifier for deterministic output.
func AssemblySummaries(records []Record) []AssemblySummary {
	type groupKey struct {
		phase    string
		assembly string
	}
	type group struct {
		mass    float64
		minRank int
		seen    bool
	}
	groups := make(map[groupKey]*group)
	keys := make([]groupKey, 0)
	for _, rec := range records {
		key := groupKey{phase: rec.Phase, assembly: rec.AssemblyID}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.mass += rec.MassKg
		rank := rec.Step.Rank()
		if !g.seen || rank < g.minRank {
			g.minRank = rank
			g.seen = true
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].phase != keys[j].phase {
			return keys[i].phase < keys[j].phase
		}
		return keys[i].assembly < keys[j].assembly
	})

	out := make([]AssemblySummary, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		rank := -1
		if g.seen {
			rank = g.minRank
		}
		out = append(out, AssemblySummary{
			Phase:      key.phase,
			AssemblyID: key.assembly,
			MassKg:     g.mass,
			Step:       StepForRank(rank),
		})
	}
	return out
}

// Summarize reduces the snapshot to the global KPI triple.
func Summarize(records []Record) Summary {
	var total, completed float64
	for _, rec := range records {
		total += rec.MassKg
		completed += rec.CompletedMassKg
	}
	return Summary{
		TotalMassKg:     total,
		CompletedMassKg: completed,
		Pct:             pctOf(completed, total),
	}
}
