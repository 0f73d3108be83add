// Package progress computes mass-weighted fabrication progress from per-part
// line items. All functions are pure over their input slice: callers hand in
// an immutable snapshot and receive freshly allocated results, so repeated
// invocation for the same logical input always reproduces the same output.
package progress

// Step identifies one fabrication processing stage. The string values are the
// spreadsheet wire values and appear verbatim in reports.
type Step string

const (
	// StepNone marks rows that have not entered any processing stage.
	StepNone Step = "None"
	// StepPreparation is the first real stage (cutting, drilling, fit-up prep).
	StepPreparation Step = "Préparation"
	// StepAssembly covers welding and bolt-up of prepared parts.
	StepAssembly Step = "Assemblage"
	// StepSurfaceTreatment covers blasting, galvanizing and painting.
	StepSurfaceTreatment Step = "Traitement de surface"
	// StepFinalization is the terminal stage; rows here are 100% complete.
	StepFinalization Step = "Finalisation"
)

// stepOrder defines the total rank order used for cumulative ("at least this
// far along") comparisons. StepNone is deliberately absent: it ranks below
// every real step, as does any unrecognized wire value.
var stepOrder = []Step{StepPreparation, StepAssembly, StepSurfaceTreatment, StepFinalization}

// stepWeights maps each step to the progress fraction credited to rows at
// that step. Weights increase monotonically with rank and terminate at 1.0.
var stepWeights = map[Step]float64{
	StepPreparation:      0.25,
	StepAssembly:         0.60,
	StepSurfaceTreatment: 0.85,
	StepFinalization:     1.00,
}

var stepRanks = func() map[Step]int {
	m := make(map[Step]int, len(stepOrder))
	for i, s := range stepOrder {
		m[s] = i
	}
	return m
}()

// Steps returns the real processing steps in rank order. StepNone is not a
// reportable step and is excluded.
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// Rank returns the position of the step in the fixed processing order.
// StepNone and unrecognized values rank -1, below every real step.
func (s Step) Rank() int {
	if r, ok := stepRanks[s]; ok {
		return r
	}
	return -1
}

// Weight returns the progress fraction in [0,1] credited to rows at this
// step. StepNone and unrecognized values contribute 0.0 rather than failing;
// malformed step data degrades to "not started".
func (s Step) Weight() float64 {
	return stepWeights[s]
}

// StepForRank is the inverse of Rank. Ranks outside the real step range map
// to StepNone, which also covers the empty-group sentinel rank -1.
func StepForRank(rank int) Step {
	if rank < 0 || rank >= len(stepOrder) {
		return StepNone
	}
	return stepOrder[rank]
}

// ParseStep resolves a wire value to a known step. The second result reports
// whether the value named a real step or the explicit StepNone sentinel;
// callers that ignore it fall back to StepNone, matching the degrade-not-fail
// policy for dirty spreadsheet data.
func ParseStep(value string) (Step, bool) {
	s := Step(value)
	if _, ok := stepRanks[s]; ok {
		return s, true
	}
	if s == StepNone {
		return StepNone, true
	}
	return StepNone, false
}
