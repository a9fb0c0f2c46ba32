package glyphtrace

import (
	"gonum.org/v1/gonum/floats"
)

// anchorTieMargin is how close two ballot scores must be for the vote on a
// vanguard or rearguard to count as a tie.
const anchorTieMargin = 0.01

// TrainingUnit groups a base definition with the instances used to refine
// it.
type TrainingUnit struct {
	Base              DefinitionUnit
	TrainingInstances []DefinitionUnit
	ErrorMargin       float64
}

// TrainingResult is the outcome of TrainWithReport.
type TrainingResult struct {
	Definition DefinitionUnit
	Reports    []CompatibilityReport

	// Valid lists the indexes of the instances that voted.
	Valid []int
}

// ballots holds the per-cell votes for one trace slot.
type ballots struct {
	content   []float64
	vanguard  []float64
	rearguard []float64
}

func newBallots(cells int) *ballots {
	return &ballots{
		content:   make([]float64, cells),
		vanguard:  make([]float64, cells),
		rearguard: make([]float64, cells),
	}
}

func (b *ballots) reset() {
	for i := range b.content {
		b.content[i] = 0
		b.vanguard[i] = 0
		b.rearguard[i] = 0
	}
}

// cast adds weight to every cell of the run, and to its first and last
// cell on the anchor ballots. Repeated indexes count once.
func (b *ballots) cast(t Trace, weight float64) {
	seen := make(map[int64]struct{}, len(t.Indexes))
	for _, index := range t.Indexes {
		if _, dup := seen[index]; dup || !b.inRange(index) {
			continue
		}
		seen[index] = struct{}{}
		b.content[index] += weight
	}
	if b.inRange(t.First()) {
		b.vanguard[t.First()] += weight
	}
	if b.inRange(t.Last()) {
		b.rearguard[t.Last()] += weight
	}
}

func (b *ballots) inRange(index int64) bool {
	return index >= 0 && index < int64(len(b.content))
}

// TrainWithReport rates every training instance against the base, replaces
// each instance's traces with its realigned version and lets the
// instances whose diagnosis passed vote on a new version of every base
// trace.
//
// TrainWithReport panics if the unit holds no training instances.
func TrainWithReport(unit *TrainingUnit) TrainingResult {
	if len(unit.TrainingInstances) == 0 {
		panic("glyphtrace: training needs at least one training instance")
	}

	base := unit.Base
	result := TrainingResult{
		Reports: make([]CompatibilityReport, len(unit.TrainingInstances)),
	}

	for i, instance := range unit.TrainingInstances {
		report := ReportCompatibility(base, instance, unit.ErrorMargin)
		result.Reports[i] = report
		unit.TrainingInstances[i] = report.ReconstructedInstance

		// An instance can only vote slot by slot if its traces line up.
		if report.Diagnosis && len(report.ReconstructedInstance.Traces) == len(base.Traces) {
			result.Valid = append(result.Valid, i)
		}
	}

	trained := DefinitionUnit{
		ID:         base.ID,
		Resolution: base.Resolution,
		Traces:     make([]Trace, 0, len(base.Traces)),
	}

	cells := int(base.Resolution * base.Resolution)
	votes := newBallots(cells)
	weight := 0.0
	if len(result.Valid) > 0 {
		weight = 1.0 / float64(len(result.Valid))
	}

	for slot, baseTrace := range base.Traces {
		votes.reset()
		votes.cast(baseTrace, 1)

		for _, v := range result.Valid {
			floats.AddConst(-weight, votes.content)
			floats.AddConst(-weight, votes.vanguard)
			floats.AddConst(-weight, votes.rearguard)
			votes.cast(unit.TrainingInstances[v].Traces[slot], 2*weight)
		}

		trace := trainTraceWith(baseTrace, votes)
		Logger().Debug("trained trace",
			"definition", base.ID,
			"slot", slot,
			"cells", len(trace.Indexes))
		trained.Traces = append(trained.Traces, trace)
	}

	Logger().Info("training finished",
		"definition", base.ID,
		"instances", len(unit.TrainingInstances),
		"valid", len(result.Valid))

	result.Definition = trained
	return result
}

// trainTraceWith derives a trace from the ballots of one slot. Cells with a
// positive content score form the run; the vanguard and rearguard are the
// best voted cells, unless the vote is tied, in which case the base keeps
// its own.
func trainTraceWith(base Trace, votes *ballots) Trace {
	var content []int64
	for i, score := range votes.content {
		if score > 0 {
			content = append(content, int64(i))
		}
	}

	vanguard := electAnchor(votes.vanguard, base.First())
	rearguard := electAnchor(votes.rearguard, base.Last())

	return combineIntoTrace(base.TimeStamp, base.Resolution, vanguard, content, rearguard)
}

// electAnchor returns the cell with the highest score, or fallback when
// another cell comes within anchorTieMargin of it.
func electAnchor(scores []float64, fallback int64) int64 {
	if len(scores) == 0 {
		return fallback
	}
	best := floats.MaxIdx(scores)
	top := scores[best]
	for i, s := range scores {
		if i != best && top-s < anchorTieMargin {
			return fallback
		}
	}
	return int64(best)
}

// combineIntoTrace builds the run [vanguard, content..., rearguard], with
// the content deduplicated and stripped of both anchors.
func combineIntoTrace(timeStamp, resolution, vanguard int64, content []int64, rearguard int64) Trace {
	run := make([]int64, 0, len(content)+2)
	run = append(run, vanguard)

	seen := map[int64]struct{}{vanguard: {}, rearguard: {}}
	for _, index := range content {
		if _, dup := seen[index]; dup {
			continue
		}
		seen[index] = struct{}{}
		run = append(run, index)
	}

	if rearguard != vanguard {
		run = append(run, rearguard)
	}
	return NewTrace(timeStamp, run, resolution)
}
