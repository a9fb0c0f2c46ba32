package glyphtrace

import (
	"fmt"
	"math"
)

const (
	// CosError is the cosine similarity two vectors must exceed to be
	// considered alike.
	CosError = 0.86

	// timingResolutionFactor scales a definition's resolution into the
	// largest time stamp difference that still earns a timing score.
	timingResolutionFactor = 0.2
)

// ReconstructionStep records one decision taken while aligning a candidate
// against a base definition.
type ReconstructionStep struct {
	BaseIndex      int
	CandidateIndex int

	// Merged is set when the candidate trace was joined with the next one.
	Merged bool
	// Accepted is set when the chosen trace clears CosError on both the
	// displacement and the average offset.
	Accepted bool

	TraceCos  float64
	OffsetCos float64
	LengthGap int
}

func (s ReconstructionStep) String() string {
	kind := "single"
	if s.Merged {
		kind = "merged"
	}
	return fmt.Sprintf("base %d <- candidate %d (%s) accepted=%t trace=%.3f offset=%.3f gap=%d",
		s.BaseIndex, s.CandidateIndex, kind, s.Accepted, s.TraceCos, s.OffsetCos, s.LengthGap)
}

// CompatibilityReport describes how well a candidate definition matches a
// base definition.
type CompatibilityReport struct {
	// TraceWithinRange is false when the candidate has fewer traces than
	// the base, or more than twice as many.
	TraceWithinRange bool

	TimingRating      float64
	VectorsSimilarity float64
	OffsetsSimilarity float64

	Diagnosis bool

	// Reconstructed reports whether the candidate traces were realigned.
	Reconstructed bool
	Log           []ReconstructionStep

	// ReconstructedInstance is the candidate as used for rating: realigned
	// when reconstruction succeeded, a plain copy otherwise.
	ReconstructedInstance DefinitionUnit
}

// traceScore holds the three signals used to compare a candidate trace
// against a base trace.
type traceScore struct {
	traceCos  float64
	offsetCos float64
	lengthGap int
}

func scoreTrace(base, candidate Trace) traceScore {
	gap := len(base.Indexes) - len(candidate.Indexes)
	if gap < 0 {
		gap = -gap
	}
	return traceScore{
		traceCos:  CosBetween(base.Displacement, candidate.Displacement),
		offsetCos: CosBetween(base.AverageOffset, candidate.AverageOffset),
		lengthGap: gap,
	}
}

func (s traceScore) passes() bool {
	return s.traceCos > CosError && s.offsetCos > CosError
}

// ReconstructTraces aligns the traces of candidate against those of base,
// merging consecutive candidate traces where a stroke was split in two.
// It returns the realigned traces, the decisions taken and whether the
// result holds exactly one trace per base trace. Candidate traces left over
// once every base trace is matched are dropped.
func ReconstructTraces(base, candidate DefinitionUnit) ([]Trace, []ReconstructionStep, bool) {
	var out []Trace
	var log []ReconstructionStep

	b, c := 0, 0
	for b < len(base.Traces) && c < len(candidate.Traces) {
		baseTrace := base.Traces[b]
		single := candidate.Traces[c]
		singleScore := scoreTrace(baseTrace, single)

		step := ReconstructionStep{
			BaseIndex:      b,
			CandidateIndex: c,
			Accepted:       singleScore.passes(),
			TraceCos:       singleScore.traceCos,
			OffsetCos:      singleScore.offsetCos,
			LengthGap:      singleScore.lengthGap,
		}

		// Merging is only possible while the candidate has surplus traces.
		surplus := (len(candidate.Traces) - c) - (len(base.Traces) - b)
		if surplus <= 0 || c+1 >= len(candidate.Traces) {
			out = append(out, single.Clone())
			log = append(log, step)
			b++
			c++
			continue
		}

		merged := MergeTraces(single, candidate.Traces[c+1])
		mergedScore := scoreTrace(baseTrace, merged)

		if chooseMerged(singleScore, mergedScore) {
			step.Merged = true
			step.Accepted = mergedScore.passes()
			step.TraceCos = mergedScore.traceCos
			step.OffsetCos = mergedScore.offsetCos
			step.LengthGap = mergedScore.lengthGap
			out = append(out, merged)
			c += 2
		} else {
			out = append(out, single.Clone())
			c++
		}
		b++

		Logger().Debug("reconstruction step", "step", step.String())
		log = append(log, step)
	}

	ok := len(out) == len(base.Traces)
	return out, log, ok
}

// chooseMerged decides between a single candidate trace and the same trace
// merged with its successor.
func chooseMerged(single, merged traceScore) bool {
	// Both look right: keep whichever has the closer number of cells.
	if single.passes() && merged.passes() {
		return merged.lengthGap < single.lengthGap
	}
	// Merged is strictly closer in size and looks right.
	if merged.lengthGap < single.lengthGap && merged.passes() {
		return true
	}
	// Otherwise the majority of the three signals decides.
	votes := 0
	if merged.traceCos > single.traceCos {
		votes++
	}
	if merged.offsetCos > single.offsetCos {
		votes++
	}
	if merged.lengthGap < single.lengthGap {
		votes++
	}
	return votes >= 2
}

// ReportCompatibility rates how well candidate matches base. The candidate
// is realigned first when it holds more traces than base. Diagnosis is true
// only when the trace count is in range and all three ratings reach
// errorMargin.
func ReportCompatibility(base, candidate DefinitionUnit, errorMargin float64) CompatibilityReport {
	report := CompatibilityReport{
		ReconstructedInstance: candidate.Clone(),
	}

	baseCount := len(base.Traces)
	candidateCount := len(candidate.Traces)
	report.TraceWithinRange = baseCount > 0 &&
		candidateCount >= baseCount && candidateCount <= 2*baseCount
	if !report.TraceWithinRange {
		return report
	}

	if candidateCount != baseCount {
		traces, log, ok := ReconstructTraces(base, candidate)
		report.Log = log
		if ok {
			report.ReconstructedInstance.Traces = traces
			report.Reconstructed = true
		} else {
			Logger().Warn("reconstruction discarded",
				"base", base.ID,
				"base_traces", baseCount,
				"candidate_traces", candidateCount)
		}
	}

	aligned := report.ReconstructedInstance.Traces
	pairs := min(baseCount, len(aligned))
	share := 1.0 / float64(baseCount)
	errorResolution := float64(base.Resolution) * timingResolutionFactor

	for i := 0; i < pairs; i++ {
		baseTrace, other := base.Traces[i], aligned[i]

		diff := math.Abs(float64(baseTrace.TimeStamp - other.TimeStamp))
		if diff < errorResolution {
			report.TimingRating += share * (errorResolution - diff) / errorResolution
		}

		report.VectorsSimilarity += share * cosContribution(CosBetween(baseTrace.Displacement, other.Displacement))
		report.OffsetsSimilarity += share * cosContribution(CosBetween(baseTrace.AverageOffset, other.AverageOffset))
	}

	report.Diagnosis = report.TimingRating >= errorMargin &&
		report.VectorsSimilarity >= errorMargin &&
		report.OffsetsSimilarity >= errorMargin

	return report
}

// cosContribution maps a similarity above CosError linearly onto (0, 1].
func cosContribution(cos float64) float64 {
	if cos <= CosError {
		return 0
	}
	band := 1 - CosError
	return (band - (1 - cos)) / band
}
