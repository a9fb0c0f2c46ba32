package glyphtrace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fedTrace struct {
	ts      int64
	indexes []int64
}

func makeDefinition(id string, resolution int64, traces ...fedTrace) DefinitionUnit {
	d := NewDefinitionUnit(resolution)
	d.ID = id
	for _, t := range traces {
		d.Feed(t.ts, t.indexes)
	}
	return d
}

func traceIndexes(d DefinitionUnit) [][]int64 {
	out := make([][]int64, len(d.Traces))
	for i, t := range d.Traces {
		out[i] = t.Indexes
	}
	return out
}

// trainingSession is a base of three strokes on a 5x5 grid and eight
// instances of it, some of them broken on purpose.
func trainingSession() *TrainingUnit {
	base := makeDefinition("a", 5,
		fedTrace{0, []int64{6, 7, 8}},
		fedTrace{1, []int64{2, 7, 12}},
		fedTrace{2, []int64{15, 16, 17, 18}},
	)

	instances := []DefinitionUnit{
		// Exact copy.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 7, 8}},
			fedTrace{1, []int64{2, 7, 12}},
			fedTrace{2, []int64{15, 16, 17, 18}},
		),
		// Too few strokes.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 7, 8}},
			fedTrace{1, []int64{2, 7, 12}},
		),
		// Last stroke drawn in two halves.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 7, 8}},
			fedTrace{1, []int64{2, 7, 12}},
			fedTrace{2, []int64{15, 16}},
			fedTrace{3, []int64{17, 18}},
		),
		// Same split, drawn far too late.
		makeDefinition("a", 5,
			fedTrace{5, []int64{6, 7, 8}},
			fedTrace{6, []int64{2, 7, 12}},
			fedTrace{7, []int64{15, 16}},
			fedTrace{8, []int64{17, 18}},
		),
		// Slanted second stroke.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 7, 8}},
			fedTrace{1, []int64{2, 7, 13}},
			fedTrace{2, []int64{15, 16, 17, 18}},
		),
		// Detours that move every average point.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 1, 2, 3, 8}},
			fedTrace{1, []int64{2, 1, 6, 11, 12}},
			fedTrace{2, []int64{15, 16, 17, 18}},
		),
		// Shifted one column right.
		makeDefinition("a", 5,
			fedTrace{0, []int64{7, 8, 9}},
			fedTrace{1, []int64{3, 8, 13}},
			fedTrace{2, []int64{16, 17, 18, 19}},
		),
		// Second stroke drawn in two halves.
		makeDefinition("a", 5,
			fedTrace{0, []int64{6, 7, 8}},
			fedTrace{1, []int64{2, 7}},
			fedTrace{2, []int64{12}},
			fedTrace{3, []int64{15, 16, 17, 18}},
		),
	}

	return &TrainingUnit{
		Base:              base,
		TrainingInstances: instances,
		ErrorMargin:       0.5,
	}
}

func TestReportCompatibilityScenarios(t *testing.T) {
	unit := trainingSession()

	tests := []struct {
		name          string
		instance      int
		withinRange   bool
		reconstructed bool
		diagnosis     bool
	}{
		{"exact copy", 0, true, false, true},
		{"too few strokes", 1, false, false, false},
		{"split last stroke", 2, true, true, true},
		{"late strokes", 3, true, true, false},
		{"slanted stroke", 4, true, false, true},
		{"detours", 5, true, false, false},
		{"shifted", 6, true, false, true},
		{"split second stroke", 7, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReportCompatibility(unit.Base, unit.TrainingInstances[tt.instance], unit.ErrorMargin)
			if r.TraceWithinRange != tt.withinRange {
				t.Errorf("TraceWithinRange = %v, want %v", r.TraceWithinRange, tt.withinRange)
			}
			if r.Reconstructed != tt.reconstructed {
				t.Errorf("Reconstructed = %v, want %v", r.Reconstructed, tt.reconstructed)
			}
			if r.Diagnosis != tt.diagnosis {
				t.Errorf("Diagnosis = %v, want %v (timing %.3f, vectors %.3f, offsets %.3f)",
					r.Diagnosis, tt.diagnosis, r.TimingRating, r.VectorsSimilarity, r.OffsetsSimilarity)
			}
		})
	}
}

func TestReportCompatibilityRatings(t *testing.T) {
	unit := trainingSession()
	const eps = 1e-3

	slanted := ReportCompatibility(unit.Base, unit.TrainingInstances[4], unit.ErrorMargin)
	if !CloseEnough(slanted.VectorsSimilarity, 0.7486, eps) {
		t.Errorf("slanted VectorsSimilarity = %.4f, want ~0.7486", slanted.VectorsSimilarity)
	}
	if !CloseEnough(slanted.OffsetsSimilarity, 1, eps) {
		t.Errorf("slanted OffsetsSimilarity = %.4f, want 1", slanted.OffsetsSimilarity)
	}

	detours := ReportCompatibility(unit.Base, unit.TrainingInstances[5], unit.ErrorMargin)
	if !CloseEnough(detours.OffsetsSimilarity, 1.0/3, eps) {
		t.Errorf("detours OffsetsSimilarity = %.4f, want ~0.333", detours.OffsetsSimilarity)
	}

	split := ReportCompatibility(unit.Base, unit.TrainingInstances[7], unit.ErrorMargin)
	if !CloseEnough(split.TimingRating, 2.0/3, eps) {
		t.Errorf("split TimingRating = %.4f, want ~0.667", split.TimingRating)
	}

	late := ReportCompatibility(unit.Base, unit.TrainingInstances[3], unit.ErrorMargin)
	if late.TimingRating != 0 {
		t.Errorf("late TimingRating = %.4f, want 0", late.TimingRating)
	}
}

func TestReconstructTracesMergesSplitStroke(t *testing.T) {
	unit := trainingSession()

	traces, log, ok := ReconstructTraces(unit.Base, unit.TrainingInstances[2])
	if !ok {
		t.Fatal("reconstruction should consume every trace")
	}
	got := make([][]int64, len(traces))
	for i, tr := range traces {
		got[i] = tr.Indexes
	}
	want := [][]int64{{6, 7, 8}, {2, 7, 12}, {15, 16, 17, 18}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reconstructed traces mismatch (-want +got):\n%s", diff)
	}

	if len(log) != 3 {
		t.Fatalf("expected 3 reconstruction steps, got %d", len(log))
	}
	if log[0].Merged || log[1].Merged || !log[2].Merged {
		t.Errorf("only the last step should merge: %v", log)
	}
	if traces[2].TimeStamp != 2 {
		t.Errorf("merged trace should keep the first time stamp, got %d", traces[2].TimeStamp)
	}
}

func TestReconstructTracesKeepsSingleWithoutSurplus(t *testing.T) {
	base := makeDefinition("l", 5, fedTrace{0, []int64{6, 7, 8}})
	candidate := makeDefinition("l", 5, fedTrace{0, []int64{6, 7}})

	traces, log, ok := ReconstructTraces(base, candidate)
	if !ok || len(traces) != 1 || len(log) != 1 {
		t.Fatalf("got ok=%v traces=%d log=%d", ok, len(traces), len(log))
	}
	if log[0].Merged {
		t.Error("a candidate without surplus traces must not merge")
	}
}

// trailingStroke is a two stroke base and a copy of it with one stray stroke
// drawn after the others.
func trailingStroke() (DefinitionUnit, DefinitionUnit) {
	base := makeDefinition("x", 5,
		fedTrace{0, []int64{6, 7, 8}},
		fedTrace{1, []int64{2, 7, 12}},
	)
	candidate := makeDefinition("x", 5,
		fedTrace{0, []int64{6, 7, 8}},
		fedTrace{1, []int64{2, 7, 12}},
		fedTrace{2, []int64{24, 23}},
	)
	return base, candidate
}

func TestReconstructTracesDropsTrailingStroke(t *testing.T) {
	base, candidate := trailingStroke()

	traces, log, ok := ReconstructTraces(base, candidate)
	if !ok {
		t.Fatal("one trace per base trace should be enough to keep the result")
	}
	if diff := cmp.Diff([][]int64{{6, 7, 8}, {2, 7, 12}}, traceIndexes(DefinitionUnit{Traces: traces})); diff != "" {
		t.Errorf("reconstructed traces mismatch (-want +got):\n%s", diff)
	}
	for _, step := range log {
		if step.Merged {
			t.Errorf("no step should merge: %v", step)
		}
	}
}

func TestTrainWithReportTrailingStroke(t *testing.T) {
	base, candidate := trailingStroke()

	r := ReportCompatibility(base, candidate, 0.5)
	if !r.Reconstructed || !r.Diagnosis {
		t.Errorf("got reconstructed=%v diagnosis=%v, want both true", r.Reconstructed, r.Diagnosis)
	}
	if n := len(r.ReconstructedInstance.Traces); n != 2 {
		t.Errorf("rated instance holds %d traces, want 2", n)
	}

	result := TrainWithReport(&TrainingUnit{Base: base, TrainingInstances: []DefinitionUnit{candidate}, ErrorMargin: 0.5})
	if diff := cmp.Diff([]int{0}, result.Valid); diff != "" {
		t.Errorf("valid instances mismatch (-want +got):\n%s", diff)
	}
}

func TestTrainWithReportSession(t *testing.T) {
	unit := trainingSession()
	result := TrainWithReport(unit)

	if diff := cmp.Diff([]int{0, 2, 4, 6, 7}, result.Valid); diff != "" {
		t.Errorf("valid instances mismatch (-want +got):\n%s", diff)
	}
	if len(result.Reports) != len(unit.TrainingInstances) {
		t.Errorf("expected one report per instance, got %d", len(result.Reports))
	}
	if result.Definition.ID != "a" {
		t.Errorf("trained ID = %q, want %q", result.Definition.ID, "a")
	}

	want := traceIndexes(unit.Base)
	if diff := cmp.Diff(want, traceIndexes(result.Definition)); diff != "" {
		t.Errorf("trained definition mismatch (-want +got):\n%s", diff)
	}
	for i, tr := range result.Definition.Traces {
		if tr.TimeStamp != unit.Base.Traces[i].TimeStamp {
			t.Errorf("trace %d time stamp = %d, want %d", i, tr.TimeStamp, unit.Base.Traces[i].TimeStamp)
		}
	}

	// Instances are replaced by their realigned version.
	if n := len(unit.TrainingInstances[2].Traces); n != 3 {
		t.Errorf("split instance should now hold 3 traces, got %d", n)
	}
	if n := len(unit.TrainingInstances[7].Traces); n != 3 {
		t.Errorf("split instance should now hold 3 traces, got %d", n)
	}
}

func TestTrainWithReportMajority(t *testing.T) {
	base := makeDefinition("m", 5, fedTrace{0, []int64{6, 7, 8}})
	var instances []DefinitionUnit
	for i := 0; i < 3; i++ {
		instances = append(instances, makeDefinition("m", 5, fedTrace{0, []int64{6, 7, 8, 9}}))
	}

	result := TrainWithReport(&TrainingUnit{Base: base, TrainingInstances: instances, ErrorMargin: 0.5})

	want := [][]int64{{6, 7, 8, 9}}
	if diff := cmp.Diff(want, traceIndexes(result.Definition)); diff != "" {
		t.Errorf("trained definition mismatch (-want +got):\n%s", diff)
	}
}

func TestTrainWithReportTiedRearguard(t *testing.T) {
	base := makeDefinition("t", 10, fedTrace{0, []int64{11, 12, 13}})
	instances := []DefinitionUnit{
		makeDefinition("t", 10, fedTrace{0, []int64{11, 12, 13, 14}}),
		makeDefinition("t", 10, fedTrace{0, []int64{11, 12, 13, 14, 15}}),
	}

	result := TrainWithReport(&TrainingUnit{Base: base, TrainingInstances: instances, ErrorMargin: 0.5})

	// 13, 14 and 15 each get one vote for the rearguard, so the base keeps its own.
	want := [][]int64{{11, 12, 14, 13}}
	if diff := cmp.Diff(want, traceIndexes(result.Definition)); diff != "" {
		t.Errorf("trained definition mismatch (-want +got):\n%s", diff)
	}
}

func TestTrainWithReportNoValidInstances(t *testing.T) {
	base := makeDefinition("n", 5, fedTrace{0, []int64{6, 7, 8}}, fedTrace{1, []int64{2, 7, 12}})
	instances := []DefinitionUnit{
		makeDefinition("n", 5, fedTrace{0, []int64{6, 7, 8}}),
	}

	result := TrainWithReport(&TrainingUnit{Base: base, TrainingInstances: instances, ErrorMargin: 0.5})
	if len(result.Valid) != 0 {
		t.Errorf("expected no valid instances, got %v", result.Valid)
	}
	if diff := cmp.Diff(traceIndexes(base), traceIndexes(result.Definition)); diff != "" {
		t.Errorf("definition should be unchanged (-want +got):\n%s", diff)
	}
}

func TestTrainWithReportPanicsWithoutInstances(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an empty training set")
		}
	}()
	TrainWithReport(&TrainingUnit{Base: makeDefinition("e", 5, fedTrace{0, []int64{6}})})
}

func TestCombineIntoTrace(t *testing.T) {
	tr := combineIntoTrace(4, 5, 6, []int64{6, 7, 8, 8, 9}, 9)
	if diff := cmp.Diff([]int64{6, 7, 8, 9}, tr.Indexes); diff != "" {
		t.Errorf("combined run mismatch (-want +got):\n%s", diff)
	}
	if tr.TimeStamp != 4 {
		t.Errorf("time stamp = %d, want 4", tr.TimeStamp)
	}
}
