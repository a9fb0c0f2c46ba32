package glyphtrace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFeedComputesVectors(t *testing.T) {
	d := NewDefinitionUnit(5)
	d.Feed(0, []int64{6, 7, 8})

	if len(d.Traces) != 1 {
		t.Fatalf("expected one trace, got %d", len(d.Traces))
	}
	tr := d.Traces[0]
	if tr.Displacement != (Vector2{2, 0}) {
		t.Errorf("Displacement = %v, want (2,0)", tr.Displacement)
	}
	if tr.AverageOffset != (Vector2{1, 0}) {
		t.Errorf("AverageOffset = %v, want (1,0)", tr.AverageOffset)
	}
	if d.ID != UntitledID {
		t.Errorf("ID = %q, want %q", d.ID, UntitledID)
	}
}

func TestAverageOffsetFloors(t *testing.T) {
	// Mean column of 3, 2 and 0 is 5/3, floored to 1.
	tr := NewTrace(0, []int64{3, 2, 0}, 5)
	if tr.AverageOffset != (Vector2{-2, 0}) {
		t.Errorf("AverageOffset = %v, want (-2,0)", tr.AverageOffset)
	}
	if tr.Displacement != (Vector2{-3, 0}) {
		t.Errorf("Displacement = %v, want (-3,0)", tr.Displacement)
	}
}

func TestMergeTraces(t *testing.T) {
	a := NewTrace(2, []int64{15, 16}, 5)
	b := NewTrace(3, []int64{17, 18}, 5)

	m := MergeTraces(a, b)
	if diff := cmp.Diff([]int64{15, 16, 17, 18}, m.Indexes); diff != "" {
		t.Errorf("merged run mismatch (-want +got):\n%s", diff)
	}
	if m.TimeStamp != 2 {
		t.Errorf("TimeStamp = %d, want 2", m.TimeStamp)
	}
	if m.Displacement != (Vector2{3, 0}) || m.AverageOffset != (Vector2{1, 0}) {
		t.Errorf("unexpected vectors %v %v", m.Displacement, m.AverageOffset)
	}
}

func TestNewTraceCopiesAndValidates(t *testing.T) {
	run := []int64{1, 2}
	tr := NewTrace(0, run, 5)
	run[0] = 9
	if tr.First() != 1 {
		t.Error("NewTrace should copy its run")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an empty run")
		}
	}()
	NewTrace(0, nil, 5)
}

func TestDefinitionCloneIsDeep(t *testing.T) {
	d := NewDefinitionUnit(5)
	d.Feed(0, []int64{6, 7, 8})

	c := d.Clone()
	c.Traces[0].Indexes[0] = 0
	if d.Traces[0].Indexes[0] != 6 {
		t.Error("Clone should not share trace runs")
	}
}

func TestDefinitionString(t *testing.T) {
	d := NewDefinitionUnit(3)
	d.Feed(0, []int64{0, 4, 8})

	want := "0 ****\n**4 **\n****8 \n"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
