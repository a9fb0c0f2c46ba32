package glyphtrace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecurrentTrace(t *testing.T) {
	seed := mustBuild(t, 6, []uint32{
		1, 1, 1, 0, 1, 1,
		1, 1, 1, 1, 1, 1,
		0, 1, 1, 1, 1, 0,
		0, 0, 0, 0, 1, 1,
		1, 0, 0, 0, 0, 0,
		1, 1, 0, 1, 1, 0,
	})

	want := []uint32{
		1, 1, 1, 0, 0, 0,
		1, 1, 1, 1, 1, 1,
		0, 1, 1, 1, 1, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
	}
	got := RecurrentTrace(seed, 3)
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("recurrent trace mismatch (-want +got):\n%s", diff)
	}
}

func TestRecurrentTraceVertical(t *testing.T) {
	seed := mustBuild(t, 4, []uint32{
		0, 1, 0, 0,
		0, 1, 0, 1,
		0, 1, 0, 1,
		0, 1, 0, 0,
	})

	vertical := RecurrentTrace(seed.TransposedCopy(), 3).TransposedCopy()
	want := []uint32{
		0, 1, 0, 0,
		0, 1, 0, 0,
		0, 1, 0, 0,
		0, 1, 0, 0,
	}
	if diff := cmp.Diff(want, vertical.Data); diff != "" {
		t.Errorf("vertical runs mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberRuns(t *testing.T) {
	runs := mustBuild(t, 5, []uint32{
		0, 0, 0, 0, 0,
		0, 1, 1, 1, 0,
		0, 0, 0, 0, 1,
		1, 0, 0, 0, 0,
		1, 1, 1, 0, 1,
	})
	gd := NewGlobalCurveData(5)
	// Cell 21 belongs to an earlier pass.
	gd.CurvesGlobalOutput.Data[21] = 9

	numberRuns(gd, runs)

	wantOutput := []uint32{
		0, 0, 0, 0, 0,
		0, 1, 1, 1, 0,
		0, 0, 0, 0, 2,
		3, 0, 0, 0, 0,
		4, 9, 4, 0, 5,
	}
	if diff := cmp.Diff(wantOutput, gd.CurvesGlobalOutput.Data); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
	wantOrder := []uint32{
		0, 0, 0, 0, 0,
		0, 1, 2, 3, 0,
		0, 0, 0, 0, 1,
		1, 0, 0, 0, 0,
		1, 0, 2, 0, 1,
	}
	if diff := cmp.Diff(wantOrder, gd.CurvesGlobalOrderd.Data); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if gd.CurveCount() != 5 {
		t.Errorf("CurveCount() = %d, want 5", gd.CurveCount())
	}
}
