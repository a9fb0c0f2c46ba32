package glyphtrace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestErodeOnceAllOnes(t *testing.T) {
	for _, size := range []int{4, 5, 8} {
		eroded, adjacent := ErodeOnce(InitializeVmatrix[uint32](size, 1))

		for i, v := range eroded.Data {
			want := uint32(1)
			if eroded.TestBorderIndex(i) {
				want = 0
			}
			if v != want {
				t.Errorf("size %d: cell %d = %d, want %d", size, i, v, want)
			}
		}
		if !adjacent {
			t.Errorf("size %d: survivors should be adjacent", size)
		}
	}
}

func TestErodeOnceSmallGrid(t *testing.T) {
	eroded, adjacent := ErodeOnce(InitializeVmatrix[uint32](2, 1))
	if eroded.Count() != 0 || adjacent {
		t.Errorf("a 2x2 grid cannot erode, got %v adjacent=%v", eroded.Data, adjacent)
	}
}

func TestAccumulateAllOnes(t *testing.T) {
	acc, reductions := AccumulateWithSnapshots(InitializeVmatrix[uint32](5, 1), DefaultMaxReductions)

	want := []uint32{
		0, 0, 0, 0, 0,
		0, 1, 1, 1, 0,
		0, 1, 2, 1, 0,
		0, 1, 1, 1, 0,
		0, 0, 0, 0, 0,
	}
	if diff := cmp.Diff(want, acc.Data); diff != "" {
		t.Errorf("accumulation mismatch (-want +got):\n%s", diff)
	}
	if len(reductions) != DefaultMaxReductions-1 {
		t.Errorf("expected %d reductions, got %d", DefaultMaxReductions-1, len(reductions))
	}
	for i, r := range reductions[2:] {
		if r.Count() != 0 {
			t.Errorf("reduction %d should be empty, got %d cells", i+3, r.Count())
		}
	}
}

func TestAccumulateKeepsRoundsAfterAdjacencyStops(t *testing.T) {
	// A 3x3 block erodes to its center in one round. That round has no two
	// adjacent survivors but the loop still runs to the limit.
	seed := InitializeVmatrix[uint32](5, 0)
	for _, i := range []int{6, 7, 8, 11, 12, 13, 16, 17, 18} {
		seed.Data[i] = 1
	}

	acc, reductions := AccumulateWithSnapshots(seed, 4)
	if len(reductions) != 3 {
		t.Fatalf("expected 3 reductions, got %d", len(reductions))
	}
	if reductions[0].Count() != 1 || reductions[0].Data[12] != 1 {
		t.Errorf("first round should keep the center, got %v", reductions[0].Data)
	}
	if reductions[1].Count() != 0 || reductions[2].Count() != 0 {
		t.Errorf("later rounds should be empty")
	}
	if acc.Data[12] != 1 || acc.Count() != 1 {
		t.Errorf("accumulation should only hold the center, got %v", acc.Data)
	}
}

func TestAccumulateRespectsIterationLimit(t *testing.T) {
	seed := InitializeVmatrix[uint32](12, 1)

	_, reductions := AccumulateWithSnapshots(seed, 3)
	if len(reductions) != 2 {
		t.Errorf("expected 2 reductions, got %d", len(reductions))
	}

	if acc := Accumulate(seed, 1); acc.Count() != 0 {
		t.Errorf("a single iteration should not erode, got %d cells", acc.Count())
	}
}
