package glyphtrace

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// UntitledID is the id given to definitions that were never named.
const UntitledID = "bbeorrcc"

// Trace summarizes one stroke: the run of cell indexes drawn at a time step,
// its net displacement and the offset of its average point from its start.
type Trace struct {
	TimeStamp int64
	Indexes   []int64

	// Displacement is coordinates(last) - coordinates(first).
	Displacement Vector2
	// AverageOffset is floor(mean(coordinates)) - coordinates(first).
	AverageOffset Vector2

	// Resolution is the row size used to decode Indexes.
	Resolution int64
}

// NewTrace builds a Trace from a run of indexes. The slice is copied.
//
// NewTrace panics if indexes is empty or resolution is not positive.
func NewTrace(timeStamp int64, indexes []int64, resolution int64) Trace {
	if len(indexes) == 0 {
		panic("glyphtrace: a trace needs at least one index")
	}
	if resolution <= 0 {
		panic(fmt.Sprintf("glyphtrace: invalid trace resolution %d", resolution))
	}

	first := CoordinatesFrom(indexes[0], resolution)
	last := CoordinatesFrom(indexes[len(indexes)-1], resolution)

	var total Vector2
	for _, index := range indexes {
		total = total.Add(CoordinatesFrom(index, resolution))
	}
	average := total.Div(int64(len(indexes)))

	run := make([]int64, len(indexes))
	copy(run, indexes)

	return Trace{
		TimeStamp:     timeStamp,
		Indexes:       run,
		Displacement:  last.Sub(first),
		AverageOffset: average.Sub(first),
		Resolution:    resolution,
	}
}

// MergeTraces joins the runs of a and b into a single trace, keeping the
// time stamp of a.
func MergeTraces(a, b Trace) Trace {
	joined := make([]int64, 0, len(a.Indexes)+len(b.Indexes))
	joined = append(joined, a.Indexes...)
	joined = append(joined, b.Indexes...)
	return NewTrace(a.TimeStamp, joined, a.Resolution)
}

// First returns the first index of the run.
func (t Trace) First() int64 {
	return t.Indexes[0]
}

// Last returns the last index of the run.
func (t Trace) Last() int64 {
	return t.Indexes[len(t.Indexes)-1]
}

// Clone returns a copy of t that does not share its index slice.
func (t Trace) Clone() Trace {
	c := t
	c.Indexes = make([]int64, len(t.Indexes))
	copy(c.Indexes, t.Indexes)
	return c
}

// DefinitionUnit is one labeled pattern made of several strokes.
type DefinitionUnit struct {
	ID         string
	Resolution int64

	Traces []Trace
}

// NewDefinitionUnit creates an empty, untitled definition.
func NewDefinitionUnit(resolution int64) DefinitionUnit {
	return DefinitionUnit{
		ID:         UntitledID,
		Resolution: resolution,
	}
}

// Feed appends the trace drawn at timeStamp.
func (d *DefinitionUnit) Feed(timeStamp int64, indexes []int64) {
	d.Traces = append(d.Traces, NewTrace(timeStamp, indexes, d.Resolution))
}

// Clone returns a deep copy of d.
func (d DefinitionUnit) Clone() DefinitionUnit {
	c := d
	c.Traces = make([]Trace, len(d.Traces))
	for i, t := range d.Traces {
		c.Traces[i] = t.Clone()
	}
	return c
}

// String draws every index used by the definition on a resolution-wide
// grid. Unused cells are shown as "**".
func (d DefinitionUnit) String() string {
	used := make(map[int64]struct{})
	for _, t := range d.Traces {
		for _, index := range t.Indexes {
			used[index] = struct{}{}
		}
	}
	values := make([]int64, 0, len(used))
	for v := range used {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	var b strings.Builder
	last := d.Resolution * d.Resolution
	next := 0
	for cell := int64(0); cell < last; cell++ {
		if next < len(values) && values[next] == cell {
			b.WriteString(strconv.FormatInt(cell, 10))
			if cell < 10 {
				b.WriteByte(' ')
			}
			next++
		} else {
			b.WriteString("**")
		}
		if (cell+1)%d.Resolution == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
