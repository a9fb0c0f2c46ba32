package glyphtrace

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultPredictionLimit is how many predictions Predictions returns when
// asked for a non-positive limit.
const DefaultPredictionLimit = 10

// Prediction is the running likeness of one definition.
type Prediction struct {
	ID       string
	Likeness float64
}

func (p Prediction) String() string {
	return p.ID + " - " + strconv.FormatFloat(p.Likeness, 'f', -1, 64)
}

// Medium matches strokes, one time step at a time, against the quick side
// of a library and keeps a ranking of the definitions they may belong to.
//
// A Medium is not safe for concurrent use.
type Medium struct {
	unit *LivingDataUnit

	lastTimeStamp int64
	predictions   *OrderedMap[string, float64]
	best          string
}

// NewMedium creates a Medium searching unit.
func NewMedium(unit *LivingDataUnit) *Medium {
	return &Medium{
		unit:          unit,
		lastTimeStamp: -1,
		predictions:   NewOrderedMap[string, float64](),
		best:          UntitledID,
	}
}

// Reset drops every prediction so a new search can start.
func (m *Medium) Reset() {
	m.lastTimeStamp = -1
	m.predictions = NewOrderedMap[string, float64]()
	m.best = UntitledID
}

// FeedTrace scores trace against every quick trace sharing its time step
// and folds the result into the running predictions. Traces whose time
// step has no group in the library are ignored.
func (m *Medium) FeedTrace(trace Trace) {
	ts := trace.TimeStamp
	if ts < 0 || ts >= int64(len(m.unit.TraceGroups)) {
		Logger().Debug("trace outside library", "time_stamp", ts, "groups", len(m.unit.TraceGroups))
		return
	}
	m.lastTimeStamp = ts

	group := m.unit.TraceGroups[ts].Content
	scores := make([]Prediction, 0, len(group))

	// Entries no better than the lowest of the first ten drops are not kept.
	worst := 1.0
	drops := 0
	for _, entry := range group {
		likeness := math.Max(CosBetween(trace.Displacement, entry.Trace), 0) +
			math.Max(CosBetween(trace.AverageOffset, entry.Average), 0)
		if drops < 10 && likeness < worst {
			worst = likeness
			drops++
		}
		scores = append(scores, Prediction{ID: entry.ID, Likeness: likeness})
	}

	fresh := NewOrderedMap[string, float64]()
	for _, p := range scores {
		if p.Likeness <= worst {
			continue
		}
		if old, ok := fresh.Get(p.ID); !ok || p.Likeness > old {
			fresh.Set(p.ID, p.Likeness)
		}
	}
	m.combine(fresh, ts)
}

// combine merges fresh scores into the predictions. Known ids add their new
// score; ids seen for the first time enter at score^ts so late arrivals
// cannot overtake long running matches. Ids missing from fresh are dropped.
func (m *Medium) combine(fresh *OrderedMap[string, float64], ts int64) {
	first := m.predictions.Len() == 0
	combined := NewOrderedMap[string, float64]()
	bestValue := math.Inf(-1)

	fresh.Iterate(func(id string, likeness float64) {
		value := likeness
		if !first {
			if old, ok := m.predictions.Get(id); ok {
				value = old + likeness
			} else {
				value = math.Pow(likeness, float64(ts))
			}
		}
		combined.Set(id, value)
		if value > bestValue {
			bestValue = value
			m.best = id
		}
	})

	m.predictions = combined
}

// Predictions returns up to limit predictions, best first. Ties keep the
// order in which the ids entered the ranking.
func (m *Medium) Predictions(limit int) []Prediction {
	if limit <= 0 {
		limit = DefaultPredictionLimit
	}
	out := make([]Prediction, 0, m.predictions.Len())
	m.predictions.Iterate(func(id string, likeness float64) {
		out = append(out, Prediction{ID: id, Likeness: likeness})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Likeness > out[j].Likeness })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Best returns the id of the current leader, or UntitledID before any
// prediction was made.
func (m *Medium) Best() string {
	return m.best
}

// LastTimeStamp returns the time step of the last trace that was scored, or
// -1.
func (m *Medium) LastTimeStamp() int64 {
	return m.lastTimeStamp
}

// FormatPredictions renders one "id - likeness" line per prediction.
func FormatPredictions(predictions []Prediction) string {
	var b strings.Builder
	for _, p := range predictions {
		fmt.Fprintln(&b, p.String())
	}
	return b.String()
}
