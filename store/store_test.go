package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/glyphtrace"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func definition(id string, runs ...[]int64) glyphtrace.DefinitionUnit {
	def := glyphtrace.NewDefinitionUnit(5)
	def.ID = id
	for ts, run := range runs {
		def.Feed(int64(ts), run)
	}
	return def
}

func TestIndexCodec(t *testing.T) {
	tests := []struct {
		name    string
		indexes []int64
	}{
		{"empty", []int64{}},
		{"ascending", []int64{6, 7, 8}},
		{"descending", []int64{24, 18, 12, 6, 0}},
		{"far apart", []int64{0, 4095, 1, 4000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeIndexes(encodeIndexes(tt.indexes))
			require.NoError(t, err)
			assert.Equal(t, tt.indexes, got)
		})
	}
}

func TestDecodeIndexesRejectsGarbage(t *testing.T) {
	_, err := decodeIndexes([]byte{0xff, 0x00, 0x13})
	assert.Error(t, err)
}

func TestSaveAndLoadDefinition(t *testing.T) {
	s := tempStore(t)
	def := definition("a", []int64{6, 7, 8}, []int64{2, 7, 12})

	require.NoError(t, s.SaveDefinition(def))

	got, err := s.LoadDefinition("a")
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestSaveDefinitionReplaces(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.SaveDefinition(definition("a", []int64{6, 7, 8}, []int64{2, 7, 12})))
	require.NoError(t, s.SaveDefinition(definition("a", []int64{15, 16, 17, 18})))

	got, err := s.LoadDefinition("a")
	require.NoError(t, err)
	require.Len(t, got.Traces, 1)
	assert.Equal(t, []int64{15, 16, 17, 18}, got.Traces[0].Indexes)
}

func TestLoadDefinitionNotFound(t *testing.T) {
	s := tempStore(t)
	_, err := s.LoadDefinition("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndLoadUnit(t *testing.T) {
	s := tempStore(t)
	unit := &glyphtrace.LivingDataUnit{}
	unit.AddDefinition(definition("b", []int64{15, 16, 17, 18}))
	unit.AddDefinition(definition("a", []int64{6, 7, 8}, []int64{2, 7, 12}))

	require.NoError(t, s.SaveUnit(unit))

	ids, err := s.DefinitionIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	loaded, err := s.LoadUnit()
	require.NoError(t, err)
	assert.Equal(t, unit.Definitions, loaded.Definitions)
	assert.Equal(t, unit.TraceGroups, loaded.TraceGroups)
}

func TestRecordTraining(t *testing.T) {
	s := tempStore(t)
	base := definition("l", []int64{6, 7, 8}, []int64{2, 7, 12})
	unit := &glyphtrace.TrainingUnit{
		Base: base,
		TrainingInstances: []glyphtrace.DefinitionUnit{
			definition("", []int64{6, 7, 8}, []int64{2, 7, 12}),
			definition("", []int64{20, 21, 22, 23, 24}),
		},
		ErrorMargin: 0.5,
	}
	result := glyphtrace.TrainWithReport(unit)

	id, err := s.RecordTraining(unit, result)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.TrainingRun(id)
	require.NoError(t, err)
	assert.Equal(t, "l", run.BaseID)
	assert.Equal(t, 2, run.Instances)
	assert.Equal(t, len(result.Valid), run.Valid)
	assert.InDelta(t, 0.5, run.ErrorMargin, 1e-9)
	assert.False(t, run.CreatedAt.IsZero())
	require.Len(t, run.Reports, 2)
	for i, r := range result.Reports {
		assert.Equal(t, i, run.Reports[i].Instance)
		assert.Equal(t, r.Diagnosis, run.Reports[i].Diagnosis)
		assert.Equal(t, r.TraceWithinRange, run.Reports[i].TraceWithinRange)
		assert.InDelta(t, r.TimingRating, run.Reports[i].TimingRating, 1e-9)
	}

	trained, err := s.LoadDefinition("l")
	require.NoError(t, err)
	assert.Equal(t, result.Definition.Traces, trained.Traces)

	runs, err := s.RunsFor("l")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, runs)
}

func TestTrainingRunNotFound(t *testing.T) {
	s := tempStore(t)
	_, err := s.TrainingRun("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrainingRunBadTimestamp(t *testing.T) {
	s := tempStore(t)
	_, err := s.db.Exec(
		`INSERT INTO training_runs (run_id, base_id, instances, valid, error_margin, created_at)
		 VALUES ('broken', 'l', 1, 0, 0.5, 'yesterday')`)
	require.NoError(t, err)

	_, err = s.TrainingRun("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse created_at of broken")
}
