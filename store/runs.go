package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wbrown/glyphtrace"
)

// Run is a stored training run.
type Run struct {
	ID          string
	BaseID      string
	Instances   int
	Valid       int
	ErrorMargin float64
	CreatedAt   time.Time
	Reports     []ReportRow
}

// ReportRow is the stored summary of one CompatibilityReport.
type ReportRow struct {
	Instance          int
	TraceWithinRange  bool
	TimingRating      float64
	VectorsSimilarity float64
	OffsetsSimilarity float64
	Diagnosis         bool
	Reconstructed     bool
}

// RecordTraining stores the reports of a training session together with the
// trained definition and returns the new run id.
func (s *Store) RecordTraining(unit *glyphtrace.TrainingUnit, result glyphtrace.TrainingResult) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO training_runs (run_id, base_id, instances, valid, error_margin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, unit.Base.ID, len(unit.TrainingInstances), len(result.Valid), unit.ErrorMargin,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, r := range result.Reports {
		_, err := tx.Exec(
			`INSERT INTO run_reports
			 (run_id, instance, within_range, timing, vectors, offsets, diagnosis, reconstructed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, r.TraceWithinRange, r.TimingRating, r.VectorsSimilarity, r.OffsetsSimilarity,
			r.Diagnosis, r.Reconstructed,
		)
		if err != nil {
			return "", fmt.Errorf("insert report %d: %w", i, err)
		}
	}

	if err := saveDefinition(tx, result.Definition); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	glyphtrace.Logger().Info("training run stored", "run", id, "base", unit.Base.ID, "valid", len(result.Valid))
	return id, nil
}

// TrainingRun reads a run and its reports.
func (s *Store) TrainingRun(id string) (Run, error) {
	run := Run{ID: id}
	var created string
	err := s.db.QueryRow(
		`SELECT base_id, instances, valid, error_margin, created_at FROM training_runs WHERE run_id = ?`, id,
	).Scan(&run.BaseID, &run.Instances, &run.Valid, &run.ErrorMargin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("parse created_at of %s: %w", id, err)
	}

	rows, err := s.db.Query(
		`SELECT instance, within_range, timing, vectors, offsets, diagnosis, reconstructed
		 FROM run_reports WHERE run_id = ? ORDER BY instance`, id)
	if err != nil {
		return Run{}, fmt.Errorf("get reports of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r ReportRow
		if err := rows.Scan(&r.Instance, &r.TraceWithinRange, &r.TimingRating,
			&r.VectorsSimilarity, &r.OffsetsSimilarity, &r.Diagnosis, &r.Reconstructed); err != nil {
			return Run{}, fmt.Errorf("scan report: %w", err)
		}
		run.Reports = append(run.Reports, r)
	}
	return run, rows.Err()
}

// RunsFor lists the ids of the runs trained on baseID, oldest first.
func (s *Store) RunsFor(baseID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT run_id FROM training_runs WHERE base_id = ? ORDER BY created_at, rowid`, baseID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
