// Package store keeps snapshots of a glyphtrace library and the history of
// training runs in SQLite.
package store

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/wbrown/glyphtrace"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS definitions (
	id          TEXT PRIMARY KEY,
	resolution  INTEGER NOT NULL,
	trace_count INTEGER NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS traces (
	definition_id TEXT NOT NULL,
	position      INTEGER NOT NULL,
	time_stamp    INTEGER NOT NULL,
	indexes       BLOB NOT NULL,
	PRIMARY KEY (definition_id, position),
	FOREIGN KEY (definition_id) REFERENCES definitions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS training_runs (
	run_id       TEXT PRIMARY KEY,
	base_id      TEXT NOT NULL,
	instances    INTEGER NOT NULL,
	valid        INTEGER NOT NULL,
	error_margin REAL NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_reports (
	run_id        TEXT NOT NULL,
	instance      INTEGER NOT NULL,
	within_range  INTEGER NOT NULL,
	timing        REAL NOT NULL,
	vectors       REAL NOT NULL,
	offsets       REAL NOT NULL,
	diagnosis     INTEGER NOT NULL,
	reconstructed INTEGER NOT NULL,
	PRIMARY KEY (run_id, instance),
	FOREIGN KEY (run_id) REFERENCES training_runs(run_id) ON DELETE CASCADE
);
`

// ErrNotFound is returned when a definition or run does not exist.
var ErrNotFound = errors.New("not found")

// Store persists definitions and training runs.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path and creates its tables.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDefinition writes def, replacing any stored definition with the same
// id.
func (s *Store) SaveDefinition(def glyphtrace.DefinitionUnit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := saveDefinition(tx, def); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func saveDefinition(tx *sql.Tx, def glyphtrace.DefinitionUnit) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := tx.Exec(
		`INSERT INTO definitions (id, resolution, trace_count, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			resolution = excluded.resolution,
			trace_count = excluded.trace_count,
			updated_at = excluded.updated_at`,
		def.ID, def.Resolution, len(def.Traces), now,
	)
	if err != nil {
		return fmt.Errorf("insert definition %s: %w", def.ID, err)
	}
	if _, err := tx.Exec(`DELETE FROM traces WHERE definition_id = ?`, def.ID); err != nil {
		return fmt.Errorf("clear traces of %s: %w", def.ID, err)
	}
	for i, t := range def.Traces {
		_, err := tx.Exec(
			`INSERT INTO traces (definition_id, position, time_stamp, indexes) VALUES (?, ?, ?, ?)`,
			def.ID, i, t.TimeStamp, encodeIndexes(t.Indexes),
		)
		if err != nil {
			return fmt.Errorf("insert trace %d of %s: %w", i, def.ID, err)
		}
	}
	return nil
}

// LoadDefinition reads the definition stored under id.
func (s *Store) LoadDefinition(id string) (glyphtrace.DefinitionUnit, error) {
	var resolution int64
	err := s.db.QueryRow(`SELECT resolution FROM definitions WHERE id = ?`, id).Scan(&resolution)
	if errors.Is(err, sql.ErrNoRows) {
		return glyphtrace.DefinitionUnit{}, fmt.Errorf("definition %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return glyphtrace.DefinitionUnit{}, fmt.Errorf("get definition %s: %w", id, err)
	}

	def := glyphtrace.NewDefinitionUnit(resolution)
	def.ID = id

	rows, err := s.db.Query(
		`SELECT time_stamp, indexes FROM traces WHERE definition_id = ? ORDER BY position`, id)
	if err != nil {
		return glyphtrace.DefinitionUnit{}, fmt.Errorf("get traces of %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts int64
		var blob []byte
		if err := rows.Scan(&ts, &blob); err != nil {
			return glyphtrace.DefinitionUnit{}, fmt.Errorf("scan trace of %s: %w", id, err)
		}
		indexes, err := decodeIndexes(blob)
		if err != nil {
			return glyphtrace.DefinitionUnit{}, fmt.Errorf("decode trace of %s: %w", id, err)
		}
		def.Feed(ts, indexes)
	}
	if err := rows.Err(); err != nil {
		return glyphtrace.DefinitionUnit{}, err
	}
	return def, nil
}

// DefinitionIDs lists the stored definitions in the order they were first
// saved.
func (s *Store) DefinitionIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM definitions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
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

// SaveUnit writes every definition of unit in one transaction. Definitions
// sharing an id overwrite each other, the last one wins.
func (s *Store) SaveUnit(unit *glyphtrace.LivingDataUnit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, def := range unit.Definitions {
		if err := saveDefinition(tx, def); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	glyphtrace.Logger().Info("library stored", "definitions", len(unit.Definitions))
	return nil
}

// LoadUnit rebuilds a library from every stored definition.
func (s *Store) LoadUnit() (*glyphtrace.LivingDataUnit, error) {
	ids, err := s.DefinitionIDs()
	if err != nil {
		return nil, err
	}
	unit := &glyphtrace.LivingDataUnit{}
	for _, id := range ids {
		def, err := s.LoadDefinition(id)
		if err != nil {
			return nil, err
		}
		unit.Definitions = append(unit.Definitions, def)
	}
	unit.Rebuild()
	return unit, nil
}

// encodeIndexes stores indexes as snappy compressed varint deltas. Stroke
// runs mostly step to a neighbor, so deltas stay small.
func encodeIndexes(indexes []int64) []byte {
	buf := make([]byte, 0, len(indexes)*2+binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(len(indexes)))
	var prev int64
	for _, v := range indexes {
		buf = binary.AppendVarint(buf, v-prev)
		prev = v
	}
	return snappy.Encode(nil, buf)
}

func decodeIndexes(blob []byte) ([]int64, error) {
	buf, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("snappy: %w", err)
	}
	n, read := binary.Uvarint(buf)
	if read <= 0 {
		return nil, fmt.Errorf("bad index count")
	}
	buf = buf[read:]
	if n > uint64(len(buf)) {
		return nil, fmt.Errorf("index count %d exceeds payload", n)
	}

	out := make([]int64, 0, n)
	var prev int64
	for i := uint64(0); i < n; i++ {
		delta, read := binary.Varint(buf)
		if read <= 0 {
			return nil, fmt.Errorf("truncated index %d", i)
		}
		buf = buf[read:]
		prev += delta
		out = append(out, prev)
	}
	return out, nil
}
