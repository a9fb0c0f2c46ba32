package glyphtrace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// File name prefixes used by DumpToFiles and LoadFromFiles.
const (
	QuickAccessPrefix = "quickaccess_"
	HeavyAccessPrefix = "heavyaccess_"
)

// QuickTrace is the summary of one trace of a definition, enough to score a
// stroke against it without decoding the full run.
type QuickTrace struct {
	ID      string
	Trace   Vector2
	Average Vector2
}

// TraceGroup collects the quick traces found at one time step across every
// definition.
type TraceGroup struct {
	Content []QuickTrace
}

// LivingDataUnit is the reference library: full definitions (the heavy
// side) plus their per-time-step summaries (the quick side).
type LivingDataUnit struct {
	Definitions []DefinitionUnit
	TraceGroups []TraceGroup
}

// Rebuild derives TraceGroups from Definitions. Group i holds the i-th trace
// of every definition that has one.
func (u *LivingDataUnit) Rebuild() {
	u.TraceGroups = nil
	for _, def := range u.Definitions {
		for i, t := range def.Traces {
			for len(u.TraceGroups) <= i {
				u.TraceGroups = append(u.TraceGroups, TraceGroup{})
			}
			u.TraceGroups[i].Content = append(u.TraceGroups[i].Content, QuickTrace{
				ID:      def.ID,
				Trace:   t.Displacement,
				Average: t.AverageOffset,
			})
		}
	}
}

// AddDefinition appends def to the library and rebuilds the quick side.
func (u *LivingDataUnit) AddDefinition(def DefinitionUnit) {
	u.Definitions = append(u.Definitions, def)
	u.Rebuild()
}

// Definition returns the first definition with the given id.
func (u *LivingDataUnit) Definition(id string) (DefinitionUnit, bool) {
	for _, def := range u.Definitions {
		if def.ID == id {
			return def, true
		}
	}
	return DefinitionUnit{}, false
}

// ReplaceDefinition swaps the first definition sharing def's id for def and
// rebuilds the quick side. It reports false when no such definition exists.
func (u *LivingDataUnit) ReplaceDefinition(def DefinitionUnit) bool {
	for i := range u.Definitions {
		if u.Definitions[i].ID == def.ID {
			u.Definitions[i] = def
			u.Rebuild()
			return true
		}
	}
	return false
}

// ReadDefinitions parses definitions written in the heavy format, such as a
// file of training instances.
func ReadDefinitions(r io.Reader, resolution int64) ([]DefinitionUnit, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("invalid resolution %d", resolution)
	}
	return readHeavy(r, resolution)
}

// LoadLivingDataUnit reads a library from its quick and heavy streams.
// Malformed content is reported as an error. The returned bool is false
// when the quick side does not agree with the traces decoded from the heavy
// side.
func LoadLivingDataUnit(quick, heavy io.Reader, resolution int64) (*LivingDataUnit, bool, error) {
	if resolution <= 0 {
		return nil, false, fmt.Errorf("invalid resolution %d", resolution)
	}

	definitions, err := readHeavy(heavy, resolution)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read heavy data: %w", err)
	}
	groups, err := readQuick(quick)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read quick data: %w", err)
	}

	unit := &LivingDataUnit{
		Definitions: definitions,
		TraceGroups: groups,
	}
	ok := unit.consistent()

	Logger().Info("database loaded",
		"definitions", len(unit.Definitions),
		"groups", len(unit.TraceGroups),
		"consistent", ok)
	return unit, ok, nil
}

// LoadFromFiles reads quickaccess_<name> and heavyaccess_<name> from dir.
func LoadFromFiles(dir, name string, resolution int64) (*LivingDataUnit, bool, error) {
	quick, err := os.Open(filepath.Join(dir, QuickAccessPrefix+name))
	if err != nil {
		return nil, false, fmt.Errorf("failed to open quick data: %w", err)
	}
	defer quick.Close()

	heavy, err := os.Open(filepath.Join(dir, HeavyAccessPrefix+name))
	if err != nil {
		return nil, false, fmt.Errorf("failed to open heavy data: %w", err)
	}
	defer heavy.Close()

	return LoadLivingDataUnit(quick, heavy, resolution)
}

// readHeavy parses one definition per line: "id.i,i,i;i,i;...;". The time
// stamp of a trace is the position of its segment on the line, so empty
// segments still advance it.
func readHeavy(r io.Reader, resolution int64) ([]DefinitionUnit, error) {
	var definitions []DefinitionUnit

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		id, body, found := strings.Cut(text, ".")
		if !found {
			return nil, fmt.Errorf("line %d: missing id separator", line)
		}

		def := NewDefinitionUnit(resolution)
		def.ID = id
		for ts, segment := range strings.Split(body, ";") {
			indexes, err := parseInts(segment)
			if err != nil {
				return nil, fmt.Errorf("line %d, trace %d: %w", line, ts, err)
			}
			if len(indexes) > 0 {
				def.Feed(int64(ts), indexes)
			}
		}
		definitions = append(definitions, def)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return definitions, nil
}

// readQuick parses one trace group per line: "id.x,y,ax,ay,.id.x,y,ax,ay,.".
func readQuick(r io.Reader) ([]TraceGroup, error) {
	var groups []TraceGroup

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		entries := strings.Split(strings.TrimSpace(scanner.Text()), ".")
		// A well-formed line ends with '.', leaving an empty last entry.
		if n := len(entries); n > 0 && entries[n-1] == "" {
			entries = entries[:n-1]
		}
		if len(entries)%2 != 0 {
			return nil, fmt.Errorf("line %d: id without values", line)
		}

		var group TraceGroup
		for i := 0; i < len(entries); i += 2 {
			values, err := parseInts(entries[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d, entry %q: %w", line, entries[i], err)
			}
			if len(values) < 4 {
				return nil, fmt.Errorf("line %d, entry %q: expected 4 values, got %d", line, entries[i], len(values))
			}
			group.Content = append(group.Content, QuickTrace{
				ID:      entries[i],
				Trace:   Vector2{X: values[0], Y: values[1]},
				Average: Vector2{X: values[2], Y: values[3]},
			})
		}
		groups = append(groups, group)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// parseInts reads a comma separated list, ignoring empty entries.
func parseInts(s string) ([]int64, error) {
	var out []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", field, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// consistent checks every heavy trace against the quick entries sharing its
// id in the group of the same position.
func (u *LivingDataUnit) consistent() bool {
	for _, def := range u.Definitions {
		for i, t := range def.Traces {
			if i >= len(u.TraceGroups) {
				Logger().Warn("database group missing", "definition", def.ID, "trace", i)
				return false
			}
			for _, q := range u.TraceGroups[i].Content {
				if q.ID != def.ID {
					continue
				}
				if !q.Trace.Equals(t.Displacement) || !q.Average.Equals(t.AverageOffset) {
					Logger().Warn("database mismatch",
						"definition", def.ID,
						"trace", i,
						"quick", q.Trace.String()+" "+q.Average.String(),
						"heavy", t.Displacement.String()+" "+t.AverageOffset.String())
					return false
				}
			}
		}
	}
	return true
}

// Dump writes the quick and heavy sides of the library. The quick side is
// written from Definitions, so it always agrees with the heavy side.
func (u *LivingDataUnit) Dump(quick, heavy io.Writer) error {
	qw := bufio.NewWriter(quick)
	for step := 0; ; step++ {
		wrote := false
		for _, def := range u.Definitions {
			if step >= len(def.Traces) {
				continue
			}
			t := def.Traces[step]
			fmt.Fprintf(qw, "%s.%d,%d,%d,%d,.", def.ID,
				t.Displacement.X, t.Displacement.Y, t.AverageOffset.X, t.AverageOffset.Y)
			wrote = true
		}
		if !wrote {
			break
		}
		qw.WriteByte('\n')
	}
	if err := qw.Flush(); err != nil {
		return fmt.Errorf("failed to write quick data: %w", err)
	}

	hw := bufio.NewWriter(heavy)
	for _, def := range u.Definitions {
		hw.WriteString(def.ID)
		hw.WriteByte('.')
		next := int64(0)
		for _, t := range def.Traces {
			// Empty segments keep the time stamps of later traces.
			for ; next < t.TimeStamp; next++ {
				hw.WriteByte(';')
			}
			next = max(next, t.TimeStamp) + 1
			for i, index := range t.Indexes {
				if i > 0 {
					hw.WriteByte(',')
				}
				hw.WriteString(strconv.FormatInt(index, 10))
			}
			hw.WriteByte(';')
		}
		hw.WriteByte('\n')
	}
	if err := hw.Flush(); err != nil {
		return fmt.Errorf("failed to write heavy data: %w", err)
	}
	return nil
}

// DumpToFiles writes quickaccess_<name> and heavyaccess_<name> into dir.
func (u *LivingDataUnit) DumpToFiles(dir, name string) error {
	quick, err := os.Create(filepath.Join(dir, QuickAccessPrefix+name))
	if err != nil {
		return fmt.Errorf("failed to create quick data: %w", err)
	}
	defer quick.Close()

	heavy, err := os.Create(filepath.Join(dir, HeavyAccessPrefix+name))
	if err != nil {
		return fmt.Errorf("failed to create heavy data: %w", err)
	}
	defer heavy.Close()

	if err := u.Dump(quick, heavy); err != nil {
		return err
	}
	if err := quick.Close(); err != nil {
		return err
	}
	return heavy.Close()
}
