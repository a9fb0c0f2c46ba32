package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/wbrown/glyphtrace"
	"github.com/wbrown/glyphtrace/store"
)

const usage = `Usage: beorc <command> [flags]

Commands:
  verify   check that the quick and heavy files agree
  train    refine a definition from a file of instances
  match    rank the library against strokes read from a file
  store    copy the library into a SQLite database
  restore  write the library stored in a SQLite database back to files
`

// libraryFlags are shared by every command that reads the text library.
type libraryFlags struct {
	dir        *string
	name       *string
	resolution *int64
	config     *string
	verbose    *bool
}

func addLibraryFlags(fs *flag.FlagSet) libraryFlags {
	return libraryFlags{
		dir:        fs.String("dir", ".", "Directory holding the library files"),
		name:       fs.String("name", "default", "Library name (quickaccess_<name>, heavyaccess_<name>)"),
		resolution: fs.Int64("resolution", 0, "Row size of the definitions (0 uses the configuration)"),
		config:     fs.String("config", "", "Path to a YAML configuration file"),
		verbose:    fs.Bool("v", false, "Log details"),
	}
}

func (lf libraryFlags) setup() glyphtrace.Config {
	if *lf.verbose {
		glyphtrace.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	cfg := glyphtrace.DefaultConfig()
	if *lf.config != "" {
		var err error
		if cfg, err = glyphtrace.LoadConfig(*lf.config); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *lf.resolution > 0 {
		cfg.Resolution = int(*lf.resolution)
	}
	return cfg
}

func (lf libraryFlags) load(cfg glyphtrace.Config) *glyphtrace.LivingDataUnit {
	unit, ok, err := glyphtrace.LoadFromFiles(*lf.dir, *lf.name, int64(cfg.Resolution))
	if err != nil {
		log.Fatalf("Failed to load library: %v", err)
	}
	if !ok {
		log.Printf("Warning: quick and heavy files of %s disagree", *lf.name)
	}
	return unit
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "verify":
		runVerify(args)
	case "train":
		runTrain(args)
	case "match":
		runMatch(args)
	case "store":
		runStore(args)
	case "restore":
		runRestore(args)
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	lf := addLibraryFlags(fs)
	fs.Parse(args)
	cfg := lf.setup()

	unit, ok, err := glyphtrace.LoadFromFiles(*lf.dir, *lf.name, int64(cfg.Resolution))
	if err != nil {
		log.Fatalf("Failed to load library: %v", err)
	}
	log.Printf("%d definitions, %d time steps", len(unit.Definitions), len(unit.TraceGroups))
	if !ok {
		log.Fatalf("Library %s is inconsistent", *lf.name)
	}
	log.Printf("Library %s is consistent", *lf.name)
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	lf := addLibraryFlags(fs)
	baseID := fs.String("base", "", "Id of the definition to train (required)")
	instancesFile := fs.String("instances", "", "Heavy format file with the training instances (required)")
	margin := fs.Float64("margin", -1, "Error margin (negative uses the configuration)")
	write := fs.Bool("write", false, "Write the trained definition back into the library files")
	dbPath := fs.String("db", "", "Record the run in this SQLite database")
	fs.Parse(args)
	cfg := lf.setup()

	if *baseID == "" || *instancesFile == "" {
		fmt.Println("Both -base and -instances flags are required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	unit := lf.load(cfg)
	base, found := unit.Definition(*baseID)
	if !found {
		log.Fatalf("Definition %s not found", *baseID)
	}

	f, err := os.Open(*instancesFile)
	if err != nil {
		log.Fatalf("Failed to open instances: %v", err)
	}
	instances, err := glyphtrace.ReadDefinitions(f, int64(cfg.Resolution))
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read instances: %v", err)
	}
	if len(instances) == 0 {
		log.Fatalf("No instances in %s", *instancesFile)
	}

	training := &glyphtrace.TrainingUnit{
		Base:              base,
		TrainingInstances: instances,
		ErrorMargin:       cfg.ErrorMargin,
	}
	if *margin >= 0 {
		training.ErrorMargin = *margin
	}

	result := glyphtrace.TrainWithReport(training)
	for i, r := range result.Reports {
		fmt.Printf("instance %d: within=%t reconstructed=%t timing=%.3f vectors=%.3f offsets=%.3f diagnosis=%t\n",
			i, r.TraceWithinRange, r.Reconstructed, r.TimingRating,
			r.VectorsSimilarity, r.OffsetsSimilarity, r.Diagnosis)
		for _, step := range r.Log {
			fmt.Printf("    %s\n", step)
		}
	}
	log.Printf("%d of %d instances voted", len(result.Valid), len(instances))
	fmt.Print(result.Definition)

	if *dbPath != "" {
		s, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer s.Close()
		id, err := s.RecordTraining(training, result)
		if err != nil {
			log.Fatalf("Failed to record training: %v", err)
		}
		log.Printf("Recorded run %s", id)
	}

	if *write {
		unit.ReplaceDefinition(result.Definition)
		if err := unit.DumpToFiles(*lf.dir, *lf.name); err != nil {
			log.Fatalf("Failed to write library: %v", err)
		}
		log.Printf("Library %s updated", *lf.name)
	}
}

func runMatch(args []string) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	lf := addLibraryFlags(fs)
	strokesFile := fs.String("strokes", "", "Heavy format file, each line is matched on its own (required)")
	limit := fs.Int("limit", glyphtrace.DefaultPredictionLimit, "Number of predictions to print")
	fs.Parse(args)
	cfg := lf.setup()

	if *strokesFile == "" {
		fmt.Println("The -strokes flag is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	unit := lf.load(cfg)
	f, err := os.Open(*strokesFile)
	if err != nil {
		log.Fatalf("Failed to open strokes: %v", err)
	}
	queries, err := glyphtrace.ReadDefinitions(f, int64(cfg.Resolution))
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read strokes: %v", err)
	}

	m := glyphtrace.NewMedium(unit)
	for _, q := range queries {
		m.Reset()
		for _, t := range q.Traces {
			m.FeedTrace(t)
		}
		fmt.Printf("%s -> %s\n", q.ID, m.Best())
		fmt.Print(glyphtrace.FormatPredictions(m.Predictions(*limit)))
	}
}

func runStore(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	lf := addLibraryFlags(fs)
	dbPath := fs.String("db", "glyphtrace.db", "SQLite database path")
	fs.Parse(args)
	cfg := lf.setup()

	unit := lf.load(cfg)
	s, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	if err := s.SaveUnit(unit); err != nil {
		log.Fatalf("Failed to store library: %v", err)
	}
	log.Printf("Stored %d definitions in %s", len(unit.Definitions), *dbPath)
}

func runRestore(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	lf := addLibraryFlags(fs)
	dbPath := fs.String("db", "glyphtrace.db", "SQLite database path")
	fs.Parse(args)
	lf.setup()

	s, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	unit, err := s.LoadUnit()
	if err != nil {
		log.Fatalf("Failed to load library: %v", err)
	}
	if err := unit.DumpToFiles(*lf.dir, *lf.name); err != nil {
		log.Fatalf("Failed to write library: %v", err)
	}
	log.Printf("Wrote %d definitions to %s", len(unit.Definitions), *lf.dir)
}
