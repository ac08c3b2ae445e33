// import-places loads a YAML seed file and inserts every place that is not
// already in the database. Duplicate names (case-insensitive) are skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/weekender-app/weekender/internal/config"
	"github.com/weekender-app/weekender/internal/ingest"
	"github.com/weekender-app/weekender/internal/logger"
	"github.com/weekender-app/weekender/internal/store"
)

func main() {
	dbFlag := flag.String("db", "", "path to SQLite database file (overrides WKND_DB_PATH)")
	seedFlag := flag.String("seed", "", "path to YAML seed file (overrides WKND_SEED_FILE)")
	flag.Parse()

	cfg := config.Load()
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *seedFlag != "" {
		cfg.SeedFile = *seedFlag
	}

	log := logger.New(cfg.LogLevel, true)
	defer func() { _ = log.Sync() }()

	drafts, err := ingest.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		log.Fatalf("load seed file %s: %v", cfg.SeedFile, err)
	}
	if len(drafts) == 0 {
		fmt.Fprintf(os.Stderr, "no places in %s\n", cfg.SeedFile)
		os.Exit(1)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("open store (%s): %v", cfg.DBPath, err)
	}
	defer st.Close()

	created, err := ingest.NewImporter(st, log).ImportBatch(context.Background(), drafts)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	fmt.Printf("imported %d of %d places from %s\n", len(created), len(drafts), cfg.SeedFile)
}
