package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tymoteuszmilek/Invoice-Automation/constants"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/common"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/entity"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/ingest"
	"github.com/tymoteuszmilek/Invoice-Automation/internal/observability"
	repo "github.com/tymoteuszmilek/Invoice-Automation/internal/repository"
	ingestsvc "github.com/tymoteuszmilek/Invoice-Automation/internal/services/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	// Parse CLI flags; they override the environment
	var (
		in       = flag.String("in", cfg.Ingest.RawDir, "directory of raw invoice CSVs")
		out      = flag.String("out", cfg.Ingest.CleanDir, "directory for cleaned CSVs")
		manifest = flag.String("manifest", cfg.Ingest.ManifestPath, "source manifest JSON (optional)")
		scope    = flag.String("scope", cfg.Ingest.DedupScope, "dedup scope: per_file or global")
		workers  = flag.Int("workers", cfg.Ingest.Workers, "files cleaned in parallel")
		load     = flag.Bool("load", false, "load cleaned invoices into the database")
		inmem    = flag.Bool("inmem", false, "use in-memory SQLite database (with -load)")
		asJSON   = flag.Bool("json", false, "print per-file reports as JSON")
	)
	flag.Parse()

	cfg.Ingest.RawDir = *in
	cfg.Ingest.CleanDir = *out
	cfg.Ingest.ManifestPath = *manifest
	cfg.Ingest.DedupScope = *scope
	cfg.Ingest.Workers = *workers
	if *inmem || !*load {
		// cleaning alone never touches the configured database
		cfg.Database.Driver = repo.DriverSQLite
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []ingest.Option{
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithMetrics(observability.NewMetrics()),
	}
	if s, ok := constants.ParseDedupScope(cfg.Ingest.DedupScope); ok {
		opts = append(opts, ingest.WithDedupScope(s))
	}
	if cfg.Ingest.ManifestPath != "" {
		m, err := ingest.LoadManifest(cfg.Ingest.ManifestPath)
		if err != nil {
			logger.Error("failed to load source manifest", "path", cfg.Ingest.ManifestPath, "error", err)
			os.Exit(1)
		}
		opts = append(opts, ingest.WithManifest(m))
	}
	ingestor := ingest.NewFSIngestor(logger, opts...)

	var store repo.InvoiceStore
	if *load {
		db, err := repo.InitDatabase(ctx, cfg.Database, *inmem, logger)
		if err != nil {
			logger.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = repo.NewInvoiceStore(db, logger)
	}

	svc := ingestsvc.NewService(ingestor, store, logger)
	res, err := svc.IngestDirectory(ctx, ingestsvc.DirectoryRequest{
		RootPath: cfg.Ingest.RawDir,
		OutDir:   cfg.Ingest.CleanDir,
		Load:     *load,
	})
	if res == nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	if *asJSON {
		reports := make([]entity.BatchReport, 0, len(res.Results))
		for _, r := range res.Results {
			reports = append(reports, r.Report)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(reports)
	} else {
		for _, r := range res.Results {
			rep := r.Report
			fmt.Printf("%s [%s]: read=%d written=%d full_row_dupes=%d collisions=%d schema=%d invalid=%d due_before_issued=%d",
				rep.Source, rep.Variant, rep.RowsRead, rep.RowsWritten, rep.FullRowDuplicates,
				rep.IdentityCollisions, rep.SchemaMismatches, rep.InvalidValues, rep.DueBeforeIssued)
			if r.Err != "" {
				fmt.Printf(" error=%q", r.Err)
			}
			fmt.Println()
		}
	}

	st := res.Statistics
	fmt.Printf("Batch %s complete!\n", res.BatchID)
	fmt.Printf("- Files matched: %d (succeeded %d, failed %d)\n", st.Matched, st.Succeeded, st.Failed)
	fmt.Printf("- Rows: read %d, written %d, dropped %d\n", st.RowsRead, st.RowsWritten, st.RowsDropped)
	if *load {
		fmt.Printf("- Invoices loaded: %d\n", res.Loaded)
	}
	fmt.Printf("- Output: %s\n", cfg.Ingest.CleanDir)

	if err != nil {
		logger.Error("failed to load invoices", "error", err)
		os.Exit(1)
	}
	if st.Failed > 0 {
		os.Exit(2)
	}
}
