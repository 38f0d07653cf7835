package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dnkideas/invoice-ingest/constants"
	"github.com/dnkideas/invoice-ingest/internal/analyze"
	"github.com/dnkideas/invoice-ingest/internal/batch"
	"github.com/dnkideas/invoice-ingest/internal/common"
	"github.com/dnkideas/invoice-ingest/internal/docintel"
	"github.com/dnkideas/invoice-ingest/internal/entity"
	"github.com/dnkideas/invoice-ingest/internal/export"
	"github.com/dnkideas/invoice-ingest/internal/ingest"
	repo "github.com/dnkideas/invoice-ingest/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir      = flag.String("dir", "", "directory to process documents from (required)")
		docType  = flag.String("type", "invoice", "document type: invoice or order")
		snapshot = flag.String("snapshot", "", "checkpoint file path (overrides BATCH_SNAPSHOT_PATH)")
		out      = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		inmem    = flag.Bool("inmem", false, "use in-memory SQLite database")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	dt, ok := constants.ParseDocType(*docType)
	if !ok {
		printError("Error: --type must be invoice or order\n")
		os.Exit(1)
	}

	// If output file not specified, use parent directory with default filename
	if *out == "" {
		name := "invoices.xlsx"
		if dt == constants.DocTypeOrder {
			name = "orders.xlsx"
		}
		*out = filepath.Join(filepath.Dir(strings.TrimRight(*dir, "/")), name)
	}
	*out = filepath.Join(filepath.Dir(*out), ingest.SanitizeFilename(filepath.Base(*out)))

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if *snapshot != "" {
		cfg.Batch.SnapshotPath = *snapshot
	}

	// Wire the document service client and the per-type pipeline
	client := docintel.NewClient(docintel.Config{
		Endpoint:     cfg.DocIntel.Endpoint,
		APIKey:       cfg.DocIntel.APIKey,
		APIVersion:   cfg.DocIntel.APIVersion,
		PollInterval: cfg.DocIntel.PollInterval,
		Timeout:      cfg.DocIntel.Timeout,
	}, logger)

	dtCfg := analyze.ConfigFor(dt)
	if cfg.DocIntel.ModelID != "" {
		dtCfg.ModelID = cfg.DocIntel.ModelID
	}
	rates := analyze.WithholdingRates{
		Source: cfg.Withholding.SourceRate,
		VAT:    cfg.Withholding.VATRate,
		ICA:    cfg.Withholding.ICARate,
	}
	analyzer := analyze.NewAnalyzer(client, dtCfg, rates, logger)

	// List documents
	files, err := ingest.ListDocuments(*dir)
	if err != nil {
		logger.Error("failed to list documents", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("no documents found", "dir", *dir)
	}

	// Run the batch
	runner := batch.NewRunner(analyzer, batch.Config{
		Delay:        cfg.Batch.Delay,
		SnapshotPath: cfg.Batch.SnapshotPath,
	}, logger)
	summary, results, err := runner.Run(ctx, files)
	if err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}

	// Import into the database when a sink is configured
	var stats repo.ImportStats
	switch {
	case *inmem:
		db, err := repo.OpenInMemory(logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		stats = importResults(ctx, db, results, logger)
	case cfg.Database.DSN != "":
		db, err := repo.Open(ctx, repo.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		stats = importResults(ctx, db, results, logger)
	default:
		logger.Warn("DB_URL not set, skipping database import")
	}

	// Export to XLSX
	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := export.NewService(logger).ExportXLSX(dt, results)
	if err != nil {
		logger.Error("failed to export results", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	// Log summary
	logger.Info("batch processing complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"inserted", stats.Inserted,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents found: %d\n", summary.Total)
	fmt.Printf("- Succeeded: %d\n", summary.Succeeded)
	fmt.Printf("- Failed: %d\n", summary.Failed)
	fmt.Printf("- Skipped (already processed): %d\n", summary.Skipped)
	fmt.Printf("- Total amount: %.2f\n", summary.TotalAmount)
	fmt.Printf("- Rows inserted: %d (duplicates: %d)\n", stats.Inserted, stats.Duplicates)
	fmt.Printf("- Output: %s\n", *out)
}

func importResults(ctx context.Context, db *repo.DB, results []entity.ProcessingResult, logger *slog.Logger) repo.ImportStats {
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to prepare sink tables", "error", err)
		os.Exit(1)
	}
	return repo.NewImporter(db, logger).Import(ctx, results)
}
