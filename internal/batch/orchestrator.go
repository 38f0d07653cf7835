package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dnkideas/invoice-ingest/internal/analyze"
	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// Analyzer turns one input file into exactly one ProcessingResult.
type Analyzer interface {
	Analyze(ctx context.Context, filePath string) entity.ProcessingResult
}

// Config holds orchestration behavior.
type Config struct {
	Delay        time.Duration // pause between documents, courtesy to the service
	SnapshotPath string
}

// Runner processes a document set strictly sequentially, skipping files a
// prior run already succeeded on and checkpointing the accumulated results
// to the snapshot file. Failed attempts are retried on the next run.
type Runner struct {
	log      *slog.Logger
	analyzer Analyzer
	cfg      Config
}

func NewRunner(analyzer Analyzer, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = "./documents_analyzed.json"
	}
	return &Runner{
		log:      logger,
		analyzer: analyzer,
		cfg:      cfg,
	}
}

// Run processes files in input order. A single document's failure is
// recorded and the batch continues; only failing to write the final
// snapshot is fatal. The returned result set is the full accumulated one,
// prior runs included.
func (r *Runner) Run(ctx context.Context, files []string) (entity.Summary, []entity.ProcessingResult, error) {
	runID := uuid.New().String()
	start := time.Now()

	prior := LoadSnapshot(r.cfg.SnapshotPath, r.log)
	succeededBefore := make(map[string]bool, len(prior))
	summary := entity.Summary{Total: len(files)}
	for _, res := range prior {
		if res.Succeeded {
			succeededBefore[res.FileName] = true
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	results := make([]entity.ProcessingResult, len(prior), len(prior)+len(files))
	copy(results, prior)

	r.log.Info("batch.start",
		"run_id", runID,
		"files", len(files),
		"prior_results", len(prior),
		"snapshot", r.cfg.SnapshotPath)

	for i, file := range files {
		result := entity.ProcessingResult{FileName: filepath.Base(file)}

		if succeededBefore[result.FileName] {
			r.log.Info("batch.document.skip",
				"run_id", runID, "file", result.FileName, "position", i+1, "of", len(files))
			summary.Skipped++
			continue
		}

		result = r.analyzer.Analyze(ctx, file)
		results = append(results, result)

		if result.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		r.log.Info("batch.document.done",
			"run_id", runID,
			"file", result.FileName,
			"position", i+1, "of", len(files),
			"succeeded", result.Succeeded)

		// Courtesy pause between service calls; nothing follows the last
		// document.
		if i < len(files)-1 {
			time.Sleep(r.cfg.Delay)
		}
	}

	for i := range results {
		if !results[i].Succeeded {
			continue
		}
		if v, ok := analyze.ParseAmbiguousNumber(results[i].Total()); ok {
			summary.TotalAmount += v
		}
	}

	if err := SaveSnapshot(r.cfg.SnapshotPath, results); err != nil {
		r.log.Error("batch.snapshot.save_failed", "run_id", runID, "error", err)
		return summary, results, err
	}

	r.log.Info("batch.done",
		"run_id", runID,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"total_amount", summary.TotalAmount,
		"elapsed_ms", time.Since(start).Milliseconds())
	return summary, results, nil
}
