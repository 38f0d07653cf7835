package repository

import (
	"context"
	"log/slog"

	"github.com/dnkideas/invoice-ingest/constants"
	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// ImportStats summarizes one import pass over a result set.
type ImportStats struct {
	Inserted   int
	Duplicates int
	Skipped    int // failed or recordless results, not sent to the database
	Errors     int
}

// Importer writes successful processing results into the sink tables.
type Importer struct {
	invoices InvoiceRepository
	orders   OrderRepository
	logger   *slog.Logger
}

func NewImporter(db *DB, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		invoices: NewInvoiceRepository(db, logger),
		orders:   NewOrderRepository(db, logger),
		logger:   logger,
	}
}

// Import walks the results and inserts each successful record. Failures on
// individual rows are logged and counted; the pass always runs to the end.
func (im *Importer) Import(ctx context.Context, results []entity.ProcessingResult) ImportStats {
	var stats ImportStats
	for _, res := range results {
		if !res.Succeeded {
			stats.Skipped++
			continue
		}

		var (
			inserted bool
			err      error
		)
		switch {
		case res.DocType == string(constants.DocTypeOrder) && res.Order != nil:
			inserted, err = im.orders.Insert(ctx, res.Order)
		case res.Invoice != nil:
			inserted, err = im.invoices.Insert(ctx, res.Invoice)
		default:
			stats.Skipped++
			continue
		}

		switch {
		case err != nil:
			im.logger.Error("import.row_failed", "file", res.FileName, "error", err)
			stats.Errors++
		case inserted:
			stats.Inserted++
		default:
			stats.Duplicates++
		}
	}
	im.logger.Info("import.done",
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped,
		"errors", stats.Errors)
	return stats
}
