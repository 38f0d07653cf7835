package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// InvoiceRepository persists invoice records with natural-key duplicate
// detection: an invoice number that already exists is skipped, not updated.
type InvoiceRepository interface {
	Insert(ctx context.Context, rec *entity.InvoiceRecord) (inserted bool, err error)
	Count(ctx context.Context) (int, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Insert(ctx context.Context, rec *entity.InvoiceRecord) (bool, error) {
	var id int64
	err := r.db.sql.QueryRowContext(ctx,
		r.db.rebind(`SELECT id FROM invoices_received WHERE numero_factura = $1`),
		rec.InvoiceNumber,
	).Scan(&id)
	switch {
	case err == nil:
		r.logger.Info("invoice already exists, skipping",
			"invoice", rec.InvoiceNumber, "id", id)
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check invoice %q: %w", rec.InvoiceNumber, err)
	}

	_, err = r.db.sql.ExecContext(ctx, r.db.rebind(`
		INSERT INTO invoices_received (
			ruta, numero_factura, descripcion, comercializadora_nombre,
			comercializadora_nit, fecha_emision, subtotal, iva,
			rete_fuente, rete_iva, rete_ica, total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`),
		rec.FilePath,
		rec.InvoiceNumber,
		rec.Description,
		rec.VendorName,
		rec.VendorTaxID,
		rec.IssueDate,
		zeroDefault(rec.Subtotal),
		zeroDefault(rec.Tax),
		zeroDefault(rec.ReteFuente),
		zeroDefault(rec.ReteIVA),
		zeroDefault(rec.ReteICA),
		zeroDefault(rec.Total),
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice %q: %w", rec.InvoiceNumber, err)
	}
	r.logger.Info("invoice saved", "invoice", rec.InvoiceNumber, "total", rec.Total)
	return true, nil
}

func (r *invoiceRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices_received`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// zeroDefault keeps monetary columns non-empty the way the accounting sheet
// expects them.
func zeroDefault(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
