package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dnkideas/invoice-ingest/internal/entity"
)

// OrderRepository persists purchase order records, deduplicating on the
// order number.
type OrderRepository interface {
	Insert(ctx context.Context, rec *entity.OrderRecord) (inserted bool, err error)
	Count(ctx context.Context) (int, error)
}

type orderRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewOrderRepository(db *DB, logger *slog.Logger) OrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) Insert(ctx context.Context, rec *entity.OrderRecord) (bool, error) {
	var id int64
	err := r.db.sql.QueryRowContext(ctx,
		r.db.rebind(`SELECT id FROM purchase_orders WHERE numero_orden = $1`),
		rec.OrderNumber,
	).Scan(&id)
	switch {
	case err == nil:
		r.logger.Info("order already exists, skipping",
			"order", rec.OrderNumber, "id", id)
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check order %q: %w", rec.OrderNumber, err)
	}

	_, err = r.db.sql.ExecContext(ctx, r.db.rebind(`
		INSERT INTO purchase_orders (
			numero_orden, comprador_nit, comprador_nombre, fecha_elaboracion,
			descripcion, cantidad, precio_unitario, valor_total_item,
			subtotal, iva, total, terminos_pago, ruta
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`),
		rec.OrderNumber,
		rec.BuyerTaxID,
		rec.BuyerName,
		rec.IssueDate,
		rec.ItemDescription,
		rec.Quantity,
		rec.UnitPrice,
		zeroDefault(rec.ItemTotal),
		zeroDefault(rec.Subtotal),
		zeroDefault(rec.Tax),
		zeroDefault(rec.Total),
		rec.PaymentTerms,
		rec.FilePath,
	)
	if err != nil {
		return false, fmt.Errorf("insert order %q: %w", rec.OrderNumber, err)
	}
	r.logger.Info("order saved", "order", rec.OrderNumber, "total", rec.Total)
	return true, nil
}

func (r *orderRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchase_orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
