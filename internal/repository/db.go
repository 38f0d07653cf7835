package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

type dialect string

const (
	dialectPostgres dialect = "postgres"
	dialectSQLite   dialect = "sqlite"
)

// DB wraps the sink database connection. Postgres runs over a pgx pool
// wrapped as database/sql; the in-memory mode uses sqlite through the same
// interface so repositories have a single code path.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect dialect
	logger  *slog.Logger
}

// Open creates a pgx pool for the configured DSN and wraps it for
// database/sql use.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-ingest"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return &DB{
		sql:     stdlib.OpenDBFromPool(pool),
		pool:    pool,
		dialect: dialectPostgres,
		logger:  logger,
	}, nil
}

// OpenInMemory opens an in-memory sqlite database, used by tests and by
// offline runs that only need the snapshot/export outputs.
func OpenInMemory(logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		logger.Error("failed to open in-memory database", "error", err)
		return nil, err
	}
	// A memory database lives per-connection.
	db.SetMaxOpenConns(1)
	logger.Info("using in-memory database")
	return &DB{
		sql:     db,
		dialect: dialectSQLite,
		logger:  logger,
	}, nil
}

// Close closes the database connections gracefully.
func (d *DB) Close() {
	d.logger.Info("closing database connections")
	if err := d.sql.Close(); err != nil {
		d.logger.Error("failed to close database", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.sql.PingContext(ctx)
}

// Migrate creates the sink tables when they do not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	for _, ddl := range []string{d.invoiceTableDDL(), d.orderTableDDL()} {
		if _, err := d.sql.ExecContext(ctx, ddl); err != nil {
			d.logger.Error("failed to create table", "error", err)
			return err
		}
	}
	d.logger.Info("sink tables verified")
	return nil
}

func (d *DB) invoiceTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS invoices_received (
		id ` + d.serialPK() + `,
		ruta VARCHAR(255) NOT NULL,
		numero_factura VARCHAR(100),
		descripcion VARCHAR(255),
		comercializadora_nombre VARCHAR(255),
		comercializadora_nit VARCHAR(100),
		fecha_emision VARCHAR(30),
		subtotal VARCHAR(20),
		iva VARCHAR(20),
		rete_fuente VARCHAR(20),
		rete_iva VARCHAR(20),
		rete_ica VARCHAR(20),
		total VARCHAR(20)
	)`
}

func (d *DB) orderTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS purchase_orders (
		id ` + d.serialPK() + `,
		numero_orden VARCHAR(100),
		comprador_nit VARCHAR(50),
		comprador_nombre VARCHAR(100),
		fecha_elaboracion VARCHAR(30),
		descripcion VARCHAR(250),
		cantidad VARCHAR(10),
		precio_unitario VARCHAR(20),
		valor_total_item VARCHAR(20),
		subtotal VARCHAR(20),
		iva VARCHAR(20),
		total VARCHAR(20),
		terminos_pago VARCHAR(100),
		ruta VARCHAR(150)
	)`
}

func (d *DB) serialPK() string {
	if d.dialect == dialectSQLite {
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return "SERIAL PRIMARY KEY"
}

var rePlaceholder = regexp.MustCompile(`\$\d+`)

// rebind translates $n placeholders for the sqlite driver. Arguments are
// always passed in positional order.
func (d *DB) rebind(query string) string {
	if d.dialect == dialectSQLite {
		return rePlaceholder.ReplaceAllString(query, "?")
	}
	return query
}
