package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL engine behind a DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// DB is a database handle shared by all repositories. The same SQL bodies run
// against Postgres (production) and the in-memory SQLite fallback; rebind
// translates placeholders per dialect.
type DB struct {
	SQL     *sql.DB
	Pool    *pgxpool.Pool // nil for the in-memory fallback
	dialect Dialect
	logger  *slog.Logger
}

func (db *DB) Dialect() Dialect { return db.dialect }

// Open creates a pgx pool and wraps it as database/sql for the repositories.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
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
	pc.ConnConfig.RuntimeParams["application_name"] = "docintake"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{SQL: db, Pool: pool, dialect: Postgres, logger: logger}, nil
}

// OpenMemory opens the in-memory fallback database. The shared cache keeps
// one database alive across connections for the life of the process, which
// matches how the product behaves when no DB_URL is configured.
func OpenMemory(ctx context.Context, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sqldb, err := sql.Open("sqlite", "file:docintake?mode=memory&cache=shared")
	if err != nil {
		logger.Error("failed to open in-memory database", "error", err)
		return nil, err
	}
	// A single connection sidesteps SQLITE_BUSY on concurrent writers.
	sqldb.SetMaxOpenConns(1)

	db := &DB{SQL: sqldb, dialect: SQLite, logger: logger}
	if err := db.Bootstrap(ctx); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	logger.Info("in-memory database ready")
	return db, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if db.SQL != nil {
		if err := db.SQL.Close(); err != nil {
			db.logger.Error("failed to close sql handle", "error", err)
		}
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	return db.SQL.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Bootstrap creates the tables when they do not exist yet. The DDL is kept
// portable across both engines; production Postgres schemas are declared in
// db/ent/schema and migrated from there.
func (db *DB) Bootstrap(ctx context.Context) error {
	for _, stmt := range bootstrapDDL {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			db.logger.Error("bootstrap statement failed", "error", err)
			return err
		}
	}
	return nil
}

var bootstrapDDL = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		date_of_birth TEXT,
		extracted_from TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		patient_id TEXT,
		order_type TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		source_path TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		format TEXT NOT NULL,
		order_id TEXT,
		status TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		extracted_text TEXT,
		patient_data TEXT,
		confidence_scores TEXT,
		processing_time REAL,
		error_message TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		processed_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		details TEXT,
		ts TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_patient ON orders(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_order ON documents(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_ts ON activity_logs(ts)`,
}
