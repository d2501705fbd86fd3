package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps a config value to a Driver. Empty means SQLite.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported store driver: %q", s)
	}
}

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sql.DB
	driver  Driver
	dialect string
}

// Open creates a Store backed by the SQLite database at dsn.
func Open(dsn string) (*Store, error) {
	return OpenDriver(context.Background(), DriverSQLite, dsn)
}

// OpenDriver connects to the given backend, applies connection settings and
// creates the schema if missing.
func OpenDriver(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var (
		drvName string
		dia     string
	)
	switch driver {
	case DriverSQLite:
		drvName, dia = "sqlite", dialect.SQLite
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
		drvName, dia = "pgx", dialect.Postgres
		if dsn == "" {
			dsn = "postgres://localhost:5432/edugenie?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer at a time; WAL + busy_timeout cover readers in other processes.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, driver: driver, dialect: dia}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports which backend the store is connected to.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// QuizRecords returns the append-only quiz attempt log.
func (s *Store) QuizRecords() QuizRecordRepo {
	return &quizRecordRepo{db: s.db, dialect: s.dialect}
}

// XP returns the experience/badge ledger.
func (s *Store) XP() XPRepo {
	return &xpRepo{db: s.db, dialect: s.dialect}
}

// Plans returns the learning plan repository.
func (s *Store) Plans() PlanRepo {
	return &planRepo{db: s.db, dialect: s.dialect}
}

// Cache returns the LLM response cache.
func (s *Store) Cache() CacheRepo {
	return &cacheRepo{db: s.db, dialect: s.dialect}
}

// EventRepo returns the LLM request event log.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect}
}

// Reset deletes every row from every table in a single transaction.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ErrPersistence{Op: "reset", Err: err}
	}
	for _, table := range allTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			return &ErrPersistence{Op: "reset " + table, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &ErrPersistence{Op: "reset", Err: err}
	}
	return nil
}

// sqliteDSN appends the connection pragmas unless the caller already set some.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "edugenie.db"
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	pragmas := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=busy_timeout(5000)",
		"_pragma=foreign_keys(1)",
		"_pragma=synchronous(NORMAL)",
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. EDUGENIE_DB environment variable
// 2. $XDG_DATA_HOME/edugenie/edugenie.db
// 3. ~/.local/share/edugenie/edugenie.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EDUGENIE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "edugenie", "edugenie.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
