// Package sqldb provides a database/sql backed dao.Store.  It supports the
// pure-Go sqlite driver for embedded deployments and pgx for postgres.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	_ "modernc.org/sqlite"             // register sqlite driver

	"github.com/viant/budgetflow/service/dao"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Service is a dao.Store backed by a SQL database.
type Service struct {
	db     *sql.DB
	driver string
}

var _ dao.Store = (*Service)(nil)

// Open opens (and initialises) a database for driver.  For sqlite dsn is a
// file path; parent directories are created and the connection is opened
// with immediate transactions so that concurrent writers queue on the
// database lock instead of failing at commit.
func Open(ctx context.Context, driver, dsn string) (*Service, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("sqlite dsn cannot be empty")
		}
		if !strings.HasPrefix(dsn, "file::memory:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres dsn cannot be empty")
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Service{db: db, driver: driver}, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)&_pragma=journal_mode(wal)"
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// RunInTx executes fn inside a database transaction, committing when fn
// succeeds and rolling back otherwise.
func (s *Service) RunInTx(ctx context.Context, fn func(ctx context.Context, tx dao.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	tx := &transaction{q: sqlTx, driver: s.driver, locking: s.driver == DriverPostgres}
	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View executes fn inside a read-only transaction.
func (s *Service) View(ctx context.Context, fn func(ctx context.Context, r dao.Reader) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: s.driver == DriverPostgres})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()
	return fn(ctx, &transaction{q: sqlTx, driver: s.driver})
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type transaction struct {
	q      querier
	driver string
	// locking is set for postgres write transactions: rows read there are
	// locked until commit because the default isolation is read committed.
	// sqlite write transactions already hold the database lock.
	locking bool
}

// forUpdate appends a row lock to a single-table select when locking.
func (t *transaction) forUpdate(query string) string {
	if !t.locking {
		return query
	}
	return query + ` FOR UPDATE`
}

// lockSequence serialises writers that allocate numbers under prefix until
// the transaction ends.
func (t *transaction) lockSequence(ctx context.Context, prefix string) error {
	if !t.locking {
		return nil
	}
	if _, err := t.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return fmt.Errorf("locking sequence %s: %w", prefix, err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for postgres.
func (t *transaction) rebind(query string) string {
	if t.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (t *transaction) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := t.q.ExecContext(ctx, t.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (t *transaction) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.q.QueryContext(ctx, t.rebind(query), args...)
}

func (t *transaction) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.q.QueryRowContext(ctx, t.rebind(query), args...)
}

func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return dao.NotFound(entity, id)
	}
	return fmt.Errorf("loading %s %s: %w", entity, id, err)
}
