// Package catalog provides persistent and cached implementations of product.Store.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const productColumns = "id, bank, name, rate_apr, min_income, min_credit_score, tenure_min_months, tenure_max_months, disbursal_speed, docs_level, summary"

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL DEFAULT 0,
    bank TEXT NOT NULL,
    name TEXT NOT NULL,
    rate_apr DOUBLE PRECISION NOT NULL,
    min_income BIGINT NOT NULL,
    min_credit_score INTEGER NOT NULL,
    tenure_min_months INTEGER NOT NULL,
    tenure_max_months INTEGER NOT NULL,
    disbursal_speed TEXT NOT NULL,
    docs_level TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT ''
)`

// SQLStore reads the catalog from a products table. List order is position, then id.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and prepares it for use. SQLite files get their
// parent directory created and WAL pragmas applied.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("catalog dsn is required")
	}

	switch driver {
	case DriverSQLite:
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA busy_timeout=3000;",
			"PRAGMA synchronous=NORMAL;",
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("set pragma %s: %w", p, err)
			}
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return NewSQLStore(db, driver), nil
}

// NewSQLStore wraps an existing handle. driver selects the placeholder style.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the products table when it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate products: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts items in order when the table has no rows and reports how many were written.
func (s *SQLStore) SeedIfEmpty(ctx context.Context, items []product.Product) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return 0, fmt.Errorf("seed product %q: %w", item.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := s.rebind("INSERT INTO products (position, " + productColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	for i, item := range items {
		_, err := tx.ExecContext(ctx, insert,
			i, item.ID, item.Bank, item.Name, item.RateAPR, item.MinIncome, item.MinCreditScore,
			item.TenureMinMonths, item.TenureMaxMonths, string(item.DisbursalSpeed), string(item.DocsLevel), item.Summary,
		)
		if err != nil {
			return 0, fmt.Errorf("insert product %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(items), nil
}

// List returns every product ordered by position, then id.
func (s *SQLStore) List(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []product.Product
	for rows.Next() {
		item, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return items, nil
}

// FindByID returns product.ErrNotFound when no row matches.
func (s *SQLStore) FindByID(ctx context.Context, id string) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+productColumns+" FROM products WHERE id = ?"), id)
	item, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	if err != nil {
		return product.Product{}, err
	}
	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (product.Product, error) {
	var (
		item  product.Product
		speed string
		docs  string
	)
	err := row.Scan(
		&item.ID, &item.Bank, &item.Name, &item.RateAPR, &item.MinIncome, &item.MinCreditScore,
		&item.TenureMinMonths, &item.TenureMaxMonths, &speed, &docs, &item.Summary,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, err
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("scan product: %w", err)
	}

	item.DisbursalSpeed = product.DisbursalSpeed(speed)
	item.DocsLevel = product.DocsLevel(docs)
	if err := item.Validate(); err != nil {
		return product.Product{}, fmt.Errorf("invalid catalog row %q: %w", item.ID, err)
	}
	return item, nil
}

// rebind rewrites '?' placeholders to '$n' for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
