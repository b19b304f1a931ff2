package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteConfig contains configuration for the SQLite catalog store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	price_cents INTEGER NOT NULL,
	photo_url TEXT NOT NULL DEFAULT '',
	available INTEGER NOT NULL DEFAULT 1
);
`

// NewSQLiteStore opens (and if necessary creates) the catalog database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logger := slog.Default().With("component", "catalog.sqlite")
	logger.Info("catalog store initialized", "path", cfg.Path)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// GetProduct returns the product, or nil if it does not exist.
func (s *SQLiteStore) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	var available int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, price_cents, photo_url, available FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.PhotoURL, &available)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	p.Available = available != 0
	return &p, nil
}

// ListProducts returns one page of the catalog ordered by ID.
func (s *SQLiteStore) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price_cents, photo_url, available FROM products
		 ORDER BY id LIMIT ? OFFSET ?`,
		PageSize, (page-1)*PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	result := &ProductPage{Page: page, PageSize: PageSize, TotalCount: total}
	for rows.Next() {
		var p Product
		var available int
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.PhotoURL, &available); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Available = available != 0
		result.Products = append(result.Products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return result, nil
}

// SaveProduct inserts or updates a product.
func (s *SQLiteStore) SaveProduct(ctx context.Context, p *Product) error {
	available := 0
	if p.Available {
		available = 1
	}

	if p.ID != 0 {
		res, err := s.db.ExecContext(ctx,
			`UPDATE products SET name = ?, price_cents = ?, photo_url = ?, available = ? WHERE id = ?`,
			p.Name, p.PriceCents, p.PhotoURL, available, p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		// Fall through to insert with explicit ID.
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, price_cents, photo_url, available) VALUES (?, ?, ?, ?)`,
		p.Name, p.PriceCents, p.PhotoURL, available,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read product id: %w", err)
	}
	p.ID = id
	return nil
}

// DeleteProduct removes a product. No-op if absent.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
