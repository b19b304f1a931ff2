package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/webstore/pkg/cart"
)

// SQLiteStore implements cart.Store using SQLite for persistence.
//
// The single-open-cart invariant is enforced in the schema by a partial
// unique index on (user_id) WHERE status = 'Open', so a create racing a
// concurrent create fails cleanly instead of duplicating the aggregate.
// Optimistic concurrency uses a version column: updates are conditioned on
// the version the caller read, and a zero-row update means the write lost
// a race.
//
// WAL mode is enabled for concurrent readers; the connection pool is
// capped at one writer, which is all SQLite supports anyway.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteConfig configures the SQLite cart store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const cartSchema = `
CREATE TABLE IF NOT EXISTS carts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	version INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_one_open_per_user
	ON carts(user_id) WHERE status = 'Open';

CREATE INDEX IF NOT EXISTS idx_carts_user_status
	ON carts(user_id, status);

CREATE TABLE IF NOT EXISTS cart_items (
	cart_id INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL,
	PRIMARY KEY (cart_id, product_id)
);
`

// NewSQLiteStore opens (and if necessary creates) the cart database.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(cartSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cart schema: %w", err)
	}

	logger := slog.Default().With("component", "cart.storage.sqlite")
	logger.Info("cart store initialized", "path", cfg.Path)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// CreateOpenCart creates a new Open cart for the user. Returns
// cart.ErrOpenCartExists if the partial unique index rejects the insert.
func (s *SQLiteStore) CreateOpenCart(ctx context.Context, userID string) (*cart.Cart, error) {
	now := time.Now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO carts (user_id, status, created_at, version) VALUES (?, ?, ?, 0)`,
		userID, string(cart.StatusOpen), now.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, cart.ErrOpenCartExists
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart id: %w", err)
	}

	return &cart.Cart{
		ID:        id,
		UserID:    userID,
		Status:    cart.StatusOpen,
		CreatedAt: now,
		Version:   0,
	}, nil
}

// GetOpenCart returns the user's Open cart with its line items, or nil.
func (s *SQLiteStore) GetOpenCart(ctx context.Context, userID string) (*cart.Cart, error) {
	return s.queryCart(ctx,
		`SELECT id, user_id, status, created_at, version FROM carts
		 WHERE user_id = ? AND status = ?`,
		userID, string(cart.StatusOpen))
}

// GetCart returns the cart with the given ID regardless of status, or nil.
func (s *SQLiteStore) GetCart(ctx context.Context, id int64) (*cart.Cart, error) {
	return s.queryCart(ctx,
		`SELECT id, user_id, status, created_at, version FROM carts WHERE id = ?`, id)
}

func (s *SQLiteStore) queryCart(ctx context.Context, query string, args ...any) (*cart.Cart, error) {
	var c cart.Cart
	var status string
	var createdAt int64

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.UserID, &status, &createdAt, &c.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c.Status = cart.Status(status)
	c.CreatedAt = time.Unix(0, createdAt)

	if err := s.loadItems(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, c *cart.Cart) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE cart_id = ? ORDER BY product_id`,
		c.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li cart.LineItem
		if err := rows.Scan(&li.ProductID, &li.Quantity); err != nil {
			return fmt.Errorf("failed to scan cart item: %w", err)
		}
		c.Items = append(c.Items, li)
	}
	return rows.Err()
}

// UpdateCart persists status and line items inside one transaction,
// conditioned on the version the caller read. The whole write either
// commits or leaves the aggregate untouched, so a cancelled context never
// produces a half-applied merge.
func (s *SQLiteStore) UpdateCart(ctx context.Context, c *cart.Cart) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE carts SET status = ?, version = version + 1 WHERE id = ? AND version = ?`,
		string(c.Status), c.ID, c.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return cart.NewConflictError("update_cart", c.ID, nil)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	for _, li := range c.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)`,
			c.ID, li.ProductID, li.Quantity,
		); err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart update: %w", err)
	}

	c.Version++
	return nil
}

// ListSubmitted returns one page of the user's Submitted carts.
func (s *SQLiteStore) ListSubmitted(ctx context.Context, userID string, q cart.ListQuery) (*cart.OrderPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	where := `user_id = ? AND status = ?`
	args := []any{userID, string(cart.StatusSubmitted)}

	if id, ok := numericSearch(q.Search); ok {
		where += ` AND id = ?`
		args = append(args, id)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM carts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	order := "ASC"
	if q.SortOrder == cart.SortDateDesc {
		order = "DESC"
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, user_id, status, created_at, version FROM carts
			WHERE %s ORDER BY created_at %s, id %s LIMIT ? OFFSET ?`, where, order, order),
		append(args, cart.PageSize, (q.Page-1)*cart.PageSize)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	page := &cart.OrderPage{
		Page:       q.Page,
		PageSize:   cart.PageSize,
		TotalCount: total,
		TotalPages: (total + cart.PageSize - 1) / cart.PageSize,
	}

	for rows.Next() {
		var c cart.Cart
		var status string
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &status, &createdAt, &c.Version); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		c.Status = cart.Status(status)
		c.CreatedAt = time.Unix(0, createdAt)
		page.Orders = append(page.Orders, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, c := range page.Orders {
		if err := s.loadItems(ctx, c); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// DeleteCart removes a cart and its line items.
func (s *SQLiteStore) DeleteCart(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return tx.Commit()
}

// PruneAbandoned deletes Open carts created before the cutoff.
func (s *SQLiteStore) PruneAbandoned(ctx context.Context, olderThan time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id IN
			(SELECT id FROM carts WHERE status = ? AND created_at < ?)`,
		string(cart.StatusOpen), olderThan.UnixNano(),
	); err != nil {
		return 0, fmt.Errorf("failed to prune cart items: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM carts WHERE status = ? AND created_at < ?`,
		string(cart.StatusOpen), olderThan.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune carts: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return int(deleted), nil
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteStore) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The driver has no stable typed error for this, so match on the
// constraint message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// numericSearch parses a search string as an order ID. Non-numeric search
// strings are ignored, not treated as errors.
func numericSearch(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
