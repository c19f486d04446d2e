package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
)

// PostgresStore implements OrderStore and ProductStore against PostgreSQL.
// Used for local development; deployed environments use DynamoDB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate creates the orders and products tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			buyer_id TEXT NOT NULL,
			order_number TEXT NOT NULL,
			customer_email TEXT NOT NULL DEFAULT '',
			order_status TEXT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			total INTEGER NOT NULL,
			tracking_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_seller ON orders (seller_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL,
			stock INTEGER NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_seller ON products (seller_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const orderColumns = `id, seller_id, buyer_id, order_number, customer_email, order_status, items, total, tracking_number, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	var o order.Order
	var status string
	var items []byte
	if err := row.Scan(&o.ID, &o.SellerID, &o.BuyerID, &o.OrderNumber, &o.CustomerEmail,
		&status, &items, &o.Total, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return &o, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// ListOrdersBySeller pages newest-first. The continuation token is the offset
// into the seller's ordering, opaque to callers.
func (s *PostgresStore) ListOrdersBySeller(ctx context.Context, sellerID string, limit int32, nextToken string) ([]*order.Order, string, error) {
	offset := 0
	if nextToken != "" {
		n, err := strconv.Atoi(nextToken)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("invalid page token: %q", nextToken)
		}
		offset = n
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC OFFSET $2`
	args := []any{sellerID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, "", err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	token := ""
	if limit > 0 && int32(len(orders)) == limit {
		token = strconv.Itoa(offset + len(orders))
	}
	return orders, token, nil
}

func (s *PostgresStore) PutOrder(ctx context.Context, o *order.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		o.ID, o.SellerID, o.BuyerID, o.OrderNumber, o.CustomerEmail,
		string(o.Status), items, o.Total, o.TrackingNumber, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConditionFailed
	}
	return nil
}

// UpdateOrderStatus is conditional on the observed status and the owning
// seller; an empty tracking number leaves the stored one untouched.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, u StatusUpdate) error {
	var (
		res sql.Result
		err error
	)
	if u.TrackingNumber != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE orders SET order_status = $1, updated_at = $2, tracking_number = $3
			 WHERE id = $4 AND order_status = $5 AND seller_id = $6`,
			string(u.To), u.UpdatedAt, u.TrackingNumber, u.OrderID, string(u.From), u.SellerID)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE orders SET order_status = $1, updated_at = $2
			 WHERE id = $3 AND order_status = $4 AND seller_id = $5`,
			string(u.To), u.UpdatedAt, u.OrderID, string(u.From), u.SellerID)
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConditionFailed
	}
	return nil
}

const productColumns = `id, seller_id, name, description, price, stock, category, image_url, active, created_at, updated_at`

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.Category, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *product.Product) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.SellerID, p.Name, p.Description, p.Price, p.Stock,
		p.Category, p.ImageURL, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *product.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = $1, description = $2, price = $3, stock = $4,
			category = $5, image_url = $6, active = $7, updated_at = $8
		 WHERE id = $9 AND seller_id = $10`,
		p.Name, p.Description, p.Price, p.Stock,
		p.Category, p.ImageURL, p.Active, p.UpdatedAt, p.ID, p.SellerID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id, sellerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1 AND seller_id = $2`, id, sellerID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConditionFailed
	}
	return nil
}
