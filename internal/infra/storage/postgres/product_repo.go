package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/storage"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// ProductRepo implements storage.ProductRepository using PostgreSQL.
type ProductRepo struct {
	root *DB
	db   queryer
	// lock adds FOR UPDATE to lookups inside a transaction.
	lock bool
}

// NewProductRepo creates a new PostgreSQL product repository.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{root: db, db: db.DB}
}

// WithinTx runs fn in a unit of work. Lookups inside fn lock the selected row
// until the transaction ends.
func (r *ProductRepo) WithinTx(ctx context.Context, fn func(repo storage.ProductRepository) error) error {
	uow, err := r.root.NewUnitOfWork(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback()
	}()

	if err := fn(uow.Products()); err != nil {
		return err
	}
	return uow.Commit()
}

// Save inserts a new product or updates an existing one.
func (r *ProductRepo) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	if !p.Persisted() {
		query := `INSERT INTO products (name, price) VALUES ($1, $2) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, query, p.Name, p.Price).Scan(&p.ID); err != nil {
			return domain.Product{}, fmt.Errorf("failed to insert product: %w", err)
		}
		return p, nil
	}

	query := `
		UPDATE products
		SET name = :name, price = :price, updated_at = now()
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	if n == 0 {
		return domain.Product{}, fmt.Errorf("update product %d: %w", p.ID, storage.ErrProductNotFound)
	}
	return p, nil
}

// FindByID retrieves a product by ID.
func (r *ProductRepo) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	query := `SELECT id, name, price FROM products WHERE id = $1`
	if r.lock {
		query += ` FOR UPDATE`
	}
	var p domain.Product
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, storage.ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// DeleteByID deletes a product by ID.
func (r *ProductRepo) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// FindAll retrieves one page of products ordered by ID.
func (r *ProductRepo) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT count(*) FROM products`); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := page.Offset()
	if offset >= total {
		return []domain.Product{}, total, nil
	}

	products := make([]domain.Product, 0, min(int64(page.Size), total-offset))
	query := `SELECT id, name, price FROM products ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &products, query, page.Size, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}
