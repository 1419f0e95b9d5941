package storage

import (
	"context"
	"errors"

	"github.com/vietddude/catalog/internal/core/domain"
)

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")

	// ErrUnavailable is returned when the backing store cannot serve a request
	// right now.
	ErrUnavailable = errors.New("store unavailable")
)

// ProductRepository handles product storage operations. Implementations must be
// safe for concurrent use and do not retry on their own.
type ProductRepository interface {
	// Save inserts a product with a zero ID and assigns one, or updates an
	// existing product. It returns the stored copy.
	Save(ctx context.Context, product domain.Product) (domain.Product, error)

	// FindByID returns ErrProductNotFound when the product does not exist.
	FindByID(ctx context.Context, id int64) (domain.Product, error)

	// DeleteByID removes a product. Deleting a missing product is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// FindAll returns one page ordered by ID together with the total count.
	FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error)
}

// Transactor is implemented by repositories that can run several calls
// atomically. fn receives a repository bound to the transaction; returning an
// error rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo ProductRepository) error) error
}
