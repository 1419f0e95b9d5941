// Package catalog exposes the product operations. Every operation runs its store
// calls as one unit of work through the retry policy, the per-attempt timeout and
// the recovery handler.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/core/resilience"
	"github.com/vietddude/catalog/internal/infra/storage"
)

// ErrNotFound is returned when the requested product does not exist.
var ErrNotFound = storage.ErrProductNotFound

// Operation names used for logging and metrics.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
)

// Service orchestrates product operations.
type Service struct {
	repo      storage.ProductRepository
	policy    *resilience.Policy
	recovery  *resilience.RecoveryHandler
	transient []TransientFunc
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTransient adds a store-specific transient error check.
func WithTransient(fn TransientFunc) Option {
	return func(s *Service) { s.transient = append(s.transient, fn) }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a product service.
func NewService(
	repo storage.ProductRepository,
	policy *resilience.Policy,
	recovery *resilience.RecoveryHandler,
	opts ...Option,
) *Service {
	s := &Service{
		repo:     repo,
		policy:   policy,
		recovery: recovery,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new product and returns it with its assigned ID.
func (s *Service) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	p.ID = 0

	created, err := resilience.Do(ctx, s.policy, s.recovery, OpCreate, p,
		func(ctx context.Context) (domain.Product, error) {
			saved, err := s.repo.Save(ctx, p)
			return saved, s.classify(err)
		}, resilience.DefaultRetryable)
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("Product created", "id", created.ID, "name", created.Name)
	return created, nil
}

// Get returns the product with the given ID or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	s.log.Debug("Looking up product", "id", id)

	p, err := resilience.Do(ctx, s.policy, s.recovery, OpGet, id,
		func(ctx context.Context) (domain.Product, error) {
			p, err := s.repo.FindByID(ctx, id)
			return p, s.classify(err)
		}, resilience.DefaultRetryable)
	if errors.Is(err, storage.ErrProductNotFound) {
		s.log.Warn("Product not found", "id", id)
		return domain.Product{}, ErrNotFound
	}
	return p, err
}

// Update replaces the name and price of an existing product.
func (s *Service) Update(ctx context.Context, id int64, changes domain.Product) (domain.Product, error) {
	if err := changes.Validate(); err != nil {
		return domain.Product{}, err
	}

	updated, err := resilience.Do(ctx, s.policy, s.recovery, OpUpdate, id,
		func(ctx context.Context) (domain.Product, error) {
			var saved domain.Product
			err := s.inUnitOfWork(ctx, func(repo storage.ProductRepository) error {
				existing, err := repo.FindByID(ctx, id)
				if err != nil {
					return err
				}
				existing.Name = changes.Name
				existing.Price = changes.Price
				saved, err = repo.Save(ctx, existing)
				return err
			})
			return saved, s.classify(err)
		}, resilience.DefaultRetryable)
	if errors.Is(err, storage.ErrProductNotFound) {
		s.log.Warn("Product not found for update", "id", id)
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}

	s.log.Info("Product updated", "id", updated.ID, "name", updated.Name, "price", updated.Price)
	return updated, nil
}

// Delete removes a product. It returns false, without error, if it did not exist.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := resilience.Do(ctx, s.policy, s.recovery, OpDelete, id,
		func(ctx context.Context) (bool, error) {
			found := false
			err := s.inUnitOfWork(ctx, func(repo storage.ProductRepository) error {
				if _, err := repo.FindByID(ctx, id); err != nil {
					if errors.Is(err, storage.ErrProductNotFound) {
						return nil
					}
					return err
				}
				found = true
				return repo.DeleteByID(ctx, id)
			})
			if err != nil {
				return false, s.classify(err)
			}
			return found, nil
		}, resilience.DefaultRetryable)
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info("Product deleted", "id", id)
	} else {
		s.log.Warn("Product not found for delete", "id", id)
	}
	return deleted, nil
}

// List returns one page of products. Pages past the end are empty.
func (s *Service) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Product], error) {
	if err := req.Validate(); err != nil {
		return domain.Page[domain.Product]{}, err
	}

	page, err := resilience.Do(ctx, s.policy, s.recovery, OpList, req,
		func(ctx context.Context) (domain.Page[domain.Product], error) {
			items, total, err := s.repo.FindAll(ctx, req)
			if err != nil {
				return domain.Page[domain.Product]{}, s.classify(err)
			}
			if items == nil {
				items = []domain.Product{}
			}
			return domain.Page[domain.Product]{Items: items, Total: total, Index: req.Index, Size: req.Size}, nil
		}, resilience.DefaultRetryable)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}

	s.log.Info("Listed products", "page", req.Index, "size", req.Size, "total", page.Total)
	return page, nil
}
