package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/storage"
)

// ProductRepo is an in-memory storage.ProductRepository.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	nextID   int64
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[int64]domain.Product),
	}
}

func (r *ProductRepo) Save(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !p.Persisted() {
		r.nextID++
		p.ID = r.nextID
	} else if _, ok := r.products[p.ID]; !ok {
		return domain.Product{}, fmt.Errorf("update product %d: %w", p.ID, storage.ErrProductNotFound)
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, storage.ErrProductNotFound
	}
	return p, nil
}

func (r *ProductRepo) DeleteByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *ProductRepo) FindAll(ctx context.Context, page domain.PageRequest) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	start, end, ok := page.Window(len(ids))
	if !ok {
		return []domain.Product{}, total, nil
	}
	items := make([]domain.Product, 0, end-start)
	for _, id := range ids[start:end] {
		items = append(items, r.products[id])
	}
	return items, total, nil
}
