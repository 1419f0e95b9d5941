package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/infra/storage"
)

func TestProductRepo_SaveAssignsID(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()

	first, err := repo.Save(ctx, domain.Product{Name: "Widget", Price: 9.99})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := repo.Save(ctx, domain.Product{Name: "Gadget", Price: 1})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("Expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}

	got, err := repo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != first {
		t.Errorf("Expected %+v, got %+v", first, got)
	}
}

func TestProductRepo_UpdateMissing(t *testing.T) {
	repo := NewProductRepo()

	_, err := repo.Save(context.Background(), domain.Product{ID: 42, Name: "Ghost"})
	if !errors.Is(err, storage.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepo_FindByIDMissing(t *testing.T) {
	repo := NewProductRepo()

	_, err := repo.FindByID(context.Background(), 1)
	if !errors.Is(err, storage.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepo_Delete(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	p, _ := repo.Save(ctx, domain.Product{Name: "Widget"})

	if err := repo.DeleteByID(ctx, p.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if err := repo.DeleteByID(ctx, p.ID); err != nil {
		t.Errorf("Expected deleting missing product to succeed, got %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, storage.ErrProductNotFound) {
		t.Errorf("Expected product to be gone, got %v", err)
	}
}

func TestProductRepo_FindAllPages(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	for i := range 25 {
		_, _ = repo.Save(ctx, domain.Product{Name: fmt.Sprintf("p%d", i)})
	}

	tests := []struct {
		page    domain.PageRequest
		wantLen int
		firstID int64
	}{
		{domain.PageRequest{Index: 0, Size: 10}, 10, 1},
		{domain.PageRequest{Index: 2, Size: 10}, 5, 21},
		{domain.PageRequest{Index: 3, Size: 10}, 0, 0},
	}
	for _, tt := range tests {
		items, total, err := repo.FindAll(ctx, tt.page)
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		if total != 25 {
			t.Errorf("Expected total 25, got %d", total)
		}
		if items == nil {
			t.Errorf("Expected empty slice, got nil")
		}
		if len(items) != tt.wantLen {
			t.Errorf("Page %d: expected %d items, got %d", tt.page.Index, tt.wantLen, len(items))
		}
		if tt.wantLen > 0 && items[0].ID != tt.firstID {
			t.Errorf("Page %d: expected first ID %d, got %d", tt.page.Index, tt.firstID, items[0].ID)
		}
	}
}

func TestProductRepo_FindAllPastIntLimit(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()
	for i := range 5 {
		_, _ = repo.Save(ctx, domain.Product{Name: fmt.Sprintf("p%d", i)})
	}

	tests := []struct {
		name    string
		page    domain.PageRequest
		wantLen int
	}{
		{"huge index", domain.PageRequest{Index: math.MaxInt/2 + 1, Size: 10}, 0},
		{"huge size", domain.PageRequest{Index: 1, Size: 1 << 62}, 0},
		{"product at int limit", domain.PageRequest{Index: math.MaxInt / 5, Size: 5}, 0},
		{"max size first page", domain.PageRequest{Index: 0, Size: math.MaxInt}, 5},
		{"max index", domain.PageRequest{Index: math.MaxInt, Size: math.MaxInt}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.FindAll(ctx, tt.page)
			if err != nil {
				t.Fatalf("FindAll failed: %v", err)
			}
			if total != 5 {
				t.Errorf("Expected total 5, got %d", total)
			}
			if items == nil {
				t.Errorf("Expected empty slice, got nil")
			}
			if len(items) != tt.wantLen {
				t.Errorf("Expected %d items, got %d", tt.wantLen, len(items))
			}
		})
	}
}

func TestProductRepo_ConcurrentSaves(t *testing.T) {
	repo := NewProductRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Save(ctx, domain.Product{Name: fmt.Sprintf("p%d", i)})
		}()
	}
	wg.Wait()

	_, total, _ := repo.FindAll(ctx, domain.PageRequest{Index: 0, Size: 1})
	if total != 50 {
		t.Errorf("Expected 50 products, got %d", total)
	}
}
