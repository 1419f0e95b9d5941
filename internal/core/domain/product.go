package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidProduct is wrapped by product validation failures.
var ErrInvalidProduct = errors.New("invalid product")

// Product is a catalog record. ID is zero until the product has been persisted.
type Product struct {
	ID    int64   `json:"id"    db:"id"`
	Name  string  `json:"name"  db:"name"`
	Price float64 `json:"price" db:"price"`
}

// Persisted reports whether the product has been assigned an identifier.
func (p Product) Persisted() bool {
	return p.ID != 0
}

// Validate checks the name and price invariants.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProduct)
	}
	return nil
}
