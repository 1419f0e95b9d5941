package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPage is wrapped by page request validation failures.
var ErrInvalidPage = errors.New("invalid page request")

// PageRequest selects a zero-indexed page of Size items.
type PageRequest struct {
	Index int
	Size  int
}

// Validate checks Index >= 0 and Size > 0.
func (r PageRequest) Validate() error {
	if r.Index < 0 {
		return fmt.Errorf("%w: page must be >= 0, got %d", ErrInvalidPage, r.Index)
	}
	if r.Size <= 0 {
		return fmt.Errorf("%w: size must be > 0, got %d", ErrInvalidPage, r.Size)
	}
	return nil
}

// Offset returns the number of items preceding the page. It saturates at
// math.MaxInt64 instead of wrapping, so a huge Index or Size lands past the end.
func (r PageRequest) Offset() int64 {
	if r.Index <= 0 || r.Size <= 0 {
		return 0
	}
	index, size := int64(r.Index), int64(r.Size)
	if index > math.MaxInt64/size {
		return math.MaxInt64
	}
	return index * size
}

// Window returns the half-open range [start, end) of the page within total
// items. ok is false when the page lies past the end.
func (r PageRequest) Window(total int) (start, end int, ok bool) {
	offset := r.Offset()
	if offset >= int64(total) {
		return 0, 0, false
	}
	start = int(offset)
	end = start + min(r.Size, total-start)
	return start, end, true
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Items []T
	Total int64
	Index int
	Size  int
}

// TotalPages returns how many pages of Size cover Total.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 || p.Total <= 0 {
		return 0
	}
	return int((p.Total-1)/int64(p.Size) + 1)
}
