package catalog

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/vietddude/catalog/internal/core/resilience"
	"github.com/vietddude/catalog/internal/infra/storage"
)

// TransientFunc reports whether a raw store error is likely temporary.
type TransientFunc func(error) bool

// isTransientStoreError covers failures every store can produce.
func isTransientStoreError(err error) bool {
	if errors.Is(err, storage.ErrUnavailable) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classify marks transient store errors so the retry policy picks them up.
func (s *Service) classify(err error) error {
	if err == nil || resilience.IsTransient(err) {
		return err
	}
	if isTransientStoreError(err) {
		return resilience.Transient(err)
	}
	for _, fn := range s.transient {
		if fn(err) {
			return resilience.Transient(err)
		}
	}
	return err
}

// inUnitOfWork runs fn atomically when the repository supports transactions.
func (s *Service) inUnitOfWork(ctx context.Context, fn func(repo storage.ProductRepository) error) error {
	if tx, ok := s.repo.(storage.Transactor); ok {
		return tx.WithinTx(ctx, fn)
	}
	return fn(s.repo)
}
