package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/catalog/internal/core/resilience"
)

func TestHooks_RecordIntoCollectors(t *testing.T) {
	h := Hooks()

	before := testutil.ToFloat64(OperationAttempts.WithLabelValues("metrics_test"))
	h.OnAttempt("metrics_test", 1)
	h.OnAttempt("metrics_test", 2)
	if got := testutil.ToFloat64(OperationAttempts.WithLabelValues("metrics_test")) - before; got != 2 {
		t.Errorf("Expected 2 attempts recorded, got %v", got)
	}

	h.OnRetry("metrics_test", 1, resilience.ErrTimeout)
	if got := testutil.ToFloat64(OperationRetries.WithLabelValues("metrics_test", "timeout")); got < 1 {
		t.Errorf("Expected timeout retry recorded, got %v", got)
	}

	h.OnPoolBusy(3)
	if got := testutil.ToFloat64(WorkerPoolInFlight); got != 3 {
		t.Errorf("Expected in-flight gauge 3, got %v", got)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{resilience.ErrTimeout, "timeout"},
		{resilience.Transient(errors.New("reset")), "transient"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := errorType(tt.err); got != tt.want {
			t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
