package storage

import (
	"context"
	"time"

	"github.com/easystream/server/internal/shared/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Verifier probes object existence through a circuit breaker. The probe is a
// live HEAD request against the store, so a flapping provider must not take
// every reconciliation down with it.
type Verifier struct {
	prober  Prober
	breaker *gobreaker.CircuitBreaker[bool]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewVerifier creates a new verifier.
func NewVerifier(prober Prober, logger *zap.Logger, m *metrics.Metrics) *Verifier {
	settings := gobreaker.Settings{
		Name:        "storage-existence-probe",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Verifier{
		prober:  prober,
		breaker: gobreaker.NewCircuitBreaker[bool](settings),
		logger:  logger,
		metrics: m,
	}
}

// Exists reports whether the object is durably stored. When the breaker is
// open the probe degrades to optimistic binding rather than failing the
// request.
func (v *Verifier) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := v.breaker.Execute(func() (bool, error) {
		return v.prober.ObjectExists(ctx, key)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			v.logger.Warn("storage probe breaker open, skipping verification",
				zap.String("object_key", key))
			v.record("skipped")
			return true, nil
		}
		v.record("error")
		return false, err
	}

	if exists {
		v.record("hit")
	} else {
		v.record("miss")
	}
	return exists, nil
}

func (v *Verifier) record(result string) {
	if v.metrics != nil {
		v.metrics.StorageProbesTotal.WithLabelValues(result).Inc()
	}
}
