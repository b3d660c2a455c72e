package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProber struct {
	exists bool
	err    error
	calls  int
}

func (s *stubProber) ObjectExists(_ context.Context, _ string) (bool, error) {
	s.calls++
	return s.exists, s.err
}

func TestVerifier_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("reports stored object", func(t *testing.T) {
		prober := &stubProber{exists: true}
		v := NewVerifier(prober, zap.NewNop(), nil)

		exists, err := v.Exists(ctx, "products/a.jpg")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("reports missing object", func(t *testing.T) {
		prober := &stubProber{exists: false}
		v := NewVerifier(prober, zap.NewNop(), nil)

		exists, err := v.Exists(ctx, "products/a.jpg")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("propagates probe errors while breaker is closed", func(t *testing.T) {
		prober := &stubProber{err: errors.New("timeout")}
		v := NewVerifier(prober, zap.NewNop(), nil)

		_, err := v.Exists(ctx, "products/a.jpg")
		assert.Error(t, err)
	})

	t.Run("open breaker degrades to optimistic binding", func(t *testing.T) {
		prober := &stubProber{err: errors.New("timeout")}
		v := NewVerifier(prober, zap.NewNop(), nil)

		// Trip the breaker with consecutive failures.
		for i := 0; i < 5; i++ {
			_, err := v.Exists(ctx, "products/a.jpg")
			require.Error(t, err)
		}

		probesBefore := prober.calls
		exists, err := v.Exists(ctx, "products/a.jpg")
		require.NoError(t, err)
		assert.True(t, exists, "binding proceeds optimistically while the store is down")
		assert.Equal(t, probesBefore, prober.calls, "no probe while the breaker is open")
	})
}
