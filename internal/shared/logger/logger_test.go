package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l := New(nil)
		assert.NotNil(t, l)
		assert.NotNil(t, l.Logger)
	})

	t.Run("creates with custom config", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{
			Level:  "debug",
			Format: "json",
			Output: buf,
		})
		require.NotNil(t, l)

		l.Info("test message")
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("creates text format logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{
			Level:  "info",
			Format: "text",
			Output: buf,
		})

		l.Info("test message")
		output := buf.String()
		assert.Contains(t, output, "test message")
		// Text format should not be JSON
		assert.False(t, strings.HasPrefix(output, "{"))
	})
}

func TestLogger_Levels(t *testing.T) {
	t.Run("respects configured level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "warn", Format: "json", Output: buf})

		l.Info("filtered")
		assert.Empty(t, buf.String())

		l.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "loud", Format: "json", Output: buf})

		l.Debug("filtered")
		assert.Empty(t, buf.String())

		l.Info("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "json", Output: buf})

		ctx := ContextWithLogger(context.Background(), l)
		FromContext(ctx).Info("from context")
		assert.Contains(t, buf.String(), "from context")
	})

	t.Run("returns default when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestNewZapLogger(t *testing.T) {
	log, err := NewZapLogger(&Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	log, err = NewZapLogger(nil)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
