package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, closeFn, err := New(Config{Level: "warn", File: path})
	require.NoError(t, err)

	l.Info().Msg("dropped")
	l.Warn().Str("employee_id", "emp-1").Msg("kept")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(b)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"employee_id":"emp-1"`)
	assert.Contains(t, out, `"service":"employee-management"`)
	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel())
}

func TestFrom_UsesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithContext(context.Background(), build(&buf, zerolog.DebugLevel))

	From(ctx).Debug().Msg("from context")
	assert.True(t, strings.Contains(buf.String(), "from context"))
}

func TestFrom_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	got := From(context.Background())
	assert.Same(t, &log.Logger, got)
}
