package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

func TestForRun(t *testing.T) {
	t.Parallel()

	require.NotNil(t, ForRun(nil, "run-1"))
	logger, err := New(false)
	require.NoError(t, err)
	require.NotNil(t, ForRun(logger, "run-1"))
}
