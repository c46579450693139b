package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/asksql/internal/catalog"
	"github.com/roach88/asksql/internal/registry"
	"github.com/roach88/asksql/internal/store"
	"github.com/roach88/asksql/internal/warehouse"
)

// BuiltinRegistry returns a registry over the embedded catalog with the
// default project and dataset.
func BuiltinRegistry(t testing.TB) *registry.Registry {
	t.Helper()
	cat, err := catalog.Builtin()
	require.NoError(t, err)
	return cat.Registry(catalog.DefaultConstants)
}

// SampleWarehouse opens an in-memory SQLite warehouse holding the sample
// tables under the default project and dataset.
func SampleWarehouse(t testing.TB) *warehouse.SQLite {
	t.Helper()
	wh, err := warehouse.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { wh.Close() })

	c := catalog.DefaultConstants
	require.NoError(t, wh.CreateSampleTables(context.Background(), c.Project, c.Dataset))
	return wh
}

// HistoryStore opens a history store in a temp directory.
func HistoryStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// ObservedLogger returns a logger that records entries at level and above.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}
