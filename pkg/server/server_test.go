package server

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/zombograph/pkg/config"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/introspection/introspectiontest"
)

// fixtureSource serves a fresh fixture snapshot per load
type fixtureSource struct {
	snapshot func() *introspection.Result
	err      error
	panics   bool
	loads    atomic.Int32
}

func (f *fixtureSource) Load(ctx context.Context, schemas []string) (*introspection.Result, error) {
	f.loads.Add(1)
	if f.panics {
		panic("catalog read exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot(), nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.URL = "postgres://localhost/test"
	cfg.Schema.Schemas = []string{"zombodb_test"}
	return cfg
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(t *testing.T, cfg *config.Config, source *fixtureSource) (*Server, sqlmock.Sqlmock, *prometheus.Registry) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := prometheus.NewRegistry()
	return New(cfg, db, Options{
		Source:   source,
		Registry: registry,
		Version:  "test",
		Logger:   quietLogger(),
	}), mock, registry
}

func TestRebuild(t *testing.T) {
	source := &fixtureSource{snapshot: introspectiontest.Countries}
	s, _, _ := newTestServer(t, testConfig(), source)

	assert.Nil(t, s.Live())
	assert.Empty(t, s.BuildID())

	require.NoError(t, s.Rebuild(context.Background()))
	live := s.Live()
	require.NotNil(t, live)
	assert.Equal(t, live.ID, s.BuildID())
	assert.Contains(t, live.SDL, "input SearchQuery")
	assert.Contains(t, live.SDL, "_score: Float")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.BuildsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.SearchableTables))

	t.Run("cached snapshot reused", func(t *testing.T) {
		require.NoError(t, s.Rebuild(context.Background()))
		assert.Equal(t, int32(1), source.loads.Load())
		assert.NotEqual(t, live.ID, s.BuildID())
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.IntrospectionCacheHits))
	})

	t.Run("refresh re-reads the catalogs", func(t *testing.T) {
		require.NoError(t, s.Refresh(context.Background()))
		assert.Equal(t, int32(2), source.loads.Load())
	})
}

func TestRebuild_FailureKeepsPreviousGeneration(t *testing.T) {
	source := &fixtureSource{snapshot: introspectiontest.Countries}
	s, _, _ := newTestServer(t, testConfig(), source)
	require.NoError(t, s.Rebuild(context.Background()))
	previous := s.BuildID()

	source.err = errors.New("connection reset")
	err := s.Refresh(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to introspect database")
	assert.Equal(t, previous, s.BuildID())
}

func TestRebuild_PanicKeepsPreviousGeneration(t *testing.T) {
	source := &fixtureSource{snapshot: introspectiontest.Countries}
	s, _, _ := newTestServer(t, testConfig(), source)
	require.NoError(t, s.Rebuild(context.Background()))
	live := s.Live()

	source.panics = true
	err := s.Refresh(context.Background())
	require.EqualError(t, err, "panic: catalog read exploded")
	assert.Same(t, live, s.Live())
}

func TestRebuild_ConfiguredNames(t *testing.T) {
	cfg := testConfig()
	cfg.Schema.SearchInputField = "fullText"
	cfg.Schema.ScoreField = "relevance"
	s, _, _ := newTestServer(t, cfg, &fixtureSource{snapshot: introspectiontest.Countries})

	require.NoError(t, s.Rebuild(context.Background()))

	sdl := s.Live().SDL
	assert.Contains(t, sdl, "fullText: SearchQuery")
	assert.Contains(t, sdl, "relevance: Float")
	assert.Contains(t, sdl, "RELEVANCE_DESC")
}

func TestRebuild_ExcludedTable(t *testing.T) {
	cfg := testConfig()
	cfg.Schema.ExcludedTables = []string{"zombodb_test.country"}
	s, _, _ := newTestServer(t, cfg, &fixtureSource{snapshot: introspectiontest.Countries})

	require.NoError(t, s.Rebuild(context.Background()))

	sdl := s.Live().SDL
	assert.Contains(t, sdl, "allCountries")
	assert.NotContains(t, sdl, "SearchQuery")
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.SearchableTables))
}

func TestNew_WithoutRegistry(t *testing.T) {
	s := New(testConfig(), (*sql.DB)(nil), Options{
		Source: &fixtureSource{snapshot: introspectiontest.Countries},
		Logger: quietLogger(),
	})
	assert.Nil(t, s.metrics)
	require.NoError(t, s.Rebuild(context.Background()))
	assert.NotEmpty(t, s.BuildID())
}
