package server

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/config"
	"github.com/platinummonkey/zombograph/pkg/execute"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/observability"
	"github.com/platinummonkey/zombograph/pkg/schema"
	"github.com/platinummonkey/zombograph/pkg/tables"
	"github.com/platinummonkey/zombograph/pkg/zombodb"
)

// Options configures a Server
type Options struct {
	// Source reads introspection snapshots; defaults to a catalog loader on db
	Source introspection.Source
	// Registry receives the Prometheus metrics; nil disables them
	Registry *prometheus.Registry
	// Version is reported by the health endpoints
	Version string
	Logger  *logrus.Logger
}

// Generation is one successfully built schema and the executor serving it
type Generation struct {
	ID       string
	Schema   *schema.Schema
	Executor *execute.Executor
	SDL      string
	Notices  []build.Notice
	BuiltAt  time.Time
	Duration time.Duration
}

// Server owns the live schema generation. Rebuilds produce a new
// generation and swap it in atomically; requests in flight keep the one
// they started with.
type Server struct {
	db       *sql.DB
	loader   *introspection.CachedLoader
	metrics  *observability.Metrics
	registry *prometheus.Registry
	version  string
	log      *logrus.Logger

	mu  sync.RWMutex
	cfg *config.Config

	live     atomic.Pointer[Generation]
	rebuilds singleflight.Group
}

// New creates a server. No schema is served until the first Rebuild.
func New(cfg *config.Config, db *sql.DB, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	source := opts.Source
	if source == nil {
		source = introspection.NewLoader(db, log)
	}

	s := &Server{
		db:       db,
		loader:   introspection.NewCachedLoader(source, cfg.Schema.CacheSize, cfg.Schema.CacheTTL, log),
		registry: opts.Registry,
		version:  opts.Version,
		log:      log,
		cfg:      cfg,
	}
	if opts.Registry != nil {
		s.metrics = observability.NewMetrics(opts.Registry)
	}
	return s
}

// Config returns the configuration the next rebuild will use
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) setConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Live returns the generation being served, or nil before the first build
func (s *Server) Live() *Generation {
	return s.live.Load()
}

// BuildID returns the id of the live generation
func (s *Server) BuildID() string {
	if g := s.Live(); g != nil {
		return g.ID
	}
	return ""
}

// Rebuild introspects the database and swaps in a new generation. A failed
// build leaves the previous generation in place. Concurrent calls share one
// build. A panic during the build is returned as an error.
func (s *Server) Rebuild(ctx context.Context) error {
	_, err, _ := s.rebuilds.Do("rebuild", func() (_ interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = observability.MustRecover(r)
			}
		}()
		return nil, s.rebuild(ctx)
	})
	return err
}

// Refresh drops cached snapshots and rebuilds
func (s *Server) Refresh(ctx context.Context) error {
	s.loader.Invalidate()
	return s.Rebuild(ctx)
}

func (s *Server) rebuild(ctx context.Context) error {
	cfg := s.Config()

	snapshot, err := s.loader.Load(ctx, cfg.Schema.Schemas)
	if s.metrics != nil {
		s.metrics.CacheStats(s.loader.Stats())
	}
	if err != nil {
		return fmt.Errorf("failed to introspect database: %w", err)
	}
	snapshot = snapshot.ApplyTagOverrides(cfg.TagOverrides())

	builder, err := NewBuilder(cfg, s.metrics, s.log)
	if err != nil {
		return err
	}
	res, err := builder.Build(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}

	s.live.Store(&Generation{
		ID:       res.ID,
		Schema:   res.Schema,
		Executor: execute.NewExecutor(s.db, res.Schema, s.log),
		SDL:      schema.PrintSDL(res.Schema),
		Notices:  res.Notices,
		BuiltAt:  time.Now(),
		Duration: res.Duration,
	})

	s.log.WithFields(logrus.Fields{
		"build_id": res.ID,
		"duration": res.Duration,
		"notices":  len(res.Notices),
	}).Info("Schema generation live")
	return nil
}

// NewBuilder registers the table and search plugins configured by cfg.
// Metrics, when not nil, observe builds and record search usage.
func NewBuilder(cfg *config.Config, metrics *observability.Metrics, log *logrus.Logger) (*build.Builder, error) {
	b := build.NewBuilder(log)

	searchOpts := zombodb.Options{
		SearchInputField: cfg.Schema.SearchInputField,
		ScoreField:       cfg.Schema.ScoreField,
	}
	if metrics != nil {
		b.SetObserver(metrics)
		searchOpts.Metrics = metrics
	}

	err := b.Use(
		tables.NewPlugin(tables.Options{
			Schemas:           cfg.Schema.Schemas,
			SimpleCollections: cfg.Schema.SimpleCollections,
		}, log),
		zombodb.NewPlugin(searchOpts, log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register plugins: %w", err)
	}
	return b, nil
}
