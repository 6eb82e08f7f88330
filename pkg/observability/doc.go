// Package observability provides structured logging, Prometheus metrics,
// health checks and OpenTelemetry tracing for the zombograph server.
//
// # Overview
//
// Logging goes through logrus with a text or JSON formatter. Metrics are
// registered on a caller supplied registry and double as the observer of
// schema builds and the recorder of search lowerings. Health checks probe
// the database and the live schema build.
//
// # Usage Example
//
//	logger := observability.NewLogger(observability.InfoLevel, observability.FormatJSON, os.Stdout)
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	builder := build.NewBuilder(logger)
//	builder.SetObserver(metrics)
//
//	router := mux.NewRouter()
//	observability.RegisterHealthRoutes(router, observability.NewHealthChecker(db, server, version))
//	router.Handle("/metrics", observability.MetricsHandler(registry))
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "zombograph",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/build: Build observer interface
//   - pkg/zombodb: Search recorder interface
package observability
