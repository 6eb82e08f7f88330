// Package config loads zombograph configuration from defaults, an optional
// YAML file and ZOMBOGRAPH_* environment variables, in that order.
//
// # Overview
//
// Every setting has a default. A YAML file can override any subset, and the
// environment overrides both. The merged result is validated before use.
//
// # Configuration Structure
//
// Database settings:
//
//	ZOMBOGRAPH_DATABASE_URL="postgres://localhost/shop?sslmode=disable"
//	ZOMBOGRAPH_DATABASE_MAX_OPEN_CONNS="10"
//
// Schema settings:
//
//	ZOMBOGRAPH_SCHEMAS="public,catalog"
//	ZOMBOGRAPH_SEARCH_INPUT_FIELD="search"
//	ZOMBOGRAPH_SCORE_FIELD="_score"
//	ZOMBOGRAPH_SIMPLE_COLLECTIONS="omit"  # omit, only, both
//	ZOMBOGRAPH_EXCLUDED_TABLES="public.audit_log"
//	ZOMBOGRAPH_EXCLUDED_INDEXES="idx_products_legacy"
//	ZOMBOGRAPH_CACHE_TTL="5m"
//
// Server and rebuild settings:
//
//	ZOMBOGRAPH_HOST="0.0.0.0"
//	ZOMBOGRAPH_PORT="5678"
//	ZOMBOGRAPH_WATCH_SCHEDULE="*/10 * * * *"
//	ZOMBOGRAPH_RELOAD_ON_CHANGE="true"
//
// Observability settings:
//
//	ZOMBOGRAPH_LOG_LEVEL="info"  # debug, info, warn, error
//	ZOMBOGRAPH_LOG_FORMAT="json"
//	ZOMBOGRAPH_METRICS_ENABLED="true"
//	ZOMBOGRAPH_OTEL_ENABLED="true"
//	ZOMBOGRAPH_OTEL_ENDPOINT="otel-collector:4317"
//	ZOMBOGRAPH_OTEL_SAMPLE_RATIO="0.1"
//
// Smart tag overrides only exist in the YAML file:
//
//	schema:
//	  tags:
//	    classes:
//	      public.products:
//	        name: item
//
// # Usage Example
//
//	cfg, err := config.Load("zombograph.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	snapshot = snapshot.ApplyTagOverrides(cfg.TagOverrides())
//
// # Related Packages
//
//   - pkg/introspection: Applies tag overrides
//   - pkg/observability: Uses observability configuration
package config
