// Package server serves the generated schema over HTTP and keeps it in step
// with the database.
//
// # Overview
//
// A Server owns the live Generation: the built schema, its SDL and the
// executor bound to it. Rebuild introspects the configured schemas through
// a TTL cache, runs the table and search plugins and swaps the result in
// atomically. A failed rebuild keeps the previous generation.
//
// Rebuilds are triggered by POST /rebuild, by the cron schedule in the
// watch settings, and by edits to the config file when reload on change is
// enabled.
//
// # Usage Example
//
//	srv := server.New(cfg, db, server.Options{
//		Registry: prometheus.NewRegistry(),
//		Version:  version,
//		Logger:   logger,
//	})
//	if err := srv.Serve(ctx); err != nil {
//		logger.Fatal(err)
//	}
//
// Query the API:
//
//	curl -X POST localhost:5678/query -H 'Content-Type: application/json' -d '{
//	  "selections": [{
//	    "name": "allProducts",
//	    "args": {"search": {"query": "sports box", "minScore": 0}, "orderBy": ["_SCORE_DESC"]},
//	    "selections": [{"name": "nodes", "selections": [{"name": "name"}, {"name": "_score"}]}]
//	  }]
//	}'
//
// # Related Packages
//
//   - pkg/build: Plugin pipeline
//   - pkg/execute: Query planning and execution
//   - pkg/observability: Metrics, health and tracing
package server
