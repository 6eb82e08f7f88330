// Package cli provides the zombograph command-line interface.
//
// # Overview
//
// The zombograph binary introspects a PostgreSQL database, builds a query
// API from its tables and adds full-text search to every table that has a
// zombodb index. The same configuration drives all commands.
//
// # Commands
//
// serve: Serve the query API over HTTP and rebuild it on a schedule or when
// the config file changes
//
//	zombograph serve -config zombograph.yaml
//
// schema: Build the schema once and print it
//
//	zombograph schema -db postgres://localhost/app -out schema.graphql
//
// tables: List tables and the zombodb index used for each
//
//	zombograph tables -config zombograph.yaml
//
// version: Print the version
//
//	zombograph version
//
// # Common Flags
//
//	-config     Path to the YAML config file (default $ZOMBOGRAPH_CONFIG)
//	-db         Database URL, overriding the config
//	-log-level  Log level, overriding the config
//
// Logs go to stderr so the output of schema and tables can be piped.
//
// # Related Packages
//
//   - pkg/config: Configuration loading
//   - pkg/server: HTTP server and rebuild triggers
//   - pkg/zombodb: Search plugin
package cli
