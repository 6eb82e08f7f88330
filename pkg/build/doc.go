// Package build runs the phase pipeline that turns an introspection
// snapshot into a schema.
//
// # Overview
//
// Plugins register one handler per phase. The phases always run in this
// order:
//
//	inflection     naming rules (Inflector)
//	build          shared build state (State)
//	init           named type registration
//	field:args     arguments of every object field
//	object:fields  fields of every object type
//	enum:values    values of every enum type
//
// State is immutable and append-only. A build hook receives the current
// state and returns a new one created with WithValue; a key can be defined
// once per build. Per-type hooks receive a list and return a new list, and
// use Extend so name overrides are logged as build notices.
//
// # Usage Example
//
//	b := build.NewBuilder(logger)
//	if err := b.Use(tables.NewPlugin(tables.Options{}), zombodb.NewPlugin(zombodb.Options{})); err != nil {
//		return err
//	}
//	res, err := b.Build(ctx, snapshot)
//
// # Related Packages
//
//   - pkg/introspection: Provides the snapshot every build starts from
//   - pkg/schema: Types produced by the pipeline
//   - pkg/tables: Core table generator plugin
//   - pkg/zombodb: Full-text search plugin
package build
