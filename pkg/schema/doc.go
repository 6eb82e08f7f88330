// Package schema describes the generated query API: named types, ordered
// field, argument and enum value lists, and the scope metadata generators
// attach to them.
//
// # Overview
//
// Types are collected into a Registry while a build runs and frozen into a
// Schema at the end. Ordered lists are values: List.With returns a new list
// and reports names it replaced, which lets build hooks extend a type
// without mutating the list they were handed.
//
// # Usage Example
//
//	fields, collisions := obj.Fields.With(&schema.Field{
//		Name: "_score",
//		Type: schema.Named(schema.ScalarFloat),
//	})
//	if len(collisions) > 0 {
//		log.WithField("fields", collisions).Info("Overriding existing fields")
//	}
//
//	sdl := schema.PrintSDL(s)
//
// # Related Packages
//
//   - pkg/build: Runs the phases that populate a Registry
//   - pkg/execute: Coerces arguments and resolves fields against a Schema
package schema
