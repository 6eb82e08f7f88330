// Package zombodb adds full-text search backed by ZomboDB indexes to the
// generated query API.
//
// # Overview
//
// A table is searchable when the zombodb extension is installed, the table
// is readable and it carries an index using the zombodb access method that
// is not excluded with an "@omit zombodb" or "@omit read" smart tag. For
// every searchable table the plugin adds:
//
//   - a search argument on its collection fields, typed
//     SearchQuery { query: String!, minScore: Float }
//   - a _score field on its row type
//   - _SCORE_ASC and _SCORE_DESC values on its sort enum
//
// Tables without a search index are left exactly as the table generator
// built them.
//
// # Usage Example
//
//	b := build.NewBuilder(logger)
//	err := b.Use(
//		tables.NewPlugin(tables.Options{Schemas: []string{"public"}}, logger),
//		zombodb.NewPlugin(zombodb.Options{ScoreField: "_score"}, logger),
//	)
//
// A search request lowers to a predicate on the native match operator:
//
//	"__local_0__" ==> $1
//	"__local_0__" ==> dsl.min_score($1, $2)
//
// and the score is read with zdb.score("__local_0__".ctid).
//
// # Related Packages
//
//   - pkg/build: Phase pipeline the plugin hooks into
//   - pkg/tables: Generates the collections and sort enums this plugin extends
//   - pkg/execute: Runs the lowered queries
package zombodb
