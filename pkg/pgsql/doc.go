// Package pgsql provides composable PostgreSQL query fragments.
//
// # Overview
//
// A Fragment is an immutable piece of SQL made of literal text, quoted
// identifiers and bound values. Fragments nest freely and are only turned
// into a statement with numbered placeholders when compiled, so a fragment
// built by one component can be embedded in a query assembled by another.
//
// # Usage Example
//
//	alias := pgsql.Identifier("__local_0__")
//	where := pgsql.Sprintf("%s ==> %s", alias, pgsql.Value("sports box"))
//
//	text, args := pgsql.Compile(where)
//	// text: "__local_0__" ==> $1
//	// args: []any{"sports box"}
//
// # Related Packages
//
//   - pkg/query: Assembles fragments into SELECT statements
//   - pkg/zombodb: Lowers search requests into fragments
package pgsql
