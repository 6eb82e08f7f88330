// Package tables is the core table generator. It exposes every readable
// table as a row type with a connection, a sort enum and an equality
// condition input, plus a root query field per table and backward relation
// collections on referenced row types.
//
// Smart tags on database comments adjust the output: @omit read hides a
// table or column, @omit order keeps a column out of the sort enum and
// @omit filter keeps it out of the condition input.
package tables
