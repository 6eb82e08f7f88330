package query

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/zombograph/pkg/pgsql"
)

// AliasProvider exposes the alias the current table is bound to
type AliasProvider interface {
	TableAlias() pgsql.Fragment
}

// SelectionRegistrar registers an additional output expression
type SelectionRegistrar interface {
	AliasProvider
	Select(expr pgsql.Fragment, alias string)
}

// PredicateRegistrar registers an additional filter predicate. Predicates
// are combined with AND.
type PredicateRegistrar interface {
	AliasProvider
	Where(expr pgsql.Fragment)
}

// OrderRegistrar registers an additional sort key. Keys apply in
// registration order.
type OrderRegistrar interface {
	AliasProvider
	OrderBy(expr pgsql.Fragment, ascending bool)
}

// Target is everything a data generator may contribute to
type Target interface {
	SelectionRegistrar
	PredicateRegistrar
	OrderRegistrar
}

// Contribution is what a data generator adds to the query being built.
// DontUseAsterisk forces explicit column selection instead of alias.*.
type Contribution struct {
	DontUseAsterisk bool
	Apply           func(t Target) error
}

type selection struct {
	expr  pgsql.Fragment
	alias string
}

type ordering struct {
	expr      pgsql.Fragment
	ascending bool
}

// Builder assembles a single-table SELECT. It is used for one query
// compilation and is not safe for concurrent use.
type Builder struct {
	table           pgsql.Fragment
	alias           string
	selects         []selection
	wheres          []pgsql.Fragment
	orders          []ordering
	limit           *int
	offset          *int
	useAsterisk     bool
	dontUseAsterisk bool
}

// NewBuilder creates a builder over table bound to alias
func NewBuilder(table pgsql.Fragment, alias string) *Builder {
	return &Builder{
		table: table,
		alias: alias,
	}
}

// TableAlias returns the quoted table alias
func (b *Builder) TableAlias() pgsql.Fragment {
	return pgsql.Identifier(b.alias)
}

// Alias returns the raw alias name
func (b *Builder) Alias() string {
	return b.alias
}

// Select adds an output expression under alias; a repeated alias replaces
// the earlier expression
func (b *Builder) Select(expr pgsql.Fragment, alias string) {
	for i, s := range b.selects {
		if s.alias == alias {
			b.selects[i].expr = expr
			return
		}
	}
	b.selects = append(b.selects, selection{expr: expr, alias: alias})
}

// SelectColumn selects a column of the current table under alias
func (b *Builder) SelectColumn(column, alias string) {
	b.Select(pgsql.Identifier(b.alias, column), alias)
}

// Where adds a predicate
func (b *Builder) Where(expr pgsql.Fragment) {
	if expr.IsEmpty() {
		return
	}
	b.wheres = append(b.wheres, expr)
}

// OrderBy appends a sort key
func (b *Builder) OrderBy(expr pgsql.Fragment, ascending bool) {
	b.orders = append(b.orders, ordering{expr: expr, ascending: ascending})
}

// HasOrder reports whether any sort key has been registered
func (b *Builder) HasOrder() bool {
	return len(b.orders) > 0
}

// Limit caps the number of returned rows
func (b *Builder) Limit(n int) {
	b.limit = &n
}

// Offset skips rows
func (b *Builder) Offset(n int) {
	b.offset = &n
}

// UseAsterisk selects alias.* in addition to explicit selections, unless a
// contribution opted out
func (b *Builder) UseAsterisk(use bool) {
	b.useAsterisk = use
}

// Apply folds a contribution into the builder
func (b *Builder) Apply(c *Contribution) error {
	if c == nil {
		return nil
	}
	if c.DontUseAsterisk {
		b.dontUseAsterisk = true
	}
	if c.Apply == nil {
		return nil
	}
	return c.Apply(b)
}

// Compile renders the SELECT statement and its arguments
func (b *Builder) Compile() (string, []interface{}) {
	cols := make([]pgsql.Fragment, 0, len(b.selects)+1)
	if b.useAsterisk && !b.dontUseAsterisk {
		cols = append(cols, pgsql.Sprintf("%s.*", b.TableAlias()))
	}
	for i, s := range b.selects {
		cols = append(cols, pgsql.Sprintf("%s AS %s", s.expr, pgsql.Identifier(b.outputName(i))))
	}
	if len(cols) == 0 {
		cols = append(cols, pgsql.Raw("1"))
	}

	parts := []pgsql.Fragment{
		pgsql.Sprintf("SELECT %s FROM %s AS %s",
			pgsql.Join(cols, ", "), b.table, b.TableAlias()),
	}
	if where := b.whereClause(); !where.IsEmpty() {
		parts = append(parts, where)
	}
	if len(b.orders) > 0 {
		keys := make([]pgsql.Fragment, len(b.orders))
		for i, o := range b.orders {
			dir := "DESC"
			if o.ascending {
				dir = "ASC"
			}
			keys[i] = pgsql.Sprintf("%s "+dir, o.expr)
		}
		parts = append(parts, pgsql.Sprintf("ORDER BY %s", pgsql.Join(keys, ", ")))
	}
	if b.limit != nil {
		parts = append(parts, pgsql.Sprintf("LIMIT %s", pgsql.Value(*b.limit)))
	}
	if b.offset != nil {
		parts = append(parts, pgsql.Sprintf("OFFSET %s", pgsql.Value(*b.offset)))
	}

	return pgsql.Compile(pgsql.Join(parts, " "))
}

// outputName is the column name of selection i in the compiled statement.
// Aliases PostgreSQL would truncate are replaced by a positional name.
func (b *Builder) outputName(i int) string {
	alias := b.selects[i].alias
	if len(alias) <= pgsql.MaxIdentifierLength {
		return alias
	}
	return fmt.Sprintf("__col_%d__", i)
}

// ColumnKey maps a result column name back to the alias it was selected
// under. Columns not selected explicitly, such as those read through
// alias.*, keep their name.
func (b *Builder) ColumnKey(column string) string {
	for i, s := range b.selects {
		if b.outputName(i) == column {
			return s.alias
		}
	}
	return column
}

// CompileCount renders a COUNT(*) over the same table and predicates,
// ignoring ordering and pagination
func (b *Builder) CompileCount() (string, []interface{}) {
	parts := []pgsql.Fragment{
		pgsql.Sprintf("SELECT COUNT(*) FROM %s AS %s", b.table, b.TableAlias()),
	}
	if where := b.whereClause(); !where.IsEmpty() {
		parts = append(parts, where)
	}
	return pgsql.Compile(pgsql.Join(parts, " "))
}

func (b *Builder) whereClause() pgsql.Fragment {
	if len(b.wheres) == 0 {
		return pgsql.Fragment{}
	}
	conds := make([]pgsql.Fragment, len(b.wheres))
	for i, w := range b.wheres {
		conds[i] = pgsql.Sprintf("(%s)", w)
	}
	return pgsql.Sprintf("WHERE %s", pgsql.Join(conds, " AND "))
}

// String renders the statement for logs
func (b *Builder) String() string {
	text, args := b.Compile()
	return fmt.Sprintf("%s %v", strings.TrimSpace(text), args)
}
