package execute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/zombograph/pkg/pgsql"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

var executeTracer = otel.Tracer("zombograph/execute")

var (
	// ErrUnknownField is wrapped by the validation error for a selection
	// naming a field its type does not define
	ErrUnknownField = errors.New("unknown field")
	// ErrNotCollection is returned when a root selection is not a
	// collection field
	ErrNotCollection = errors.New("field is not a collection")
)

// Querier is the subset of *sql.DB the executor needs
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Executor runs selections against one schema. It holds no per-request
// state and is safe for concurrent use.
type Executor struct {
	db     Querier
	schema *schema.Schema
	log    *logrus.Logger
}

// NewExecutor creates an executor over a built schema
func NewExecutor(db Querier, s *schema.Schema, log *logrus.Logger) *Executor {
	if log == nil {
		log = logrus.New()
	}
	return &Executor{
		db:     db,
		schema: s,
		log:    log,
	}
}

// Execute plans all root selections, then runs them in order. The result
// maps each response key to a connection object or a row list.
func (e *Executor) Execute(ctx context.Context, selections []Selection) (map[string]interface{}, error) {
	ctx, span := executeTracer.Start(ctx, "Execute",
		trace.WithAttributes(attribute.Int("selections", len(selections))),
	)
	defer span.End()

	p := &planner{schema: e.schema}
	seen := make(map[string]bool, len(selections))
	plans := make([]*collectionPlan, 0, len(selections))
	for _, sel := range selections {
		plan, err := p.planTop(seen, sel)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to plan selection")
			return nil, err
		}
		plans = append(plans, plan)
	}

	x := &execution{Executor: e}
	out := make(map[string]interface{}, len(plans))
	for _, plan := range plans {
		v, err := x.collection(ctx, plan, nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to execute selection")
			return nil, err
		}
		out[plan.key] = v
	}

	span.SetAttributes(attribute.Int("queries", x.aliases))
	span.SetStatus(codes.Ok, "execution completed")
	return out, nil
}

// execution is the state of one Execute call
type execution struct {
	*Executor
	aliases int
}

func (x *execution) nextAlias() string {
	alias := fmt.Sprintf("__local_%d__", x.aliases)
	x.aliases++
	return alias
}

func (x *execution) collection(ctx context.Context, plan *collectionPlan, parent *query.Match) (interface{}, error) {
	ctx, span := executeTracer.Start(ctx, "ExecuteCollection",
		trace.WithAttributes(
			attribute.String("field", plan.field.Name),
			attribute.String("table", plan.class.Name),
			attribute.Bool("connection", plan.connection),
		),
	)
	defer span.End()

	qb, err := x.builder(plan, parent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build query")
		return nil, err
	}

	nodes := []interface{}{}
	if plan.fetchRows() {
		rows, err := x.fetch(ctx, qb, plan)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch rows")
			return nil, err
		}
		for _, row := range rows {
			node, err := x.resolve(ctx, plan.fields, row)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to resolve row")
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}
	span.SetAttributes(attribute.Int("row_count", len(nodes)))

	if !plan.connection {
		span.SetStatus(codes.Ok, "collection fetched")
		return nodes, nil
	}

	result := make(map[string]interface{}, len(plan.countKeys)+1)
	if plan.nodesKey != "" {
		result[plan.nodesKey] = nodes
	}
	if len(plan.countKeys) > 0 {
		total, err := x.count(ctx, qb, plan)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to count rows")
			return nil, err
		}
		for _, k := range plan.countKeys {
			result[k] = total
		}
	}

	span.SetStatus(codes.Ok, "collection fetched")
	return result, nil
}

// builder assembles the query of one collection. The parent match, when
// set, restricts a related collection to the rows of one parent.
func (x *execution) builder(plan *collectionPlan, parent *query.Match) (*query.Builder, error) {
	table := pgsql.Identifier(plan.class.Name)
	if plan.class.Namespace != nil {
		table = pgsql.Identifier(plan.class.Namespace.Name, plan.class.Name)
	}

	qb := query.NewBuilder(table, x.nextAlias())
	if parent != nil {
		qb.Where(parent.Predicate(qb))
	}
	for _, c := range plan.contributions {
		if err := qb.Apply(c); err != nil {
			return nil, fmt.Errorf("failed to apply arguments of %s: %w", plan.path, err)
		}
	}
	for _, f := range plan.fields {
		for _, c := range f.contributions {
			if err := qb.Apply(c); err != nil {
				return nil, fmt.Errorf("failed to apply field %s of %s: %w", f.key, plan.path, err)
			}
		}
	}

	// Without selected fields the whole row is read, unless a
	// contribution opted out.
	qb.UseAsterisk(len(plan.fields) == 0)
	if plan.first != nil {
		qb.Limit(*plan.first)
	}
	if plan.offset != nil {
		qb.Offset(*plan.offset)
	}
	return qb, nil
}

// fetch runs the row query and reads every row before returning, so
// related collections never run while the result set is open
func (x *execution) fetch(ctx context.Context, qb *query.Builder, plan *collectionPlan) ([]schema.Row, error) {
	text, args := qb.Compile()
	x.log.WithFields(logrus.Fields{
		"field": plan.path,
		"table": plan.class.Name,
		"alias": qb.Alias(),
	}).Debugf("Executing collection query: %s", text)

	rows, err := x.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", plan.path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", plan.path, err)
	}

	keys := make([]string, len(cols))
	for i, col := range cols {
		keys[i] = qb.ColumnKey(col)
	}

	var out []schema.Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", plan.path, err)
		}
		row := make(schema.Row, len(cols))
		for i, key := range keys {
			row[key] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows of %s: %w", plan.path, err)
	}
	return out, nil
}

func (x *execution) count(ctx context.Context, qb *query.Builder, plan *collectionPlan) (int, error) {
	text, args := qb.CompileCount()
	var total int64
	if err := x.db.QueryRowContext(ctx, text, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", plan.path, err)
	}
	return int(total), nil
}

func (x *execution) resolve(ctx context.Context, fields []*fieldPlan, row schema.Row) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		v, err := f.field.Resolve(row, schema.ResolveInfo{Alias: f.key, Args: f.args})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f.key, err)
		}
		if f.relation == nil {
			out[f.key] = v
			continue
		}

		match, ok := v.(query.Match)
		if !ok {
			out[f.key] = f.relation.empty()
			continue
		}
		related, err := x.collection(ctx, f.relation, &match)
		if err != nil {
			return nil, err
		}
		out[f.key] = related
	}
	return out, nil
}
