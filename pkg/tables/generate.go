package tables

import (
	"strings"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// Argument names of every collection field
const (
	ArgFirst     = "first"
	ArgOffset    = "offset"
	ArgOrderBy   = "orderBy"
	ArgCondition = "condition"
)

// Field names of every connection type
const (
	FieldNodes      = "nodes"
	FieldTotalCount = "totalCount"
)

const queryDescription = "The root query type which gives access points into the data universe."

func (p *Plugin) generate(ctx *build.InitContext) error {
	classes, err := build.MustValue(ctx.State, ClassesKey)
	if err != nil {
		return err
	}

	exposed := make(map[string]bool, len(classes))
	for _, c := range classes {
		exposed[c.ID] = true
	}

	var rootFields schema.Fields
	for _, c := range classes {
		if err := p.registerClass(ctx, c, exposed); err != nil {
			return err
		}
		rootFields = append(rootFields, p.collectionFields(ctx.Inflector, c, nil)...)
	}

	return ctx.Register(&schema.Object{
		Name:        schema.QueryTypeName,
		Description: queryDescription,
		Fields:      rootFields,
	})
}

func (p *Plugin) registerClass(ctx *build.InitContext, c *introspection.Class, exposed map[string]bool) error {
	inf := ctx.Inflector
	typeName := inf.TableType(c)

	fields := make(schema.Fields, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		if introspection.Omit(a, "read") {
			continue
		}
		fields = append(fields, columnField(inf, a))
	}
	for _, fk := range c.ForeignConstraints {
		if fk.Class == nil || !exposed[fk.Class.ID] || introspection.Omit(fk, "read") {
			continue
		}
		fields = append(fields, p.collectionFields(inf, fk.Class, fk)...)
	}

	types := []schema.NamedType{
		&schema.Object{
			Name:        typeName,
			Description: c.Description,
			Fields:      fields,
			Scope:       schema.Scope{IsRowType: true, Class: c},
		},
		conditionType(inf, c),
		orderByType(inf, c),
	}
	if p.wantConnections() {
		types = append(types, connectionType(inf, c))
	}

	for _, t := range types {
		if err := ctx.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func columnField(inf *build.Inflector, a *introspection.Attribute) *schema.Field {
	column := a.Name
	return &schema.Field{
		Name:        inf.Column(a),
		Description: a.Description,
		Type:        outputType(a),
		Scope:       schema.Scope{IsColumnField: true, Class: a.Class, Attribute: a},
		DataGenerators: []schema.DataGenerator{
			func(req schema.FieldRequest) (*query.Contribution, error) {
				return &query.Contribution{
					Apply: func(t query.Target) error {
						t.Select(query.ColumnExpression(column)(t), req.Alias)
						return nil
					},
				}, nil
			},
		},
		Resolve: columnResolver(a),
	}
}

// collectionFields returns the connection and list fields over c. With fk
// set they are backward relation fields placed on the referenced row type.
func (p *Plugin) collectionFields(inf *build.Inflector, c *introspection.Class, fk *introspection.Constraint) schema.Fields {
	typeName := inf.TableType(c)
	args := schema.Arguments{
		{
			Name:        ArgFirst,
			Description: "Only read the first `n` values of the set.",
			Type:        schema.Named(schema.ScalarInt),
		},
		{
			Name:        ArgOffset,
			Description: "Skip the first `n` values.",
			Type:        schema.Named(schema.ScalarInt),
		},
		{
			Name:        ArgOrderBy,
			Description: "The method to use when ordering `" + typeName + "`.",
			Type:        schema.ListOf(schema.NonNullOf(schema.Named(inf.OrderByType(c)))),
		},
		{
			Name:        ArgCondition,
			Description: "A condition to be used in determining which values should be returned by the collection.",
			Type:        schema.Named(inf.ConditionType(c)),
		},
	}
	generators := []schema.ArgDataGenerator{
		conditionGenerator(inf, c),
		orderGenerator(c),
	}

	name := inf.AllRows(c)
	description := "Reads and enables pagination through a set of `" + typeName + "`."
	scope := schema.Scope{Class: c}
	var (
		dataGenerators []schema.DataGenerator
		resolve        schema.Resolver
	)
	if fk != nil {
		name = inf.BackwardRelation(fk)
		scope.IsBackwardRelationField = true
		scope.Constraint = fk
		dataGenerators = []schema.DataGenerator{relationKeyGenerator(fk)}
		resolve = relationResolver(fk)
	}

	var out schema.Fields
	if p.wantConnections() {
		s := scope
		s.IsConnectionField = true
		out = append(out, &schema.Field{
			Name:              name,
			Description:       description,
			Type:              schema.NonNullOf(schema.Named(inf.Connection(c))),
			Args:              args,
			Scope:             s,
			ArgDataGenerators: generators,
			DataGenerators:    dataGenerators,
			Resolve:           resolve,
		})
	}
	if p.wantLists() {
		s := scope
		s.IsSimpleCollectionField = true
		listName := name + "List"
		if fk == nil {
			listName = inf.AllRowsSimple(c)
		}
		out = append(out, &schema.Field{
			Name:              listName,
			Description:       "Reads a set of `" + typeName + "`.",
			Type:              schema.ListOf(schema.NonNullOf(schema.Named(typeName))),
			Args:              args,
			Scope:             s,
			ArgDataGenerators: generators,
			DataGenerators:    dataGenerators,
			Resolve:           resolve,
		})
	}
	return out
}

func connectionType(inf *build.Inflector, c *introspection.Class) *schema.Object {
	typeName := inf.TableType(c)
	return &schema.Object{
		Name:        inf.Connection(c),
		Description: "A connection to a list of `" + typeName + "` values.",
		Fields: schema.Fields{
			{
				Name:        FieldNodes,
				Description: "A list of `" + typeName + "` objects.",
				Type:        schema.NonNullOf(schema.ListOf(schema.Named(typeName))),
			},
			{
				Name:        FieldTotalCount,
				Description: "The count of *all* `" + typeName + "` you could get from the connection.",
				Type:        schema.NonNullOf(schema.Named(schema.ScalarInt)),
			},
		},
		Scope: schema.Scope{IsConnectionType: true, Class: c},
	}
}

func conditionType(inf *build.Inflector, c *introspection.Class) *schema.InputObject {
	typeName := inf.TableType(c)
	var fields schema.InputFields
	for _, a := range conditionAttributes(c) {
		fields = append(fields, &schema.InputField{
			Name:        inf.Column(a),
			Description: "Checks for equality with the object’s `" + inf.Column(a) + "` field.",
			Type:        schema.Named(ScalarFor(a.TypeName)),
			Scope:       schema.Scope{Class: c, Attribute: a},
		})
	}
	return &schema.InputObject{
		Name:        inf.ConditionType(c),
		Description: "A condition to be used against `" + typeName + "` object types. All fields are tested for equality and combined with a logical ‘and.’",
		Fields:      fields,
		Scope:       schema.Scope{IsConditionType: true, Class: c},
	}
}

func conditionAttributes(c *introspection.Class) []*introspection.Attribute {
	var out []*introspection.Attribute
	for _, a := range c.Attributes {
		if a.IsArray || introspection.Omit(a, "read") || introspection.Omit(a, "filter") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func orderByType(inf *build.Inflector, c *introspection.Class) *schema.Enum {
	values := schema.EnumValues{
		{Name: "NATURAL", Value: query.OrderValue{Alias: "natural"}},
	}

	pk := primaryKeyColumns(c)
	if len(pk) > 0 {
		asc := make([]query.SortSpec, len(pk))
		desc := make([]query.SortSpec, len(pk))
		for i, col := range pk {
			asc[i] = query.SortSpec{Expr: query.ColumnExpression(col), Ascending: true}
			desc[i] = query.SortSpec{Expr: query.ColumnExpression(col), Ascending: false}
		}
		values = append(values,
			&schema.EnumValue{Name: "PRIMARY_KEY_ASC", Value: query.OrderValue{Alias: "primary_key_asc", Specs: asc, Unique: true}},
			&schema.EnumValue{Name: "PRIMARY_KEY_DESC", Value: query.OrderValue{Alias: "primary_key_desc", Specs: desc, Unique: true}},
		)
	}

	for _, a := range c.Attributes {
		if a.IsArray || introspection.Omit(a, "read") || introspection.Omit(a, "order") {
			continue
		}
		unique := len(pk) == 1 && pk[0] == a.Name
		for _, ascending := range []bool{true, false} {
			name := inf.OrderByColumnEnum(a, ascending)
			values = append(values, &schema.EnumValue{
				Name: name,
				Value: query.OrderValue{
					Alias:  strings.ToLower(name),
					Specs:  []query.SortSpec{{Expr: query.ColumnExpression(a.Name), Ascending: ascending}},
					Unique: unique,
				},
			})
		}
	}

	return &schema.Enum{
		Name:        inf.OrderByType(c),
		Description: "Methods to use when ordering `" + inf.TableType(c) + "`.",
		Values:      values,
		Scope:       schema.Scope{IsRowSortEnum: true, Class: c},
	}
}

func primaryKeyColumns(c *introspection.Class) []string {
	if c.PrimaryKey == nil {
		return nil
	}
	cols := make([]string, len(c.PrimaryKey.KeyAttributes))
	for i, a := range c.PrimaryKey.KeyAttributes {
		cols[i] = a.Name
	}
	return cols
}
