package execute

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
	"github.com/platinummonkey/zombograph/pkg/tables"
)

// Selection requests one field. Alias, when set, is the key the value is
// returned under.
type Selection struct {
	Name       string                 `json:"name"`
	Alias      string                 `json:"alias,omitempty"`
	Args       map[string]interface{} `json:"args,omitempty"`
	Selections []Selection            `json:"selections,omitempty"`
}

// Key returns the response key of the selection
func (s Selection) Key() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// collectionPlan is a validated collection selection with its lowered
// contributions. Plans are built before any SQL runs and are read-only
// afterwards.
type collectionPlan struct {
	field         *schema.Field
	key           string
	path          string
	class         *introspection.Class
	connection    bool
	args          map[string]interface{}
	contributions []*query.Contribution
	first         *int
	offset        *int
	nodesKey      string
	countKeys     []string
	fields        []*fieldPlan
}

// fetchRows reports whether the row query has to run
func (p *collectionPlan) fetchRows() bool {
	return !p.connection || p.nodesKey != ""
}

// empty is the result of a collection that cannot match any row
func (p *collectionPlan) empty() interface{} {
	nodes := []interface{}{}
	if !p.connection {
		return nodes
	}
	out := make(map[string]interface{}, len(p.countKeys)+1)
	if p.nodesKey != "" {
		out[p.nodesKey] = nodes
	}
	for _, k := range p.countKeys {
		out[k] = 0
	}
	return out
}

type fieldPlan struct {
	field         *schema.Field
	key           string
	args          map[string]interface{}
	contributions []*query.Contribution
	relation      *collectionPlan
}

type planner struct {
	schema *schema.Schema
}

func (p *planner) planTop(seen map[string]bool, sel Selection) (*collectionPlan, error) {
	if err := checkKey(seen, sel.Key(), ""); err != nil {
		return nil, err
	}
	field, ok := p.schema.Query().Fields.Get(sel.Name)
	if !ok {
		return nil, unknownField(sel.Key(), schema.QueryTypeName, sel.Name)
	}
	if !field.Scope.IsCollectionField() || field.Scope.Class == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, sel.Name)
	}
	return p.planCollection(field, sel, sel.Key())
}

func (p *planner) planCollection(field *schema.Field, sel Selection, path string) (*collectionPlan, error) {
	args, err := p.schema.CoerceArguments(field, sel.Args)
	if err != nil {
		return nil, err
	}

	plan := &collectionPlan{
		field:      field,
		key:        sel.Key(),
		path:       path,
		class:      field.Scope.Class,
		connection: field.Scope.IsConnectionField,
		args:       args,
	}
	if plan.first, err = pageArg(args, tables.ArgFirst, path); err != nil {
		return nil, err
	}
	if plan.offset, err = pageArg(args, tables.ArgOffset, path); err != nil {
		return nil, err
	}

	for _, gen := range field.ArgDataGenerators {
		c, err := gen(args)
		if err != nil {
			return nil, fmt.Errorf("failed to lower arguments of %s: %w", path, err)
		}
		if c != nil {
			plan.contributions = append(plan.contributions, c)
		}
	}

	if !plan.connection {
		row, ok := p.schema.Object(field.Type.NamedType())
		if !ok {
			return nil, fmt.Errorf("row type %s of %s is not an object", field.Type.NamedType(), path)
		}
		if plan.fields, err = p.planRow(row, sel.Selections, path); err != nil {
			return nil, err
		}
		return plan, nil
	}

	conn, ok := p.schema.Object(field.Type.NamedType())
	if !ok {
		return nil, fmt.Errorf("connection type %s of %s is not an object", field.Type.NamedType(), path)
	}
	seen := make(map[string]bool, len(sel.Selections))
	for _, s := range sel.Selections {
		key := s.Key()
		subPath := path + "." + key
		if err := checkKey(seen, key, path); err != nil {
			return nil, err
		}
		if len(s.Args) > 0 {
			return nil, schema.NewValidationError(subPath, "field %s of %s takes no arguments", s.Name, conn.Name)
		}

		switch s.Name {
		case tables.FieldNodes:
			if plan.nodesKey != "" {
				return nil, schema.NewValidationError(subPath, "%s may only be selected once", tables.FieldNodes)
			}
			nodes, ok := conn.Fields.Get(tables.FieldNodes)
			if !ok {
				return nil, unknownField(subPath, conn.Name, s.Name)
			}
			row, ok := p.schema.Object(nodes.Type.NamedType())
			if !ok {
				return nil, fmt.Errorf("row type %s of %s is not an object", nodes.Type.NamedType(), subPath)
			}
			plan.nodesKey = key
			if plan.fields, err = p.planRow(row, s.Selections, subPath); err != nil {
				return nil, err
			}
		case tables.FieldTotalCount:
			plan.countKeys = append(plan.countKeys, key)
		default:
			return nil, unknownField(subPath, conn.Name, s.Name)
		}
	}
	return plan, nil
}

func (p *planner) planRow(row *schema.Object, sels []Selection, path string) ([]*fieldPlan, error) {
	seen := make(map[string]bool, len(sels))
	out := make([]*fieldPlan, 0, len(sels))

	for _, s := range sels {
		key := s.Key()
		fieldPath := path + "." + key
		if err := checkKey(seen, key, path); err != nil {
			return nil, err
		}
		field, ok := row.Fields.Get(s.Name)
		if !ok {
			return nil, unknownField(fieldPath, row.Name, s.Name)
		}
		if field.Resolve == nil {
			return nil, fmt.Errorf("field %s of %s has no resolver", field.Name, row.Name)
		}

		fp := &fieldPlan{field: field, key: key}
		if field.Scope.IsCollectionField() {
			rel, err := p.planCollection(field, s, fieldPath)
			if err != nil {
				return nil, err
			}
			fp.relation = rel
			fp.args = rel.args
		} else {
			if len(s.Selections) > 0 {
				return nil, schema.NewValidationError(fieldPath, "field %s of %s has no subfields", field.Name, row.Name)
			}
			args, err := p.schema.CoerceArguments(field, s.Args)
			if err != nil {
				return nil, err
			}
			fp.args = args
		}

		for _, gen := range field.DataGenerators {
			c, err := gen(schema.FieldRequest{Alias: key, Args: fp.args})
			if err != nil {
				return nil, fmt.Errorf("failed to lower field %s: %w", fieldPath, err)
			}
			if c != nil {
				fp.contributions = append(fp.contributions, c)
			}
		}
		out = append(out, fp)
	}
	return out, nil
}

// checkKey rejects duplicate response keys and keys in the "__" namespace
// used for private selection aliases
func checkKey(seen map[string]bool, key, path string) error {
	at := key
	if path != "" {
		at = path + "." + key
	}
	if strings.HasPrefix(key, "__") {
		return schema.NewValidationError(at, "response keys starting with __ are reserved")
	}
	if seen[key] {
		return schema.NewValidationError(at, "duplicate response key %q", key)
	}
	seen[key] = true
	return nil
}

func pageArg(args map[string]interface{}, name, path string) (*int, error) {
	n, ok := args[name].(int)
	if !ok {
		return nil, nil
	}
	if n < 0 {
		return nil, schema.NewValidationError(path+"."+name, "must not be negative, got %d", n)
	}
	return &n, nil
}

func unknownField(path, typeName, name string) error {
	return &schema.ValidationError{
		Path:    path,
		Message: fmt.Sprintf("field %q is not defined by type %s", name, typeName),
		Err:     ErrUnknownField,
	}
}
