// Package execute runs selections against the generated schema.
//
// # Overview
//
// Execution happens in two passes. The plan pass coerces every argument,
// runs the argument and field data generators and checks the selection
// shape, so request errors surface as *schema.ValidationError before any
// SQL is sent. The run pass compiles one SELECT per collection, scans the
// rows, resolves the selected fields and recurses into related collections.
// Connections additionally run a COUNT(*) for totalCount.
//
// # Usage Example
//
//	exec := execute.NewExecutor(db, result.Schema, logger)
//	data, err := exec.Execute(ctx, []execute.Selection{{
//		Name: "allProducts",
//		Args: map[string]interface{}{
//			"search":  map[string]interface{}{"query": "sports box", "minScore": 0},
//			"orderBy": []interface{}{"_SCORE_DESC", "NAME_ASC"},
//		},
//		Selections: []execute.Selection{{
//			Name: "nodes",
//			Selections: []execute.Selection{{Name: "name"}, {Name: "_score"}},
//		}},
//	}})
//
// # Related Packages
//
//   - pkg/schema: Field definitions, coercion and resolvers
//   - pkg/query: The SELECT builder data generators contribute to
//   - pkg/build: Produces the schema being executed
package execute
