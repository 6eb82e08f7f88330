// Package query provides the generic single-table query builder used when
// executing collection fields.
//
// Plugins never see the builder directly. They receive one of the narrow
// capability interfaces (SelectionRegistrar, PredicateRegistrar,
// OrderRegistrar) through a Contribution and only ever add to the query:
//
//	contribution := &query.Contribution{
//		DontUseAsterisk: true,
//		Apply: func(t query.Target) error {
//			t.Where(pgsql.Sprintf("%s ==> %s", t.TableAlias(), pgsql.Value(text)))
//			return nil
//		},
//	}
package query
