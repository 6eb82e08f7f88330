// Package introspectiontest builds introspection snapshots for tests.
package introspectiontest

import (
	"strconv"

	"github.com/platinummonkey/zombograph/pkg/introspection"
)

// Column describes a column for a fixture table
type Column struct {
	Name    string
	Type    string
	NotNull bool
	IsArray bool
	Comment string
}

// Builder assembles an introspection.Result with generated oids
type Builder struct {
	result *introspection.Result
	nextID int
	ns     map[string]*introspection.Namespace
}

// New starts an empty snapshot
func New() *Builder {
	return &Builder{
		result: &introspection.Result{},
		nextID: 1000,
		ns:     make(map[string]*introspection.Namespace),
	}
}

func (b *Builder) id() string {
	b.nextID++
	return strconv.Itoa(b.nextID)
}

// Extension adds an installed extension
func (b *Builder) Extension(name string) *Builder {
	b.result.Extensions = append(b.result.Extensions, &introspection.Extension{
		ID:      b.id(),
		Name:    name,
		Version: "1.0",
	})
	return b
}

// Table adds a selectable table with a serial "id" primary key followed by
// the given columns, returning the new class
func (b *Builder) Table(schema, name string, columns ...Column) *introspection.Class {
	ns, ok := b.ns[schema]
	if !ok {
		ns = &introspection.Namespace{ID: b.id(), Name: schema, Tags: introspection.Tags{}}
		b.ns[schema] = ns
		b.result.Namespaces = append(b.result.Namespaces, ns)
	}

	class := &introspection.Class{
		ID:           b.id(),
		Name:         name,
		NamespaceID:  ns.ID,
		Kind:         introspection.ClassKindTable,
		Tags:         introspection.Tags{},
		IsSelectable: true,
		IsInsertable: true,
		IsUpdatable:  true,
		IsDeletable:  true,
	}
	b.result.Classes = append(b.result.Classes, class)

	all := append([]Column{{Name: "id", Type: "int8", NotNull: true}}, columns...)
	for i, col := range all {
		tags, desc := introspection.ParseComment(col.Comment)
		b.result.Attributes = append(b.result.Attributes, &introspection.Attribute{
			ClassID:     class.ID,
			Num:         i + 1,
			Name:        col.Name,
			TypeName:    col.Type,
			IsArray:     col.IsArray,
			IsNotNull:   col.NotNull,
			Description: desc,
			Tags:        tags,
		})
	}

	b.result.Constraints = append(b.result.Constraints, &introspection.Constraint{
		ID:               b.id(),
		Name:             name + "_pkey",
		Type:             introspection.ConstraintPrimaryKey,
		ClassID:          class.ID,
		ForeignClassID:   "0",
		KeyAttributeNums: []int{1},
		Tags:             introspection.Tags{},
	})

	b.result.Link()
	return class
}

// ForeignKey adds a foreign key from class.column to foreign.id
func (b *Builder) ForeignKey(class *introspection.Class, column string, foreign *introspection.Class) *Builder {
	num := 0
	for _, a := range class.Attributes {
		if a.Name == column {
			num = a.Num
		}
	}
	b.result.Constraints = append(b.result.Constraints, &introspection.Constraint{
		ID:                      b.id(),
		Name:                    class.Name + "_" + column + "_fkey",
		Type:                    introspection.ConstraintForeignKey,
		ClassID:                 class.ID,
		ForeignClassID:          foreign.ID,
		KeyAttributeNums:        []int{num},
		ForeignKeyAttributeNums: []int{1},
		Tags:                    introspection.Tags{},
	})
	b.result.Link()
	return b
}

// Index adds an index of the given access method over class
func (b *Builder) Index(class *introspection.Class, name, indexType, comment string) *introspection.Index {
	tags, desc := introspection.ParseComment(comment)
	idx := &introspection.Index{
		ID:          b.id(),
		Name:        name,
		ClassID:     class.ID,
		IndexType:   indexType,
		Description: desc,
		Tags:        tags,
	}
	b.result.Indexes = append(b.result.Indexes, idx)
	b.result.Link()
	return idx
}

// Result returns the linked snapshot
func (b *Builder) Result() *introspection.Result {
	b.result.Link()
	return b.result
}

// Products builds the product catalog used throughout the tests: a products
// table with a zombodb index (when withIndex is set), a reviews table
// referencing it and the zombodb extension when withExtension is set.
func Products(withExtension, withIndex bool) *introspection.Result {
	b := New()
	if withExtension {
		b.Extension("zombodb")
	}
	products := b.Table("zombodb_test", "products",
		Column{Name: "name", Type: "text", NotNull: true},
		Column{Name: "keywords", Type: "varchar", IsArray: true},
		Column{Name: "short_summary", Type: "text"},
		Column{Name: "long_description", Type: "text"},
		Column{Name: "price", Type: "int8"},
		Column{Name: "inventory_count", Type: "int4"},
		Column{Name: "discontinued", Type: "bool"},
		Column{Name: "availability_date", Type: "date"},
	)
	reviews := b.Table("zombodb_test", "reviews",
		Column{Name: "product_id", Type: "int8", NotNull: true},
		Column{Name: "review", Type: "text"},
	)
	b.ForeignKey(reviews, "product_id", products)
	if withIndex {
		b.Index(products, "idxproducts", "zombodb", "")
	}
	b.Index(products, "products_pkey", "btree", "")
	return b.Result()
}

// Countries builds a country table with a zombodb index
func Countries() *introspection.Result {
	b := New().Extension("zombodb")
	country := b.Table("zombodb_test", "country",
		Column{Name: "name", Type: "text", NotNull: true},
		Column{Name: "active", Type: "bool", NotNull: true},
	)
	b.Index(country, "idx_countries", "zombodb", "")
	return b.Result()
}
