package build

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/platinummonkey/zombograph/pkg/introspection"
)

// ErrUnknownInflection is returned when calling a name function nobody
// registered
var ErrUnknownInflection = errors.New("unknown inflection")

// NameFunc derives a public name. It receives the inflector it was called
// on so extensions can build on each other.
type NameFunc func(inf *Inflector, args ...string) string

// Inflector derives public names from database names. The base rules are
// fixed; plugins add named rules during the inflection phase with Extend.
type Inflector struct {
	ext map[string]NameFunc
}

// NewInflector creates an inflector with only the base rules
func NewInflector() *Inflector {
	return &Inflector{ext: map[string]NameFunc{}}
}

// Extend returns a new inflector with the given rules added. Rules that
// replace an existing name are returned, sorted, as collisions.
func (inf *Inflector) Extend(rules map[string]NameFunc) (*Inflector, []string) {
	ext := make(map[string]NameFunc, len(inf.ext)+len(rules))
	for k, v := range inf.ext {
		ext[k] = v
	}

	var collisions []string
	for name, fn := range rules {
		if _, exists := ext[name]; exists {
			collisions = append(collisions, name)
		}
		ext[name] = fn
	}
	sort.Strings(collisions)
	return &Inflector{ext: ext}, collisions
}

// Has reports whether a named rule is registered
func (inf *Inflector) Has(name string) bool {
	_, ok := inf.ext[name]
	return ok
}

// Call runs a named rule
func (inf *Inflector) Call(name string, args ...string) (string, error) {
	fn, ok := inf.ext[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownInflection, name)
	}
	return fn(inf, args...), nil
}

// Pluralize returns the plural form of a word
func (inf *Inflector) Pluralize(s string) string {
	return inflect.Pluralize(s)
}

// Singularize returns the singular form of a word
func (inf *Inflector) Singularize(s string) string {
	return inflect.Singularize(s)
}

// UpperCamel converts snake_case or camelCase to UpperCamelCase
func (inf *Inflector) UpperCamel(s string) string {
	return inflect.Camelize(s)
}

// Camel converts snake_case or UpperCamelCase to camelCase
func (inf *Inflector) Camel(s string) string {
	return inflect.CamelizeDownFirst(s)
}

// ConstantCase converts a name to CONSTANT_CASE. Leading underscores are
// kept, so "_score_asc" becomes "_SCORE_ASC".
func (inf *Inflector) ConstantCase(s string) string {
	rest := strings.TrimLeft(s, "_")
	prefix := s[:len(s)-len(rest)]
	if rest == "" {
		return prefix
	}
	return prefix + strings.ToUpper(inflect.Underscore(rest))
}

// TableType names the row type of a class: products -> Product
func (inf *Inflector) TableType(c *introspection.Class) string {
	if name, ok := c.SmartTags()["name"]; ok && name != "" {
		return inf.UpperCamel(name)
	}
	return inf.UpperCamel(inf.Singularize(c.Name))
}

// AllRows names the root connection field: allProducts
func (inf *Inflector) AllRows(c *introspection.Class) string {
	return "all" + inf.Pluralize(inf.TableType(c))
}

// AllRowsSimple names the root list field: allProductsList
func (inf *Inflector) AllRowsSimple(c *introspection.Class) string {
	return inf.AllRows(c) + "List"
}

// Connection names the connection type: ProductsConnection
func (inf *Inflector) Connection(c *introspection.Class) string {
	return inf.Pluralize(inf.TableType(c)) + "Connection"
}

// OrderByType names the row sort enum: ProductsOrderBy
func (inf *Inflector) OrderByType(c *introspection.Class) string {
	return inf.Pluralize(inf.TableType(c)) + "OrderBy"
}

// ConditionType names the equality condition input: ProductCondition
func (inf *Inflector) ConditionType(c *introspection.Class) string {
	return inf.TableType(c) + "Condition"
}

// Column names a column field: product_id -> productId
func (inf *Inflector) Column(a *introspection.Attribute) string {
	if name, ok := a.SmartTags()["name"]; ok && name != "" {
		return inf.Camel(name)
	}
	return inf.Camel(a.Name)
}

// OrderByColumnEnum names a column sort value: NAME_ASC, PRODUCT_ID_DESC
func (inf *Inflector) OrderByColumnEnum(a *introspection.Attribute, ascending bool) string {
	suffix := "_desc"
	if ascending {
		suffix = "_asc"
	}
	return inf.ConstantCase(inf.Column(a) + suffix)
}

// BackwardRelation names a one-to-many collection on the referenced row
// type: reviewsByProductId
func (inf *Inflector) BackwardRelation(con *introspection.Constraint) string {
	keys := make([]string, len(con.KeyAttributes))
	for i, a := range con.KeyAttributes {
		keys[i] = inf.UpperCamel(inf.Column(a))
	}
	return inf.Camel(inf.Pluralize(inf.TableType(con.Class))) + "By" + strings.Join(keys, "And")
}
