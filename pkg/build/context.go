package build

import (
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/schema"
)

// Notice is a non-fatal build message, such as a name override
type Notice struct {
	Phase  Phase    `json:"phase"`
	Plugin string   `json:"plugin"`
	Type   string   `json:"type"`
	Reason string   `json:"reason"`
	Names  []string `json:"names,omitempty"`
}

// HookContext is shared by the per-type phases
type HookContext struct {
	State     *State
	Inflector *Inflector

	phase   Phase
	plugin  string
	typ     string
	log     *logrus.Entry
	notices *[]Notice
}

// Log returns a logger tagged with the build id, phase and plugin
func (c *HookContext) Log() *logrus.Entry {
	return c.log
}

func (c *HookContext) notice(reason string, names []string) {
	n := Notice{
		Phase:  c.phase,
		Plugin: c.plugin,
		Type:   c.typ,
		Reason: reason,
		Names:  names,
	}
	*c.notices = append(*c.notices, n)
	c.log.WithFields(logrus.Fields{
		"type":  c.typ,
		"names": names,
	}).Infof("%s overrides existing names", reason)
}

// Extend returns list with items appended. Existing names are overridden
// by the new items and reported as a build notice.
func Extend[T schema.Nameable](c *HookContext, list schema.List[T], reason string, items ...T) schema.List[T] {
	out, collisions := list.With(items...)
	if len(collisions) > 0 {
		c.notice(reason, collisions)
	}
	return out
}

// InitContext is passed to init hooks
type InitContext struct {
	HookContext
	registry *schema.Registry
}

// Register adds a named type to the schema being built
func (c *InitContext) Register(t schema.NamedType) error {
	return c.registry.Register(t)
}

// Lookup returns a type registered by an earlier init hook
func (c *InitContext) Lookup(name string) (schema.NamedType, bool) {
	return c.registry.Lookup(name)
}

// FieldArgsContext describes the field whose arguments are being built
type FieldArgsContext struct {
	HookContext
	Self  *schema.Object
	Field *schema.Field
	Scope schema.Scope

	registry   *schema.Registry
	generators []schema.ArgDataGenerator
}

// AddArgDataGenerator attaches a callback that lowers the field's coerced
// arguments when a query runs
func (c *FieldArgsContext) AddArgDataGenerator(gen schema.ArgDataGenerator) {
	c.generators = append(c.generators, gen)
}

// TypeByName returns a type registered during init
func (c *FieldArgsContext) TypeByName(name string) (schema.NamedType, bool) {
	return c.registry.Lookup(name)
}

// ObjectFieldsContext describes the object whose fields are being built
type ObjectFieldsContext struct {
	HookContext
	Self  *schema.Object
	Scope schema.Scope
}

// EnumValuesContext describes the enum whose values are being built
type EnumValuesContext struct {
	HookContext
	Self  *schema.Enum
	Scope schema.Scope
}
