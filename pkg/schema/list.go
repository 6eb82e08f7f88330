package schema

import (
	"strings"
)

// TypeRef references a named type, optionally wrapped in list and non-null
// modifiers
type TypeRef struct {
	Name    string
	OfType  *TypeRef
	List    bool
	NonNull bool
}

// Named references a named type
func Named(name string) *TypeRef {
	return &TypeRef{Name: name}
}

// ListOf wraps a type in a list
func ListOf(t *TypeRef) *TypeRef {
	return &TypeRef{OfType: t, List: true}
}

// NonNullOf wraps a type in a non-null modifier
func NonNullOf(t *TypeRef) *TypeRef {
	return &TypeRef{OfType: t, NonNull: true}
}

// NamedType returns the innermost type name
func (t *TypeRef) NamedType() string {
	for t.OfType != nil {
		t = t.OfType
	}
	return t.Name
}

// String renders the reference in SDL notation
func (t *TypeRef) String() string {
	switch {
	case t.NonNull:
		return t.OfType.String() + "!"
	case t.List:
		return "[" + t.OfType.String() + "]"
	default:
		return t.Name
	}
}

// Nameable is implemented by every ordered list member
type Nameable interface {
	GetName() string
}

// List is an ordered, name-keyed collection. Lists are treated as values:
// With returns a new list and never modifies the receiver.
type List[T Nameable] []T

// Fields is an ordered field list
type Fields = List[*Field]

// Arguments is an ordered argument list
type Arguments = List[*Argument]

// InputFields is an ordered input field list
type InputFields = List[*InputField]

// EnumValues is an ordered enum value list
type EnumValues = List[*EnumValue]

// Get returns the member with the given name
func (l List[T]) Get(name string) (T, bool) {
	for _, item := range l {
		if item.GetName() == name {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Names returns member names in order
func (l List[T]) Names() []string {
	names := make([]string, len(l))
	for i, item := range l {
		names[i] = item.GetName()
	}
	return names
}

// With returns a new list with items appended. An item whose name already
// exists replaces the earlier member in place (last writer wins); the
// replaced names are returned so the caller can report the collision.
func (l List[T]) With(items ...T) (List[T], []string) {
	out := make(List[T], len(l), len(l)+len(items))
	copy(out, l)

	var collisions []string
	for _, item := range items {
		replaced := false
		for i, existing := range out {
			if existing.GetName() == item.GetName() {
				out[i] = item
				replaced = true
				break
			}
		}
		if replaced {
			collisions = append(collisions, item.GetName())
			continue
		}
		out = append(out, item)
	}
	return out, collisions
}

// String lists member names, for logs
func (l List[T]) String() string {
	return strings.Join(l.Names(), ", ")
}
