package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrTypeExists is returned when registering a second type under a name
	ErrTypeExists = errors.New("type already registered")
	// ErrTypeNotFound is returned when looking up an unknown type
	ErrTypeNotFound = errors.New("type not found")
)

// QueryTypeName is the name of the root query type
const QueryTypeName = "Query"

// Registry collects named types during a build, preserving registration order
type Registry struct {
	types  []NamedType
	byName map[string]int
}

// NewRegistry creates a registry seeded with the builtin scalars
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, s := range BuiltinScalars() {
		_ = r.Register(s)
	}
	return r
}

// Register adds a new named type
func (r *Registry) Register(t NamedType) error {
	if t == nil {
		return fmt.Errorf("cannot register nil type")
	}
	if _, exists := r.byName[t.TypeName()]; exists {
		return fmt.Errorf("%w: %s", ErrTypeExists, t.TypeName())
	}
	r.byName[t.TypeName()] = len(r.types)
	r.types = append(r.types, t)
	return nil
}

// Replace swaps an already registered type for a new value of the same name
func (r *Registry) Replace(t NamedType) error {
	i, exists := r.byName[t.TypeName()]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTypeNotFound, t.TypeName())
	}
	r.types[i] = t
	return nil
}

// Lookup returns a registered type by name
func (r *Registry) Lookup(name string) (NamedType, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.types[i], true
}

// Types returns registered types in registration order
func (r *Registry) Types() []NamedType {
	out := make([]NamedType, len(r.types))
	copy(out, r.types)
	return out
}

// Schema is the finished, read-only schema description
type Schema struct {
	types map[string]NamedType
	order []string
	query *Object
}

// NewSchema freezes the registry contents into a schema. The registry must
// contain an object type named Query.
func NewSchema(r *Registry) (*Schema, error) {
	s := &Schema{types: make(map[string]NamedType, len(r.types))}
	for _, t := range r.types {
		s.types[t.TypeName()] = t
		s.order = append(s.order, t.TypeName())
	}

	q, ok := s.types[QueryTypeName].(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, QueryTypeName)
	}
	s.query = q

	for _, t := range r.types {
		if err := s.checkReferences(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) checkReferences(t NamedType) error {
	check := func(ref *TypeRef, where string) error {
		if _, ok := s.types[ref.NamedType()]; !ok {
			return fmt.Errorf("%s references unknown type %s", where, ref.NamedType())
		}
		return nil
	}

	switch v := t.(type) {
	case *Object:
		for _, f := range v.Fields {
			if err := check(f.Type, v.Name+"."+f.Name); err != nil {
				return err
			}
			for _, a := range f.Args {
				if err := check(a.Type, v.Name+"."+f.Name+"("+a.Name+")"); err != nil {
					return err
				}
			}
		}
	case *InputObject:
		for _, f := range v.Fields {
			if err := check(f.Type, v.Name+"."+f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Query returns the root query type
func (s *Schema) Query() *Object {
	return s.query
}

// Type returns a type by name
func (s *Schema) Type(name string) (NamedType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Object returns an object type by name
func (s *Schema) Object(name string) (*Object, bool) {
	o, ok := s.types[name].(*Object)
	return o, ok
}

// Types returns all types sorted by name
func (s *Schema) Types() []NamedType {
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)

	out := make([]NamedType, len(names))
	for i, n := range names {
		out[i] = s.types[n]
	}
	return out
}
