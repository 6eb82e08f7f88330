package build

import (
	"errors"
	"fmt"

	"github.com/platinummonkey/zombograph/pkg/introspection"
)

var (
	// ErrKeyExists is returned when a state key is defined twice
	ErrKeyExists = errors.New("build state key already defined")
	// ErrMissingKey is returned when a required state key was never defined
	ErrMissingKey = errors.New("build state key not defined")
)

// Key names a typed value in the build state
type Key[T any] struct {
	name string
}

// NewKey creates a typed state key
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// String returns the key name
func (k Key[T]) String() string {
	return k.name
}

// Keys every build defines before the build phase runs
var (
	BuildIDKey       = NewKey[string]("buildID")
	IntrospectionKey = NewKey[*introspection.Result]("introspection")
	InflectorKey     = NewKey[*Inflector]("inflection")
)

// State is the value threaded through the build phases. It is immutable:
// WithValue returns a new state one version ahead and never changes the
// receiver, and keys can only be added, never redefined or removed.
type State struct {
	version int
	values  map[string]interface{}
	order   []string
}

// NewState returns an empty state at version zero
func NewState() *State {
	return &State{values: map[string]interface{}{}}
}

// Version counts the values added so far
func (s *State) Version() int {
	return s.version
}

// Keys lists defined key names in definition order
func (s *State) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether a key name is defined
func (s *State) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// WithValue returns a new state extended with key set to v
func WithValue[T any](s *State, key Key[T], v T) (*State, error) {
	if _, exists := s.values[key.name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrKeyExists, key.name)
	}

	values := make(map[string]interface{}, len(s.values)+1)
	for k, existing := range s.values {
		values[k] = existing
	}
	values[key.name] = v

	order := make([]string, len(s.order), len(s.order)+1)
	copy(order, s.order)

	return &State{
		version: s.version + 1,
		values:  values,
		order:   append(order, key.name),
	}, nil
}

// Value returns the value stored under key
func Value[T any](s *State, key Key[T]) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	raw, ok := s.values[key.name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// MustValue returns the value stored under key or ErrMissingKey. Hooks use
// it for capabilities they cannot work without, which aborts the build.
func MustValue[T any](s *State, key Key[T]) (T, error) {
	v, ok := Value(s, key)
	if !ok {
		return v, fmt.Errorf("%w: %s", ErrMissingKey, key.name)
	}
	return v, nil
}
