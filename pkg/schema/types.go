package schema

import (
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/query"
)

// Kind identifies a named type category
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindInputObject
	KindEnum
)

func (k Kind) String() string {
	return []string{"scalar", "type", "input", "enum"}[k]
}

// Built-in scalar names
const (
	ScalarInt      = "Int"
	ScalarFloat    = "Float"
	ScalarString   = "String"
	ScalarBoolean  = "Boolean"
	ScalarBigInt   = "BigInt"
	ScalarBigFloat = "BigFloat"
	ScalarDate     = "Date"
	ScalarDatetime = "Datetime"
	ScalarJSON     = "JSON"
)

// NamedType is any type that can be registered by name
type NamedType interface {
	TypeName() string
	TypeKind() Kind
	TypeDescription() string
}

// Scope carries generator metadata about where a type, field or argument
// came from. Hooks use it to decide whether to contribute.
type Scope struct {
	IsRowType               bool
	IsCompoundType          bool
	IsRowSortEnum           bool
	IsConditionType         bool
	IsConnectionType        bool
	IsConnectionField       bool
	IsSimpleCollectionField bool
	IsBackwardRelationField bool
	IsColumnField           bool
	IsSearchFilter          bool
	IsScoreField            bool

	Class      *introspection.Class
	Attribute  *introspection.Attribute
	Constraint *introspection.Constraint
}

// IsCollectionField reports whether the field returns a collection of rows
func (s Scope) IsCollectionField() bool {
	return s.IsConnectionField || s.IsSimpleCollectionField
}

// Scalar is a leaf type
type Scalar struct {
	Name        string
	Description string
}

func (s *Scalar) TypeName() string        { return s.Name }
func (s *Scalar) TypeKind() Kind          { return KindScalar }
func (s *Scalar) TypeDescription() string { return s.Description }

// Object is an output type with fields
type Object struct {
	Name        string
	Description string
	Fields      Fields
	Scope       Scope
}

func (o *Object) TypeName() string        { return o.Name }
func (o *Object) TypeKind() Kind          { return KindObject }
func (o *Object) TypeDescription() string { return o.Description }

// Row is one fetched record keyed by selection alias
type Row map[string]interface{}

// ResolveInfo describes the selection being resolved
type ResolveInfo struct {
	Alias string
	Args  map[string]interface{}
}

// Resolver produces a field value from a fetched row
type Resolver func(row Row, info ResolveInfo) (interface{}, error)

// FieldRequest describes one requested field when generating query data
type FieldRequest struct {
	Alias string
	Args  map[string]interface{}
}

// ArgDataGenerator lowers the coerced arguments of a collection field into
// query contributions. It runs once per query execution.
type ArgDataGenerator func(args map[string]interface{}) (*query.Contribution, error)

// DataGenerator lowers a requested field into query contributions
type DataGenerator func(req FieldRequest) (*query.Contribution, error)

// Field is an output field
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Args              Arguments
	Scope             Scope
	ArgDataGenerators []ArgDataGenerator
	DataGenerators    []DataGenerator
	Resolve           Resolver
}

// GetName returns the field name
func (f *Field) GetName() string { return f.Name }

// Argument is a field argument
type Argument struct {
	Name        string
	Description string
	Type        *TypeRef
	Scope       Scope
}

// GetName returns the argument name
func (a *Argument) GetName() string { return a.Name }

// InputObject is a structured input type
type InputObject struct {
	Name        string
	Description string
	Fields      InputFields
	Scope       Scope
}

func (i *InputObject) TypeName() string        { return i.Name }
func (i *InputObject) TypeKind() Kind          { return KindInputObject }
func (i *InputObject) TypeDescription() string { return i.Description }

// InputField is a field of an input object
type InputField struct {
	Name        string
	Description string
	Type        *TypeRef
	Scope       Scope
}

// GetName returns the input field name
func (f *InputField) GetName() string { return f.Name }

// Enum is an enumeration type. Each value carries an arbitrary payload that
// input coercion substitutes for the value name.
type Enum struct {
	Name        string
	Description string
	Values      EnumValues
	Scope       Scope
}

func (e *Enum) TypeName() string        { return e.Name }
func (e *Enum) TypeKind() Kind          { return KindEnum }
func (e *Enum) TypeDescription() string { return e.Description }

// EnumValue is one enumeration member
type EnumValue struct {
	Name        string
	Description string
	Value       interface{}
}

// GetName returns the enum value name
func (v *EnumValue) GetName() string { return v.Name }

// BuiltinScalars returns the scalars every schema starts with
func BuiltinScalars() []*Scalar {
	return []*Scalar{
		{Name: ScalarInt},
		{Name: ScalarFloat},
		{Name: ScalarString},
		{Name: ScalarBoolean},
		{Name: ScalarBigInt, Description: "A signed eight-byte integer, serialized as a string."},
		{Name: ScalarBigFloat, Description: "An arbitrary precision number, serialized as a string."},
		{Name: ScalarDate, Description: "A calendar date in YYYY-MM-DD format."},
		{Name: ScalarDatetime, Description: "A point in time as described by the ISO 8601 standard."},
		{Name: ScalarJSON, Description: "A JavaScript object encoded in the JSON format."},
	}
}
