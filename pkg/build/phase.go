package build

import (
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// Phase names one step of the build pipeline
type Phase string

// Phases run in exactly this order
const (
	PhaseInflection   Phase = "inflection"
	PhaseBuild        Phase = "build"
	PhaseInit         Phase = "init"
	PhaseFieldArgs    Phase = "field:args"
	PhaseObjectFields Phase = "object:fields"
	PhaseEnumValues   Phase = "enum:values"
)

// Phases returns every phase in execution order
func Phases() []Phase {
	return []Phase{
		PhaseInflection,
		PhaseBuild,
		PhaseInit,
		PhaseFieldArgs,
		PhaseObjectFields,
		PhaseEnumValues,
	}
}

// InflectionHook adds naming rules
type InflectionHook func(inf *Inflector) (*Inflector, error)

// BuildHook extends the build state
type BuildHook func(s *State) (*State, error)

// InitHook registers named types
type InitHook func(ctx *InitContext) error

// FieldArgsHook returns the arguments of one object field
type FieldArgsHook func(args schema.Arguments, ctx *FieldArgsContext) (schema.Arguments, error)

// ObjectFieldsHook returns the fields of one object type
type ObjectFieldsHook func(fields schema.Fields, ctx *ObjectFieldsContext) (schema.Fields, error)

// EnumValuesHook returns the values of one enum type
type EnumValuesHook func(values schema.EnumValues, ctx *EnumValuesContext) (schema.EnumValues, error)
