package build

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// Plugin contributes hooks to a build
type Plugin interface {
	Name() string
	Register(b *Builder) error
}

// Observer is notified when a build finishes
type Observer interface {
	BuildCompleted(buildID string, duration time.Duration, err error)
}

// Result is the outcome of one build
type Result struct {
	ID       string
	Schema   *schema.Schema
	State    *State
	Notices  []Notice
	Duration time.Duration
}

type hook[F any] struct {
	plugin string
	fn     F
}

// Builder collects plugin hooks and runs the phase pipeline. Hooks run in
// registration order within each phase.
type Builder struct {
	log      *logrus.Logger
	observer Observer
	plugins  []string
	current  string

	inflection   []hook[InflectionHook]
	build        []hook[BuildHook]
	init         []hook[InitHook]
	fieldArgs    []hook[FieldArgsHook]
	objectFields []hook[ObjectFieldsHook]
	enumValues   []hook[EnumValuesHook]
}

// NewBuilder creates an empty builder
func NewBuilder(log *logrus.Logger) *Builder {
	if log == nil {
		log = logrus.New()
	}
	return &Builder{log: log}
}

// SetObserver registers a build observer, typically metrics
func (b *Builder) SetObserver(o Observer) {
	b.observer = o
}

// Use registers plugins in order
func (b *Builder) Use(plugins ...Plugin) error {
	for _, p := range plugins {
		if p == nil {
			return fmt.Errorf("cannot register nil plugin")
		}
		for _, name := range b.plugins {
			if name == p.Name() {
				return fmt.Errorf("plugin already registered: %s", p.Name())
			}
		}
		b.plugins = append(b.plugins, p.Name())
		b.current = p.Name()
		err := p.Register(b)
		b.current = ""
		if err != nil {
			return fmt.Errorf("failed to register plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Plugins returns registered plugin names in order
func (b *Builder) Plugins() []string {
	out := make([]string, len(b.plugins))
	copy(out, b.plugins)
	return out
}

// HookInflection registers an inflection phase handler
func (b *Builder) HookInflection(fn InflectionHook) {
	b.inflection = append(b.inflection, hook[InflectionHook]{b.current, fn})
}

// HookBuild registers a build phase handler
func (b *Builder) HookBuild(fn BuildHook) {
	b.build = append(b.build, hook[BuildHook]{b.current, fn})
}

// HookInit registers an init phase handler
func (b *Builder) HookInit(fn InitHook) {
	b.init = append(b.init, hook[InitHook]{b.current, fn})
}

// HookFieldArgs registers a field:args phase handler
func (b *Builder) HookFieldArgs(fn FieldArgsHook) {
	b.fieldArgs = append(b.fieldArgs, hook[FieldArgsHook]{b.current, fn})
}

// HookObjectFields registers an object:fields phase handler
func (b *Builder) HookObjectFields(fn ObjectFieldsHook) {
	b.objectFields = append(b.objectFields, hook[ObjectFieldsHook]{b.current, fn})
}

// HookEnumValues registers an enum:values phase handler
func (b *Builder) HookEnumValues(fn EnumValuesHook) {
	b.enumValues = append(b.enumValues, hook[EnumValuesHook]{b.current, fn})
}

// Build runs every phase over one introspection snapshot. Any hook error
// aborts the build.
func (b *Builder) Build(ctx context.Context, snapshot *introspection.Result) (*Result, error) {
	start := time.Now()
	id := uuid.New().String()
	log := b.log.WithField("build_id", id)

	res, err := b.run(ctx, id, log, snapshot)
	duration := time.Since(start)

	if b.observer != nil {
		b.observer.BuildCompleted(id, duration, err)
	}
	if err != nil {
		log.WithError(err).Error("Schema build failed")
		return nil, err
	}

	res.Duration = duration
	log.WithFields(logrus.Fields{
		"duration": duration,
		"types":    len(res.Schema.Types()),
		"notices":  len(res.Notices),
	}).Info("Schema build completed")
	return res, nil
}

func (b *Builder) run(ctx context.Context, id string, log *logrus.Entry, snapshot *introspection.Result) (*Result, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("build requires an introspection result")
	}
	snapshot.Link()

	var notices []Notice
	hc := func(phase Phase, plugin, typ string, s *State, inf *Inflector) HookContext {
		return HookContext{
			State:     s,
			Inflector: inf,
			phase:     phase,
			plugin:    plugin,
			typ:       typ,
			log:       log.WithFields(logrus.Fields{"phase": string(phase), "plugin": plugin}),
			notices:   &notices,
		}
	}

	// inflection
	inf := NewInflector()
	for _, h := range b.inflection {
		next, err := h.fn(inf)
		if err != nil {
			return nil, phaseError(PhaseInflection, h.plugin, err)
		}
		if next != nil {
			inf = next
		}
	}

	// build
	state := NewState()
	var err error
	if state, err = WithValue(state, BuildIDKey, id); err != nil {
		return nil, err
	}
	if state, err = WithValue(state, IntrospectionKey, snapshot); err != nil {
		return nil, err
	}
	if state, err = WithValue(state, InflectorKey, inf); err != nil {
		return nil, err
	}
	for _, h := range b.build {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := h.fn(state)
		if err != nil {
			return nil, phaseError(PhaseBuild, h.plugin, err)
		}
		if next == nil {
			return nil, phaseError(PhaseBuild, h.plugin, fmt.Errorf("hook returned nil state"))
		}
		if next.version < state.version {
			return nil, phaseError(PhaseBuild, h.plugin, fmt.Errorf("hook returned an older state"))
		}
		state = next
	}

	// init
	registry := schema.NewRegistry()
	for _, h := range b.init {
		ic := &InitContext{
			HookContext: hc(PhaseInit, h.plugin, "", state, inf),
			registry:    registry,
		}
		if err := h.fn(ic); err != nil {
			return nil, phaseError(PhaseInit, h.plugin, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// field:args
	for _, t := range registry.Types() {
		obj, ok := t.(*schema.Object)
		if !ok || len(b.fieldArgs) == 0 {
			continue
		}
		fields := make(schema.Fields, len(obj.Fields))
		for i, f := range obj.Fields {
			args := f.Args
			var generators []schema.ArgDataGenerator
			for _, h := range b.fieldArgs {
				fc := &FieldArgsContext{
					HookContext: hc(PhaseFieldArgs, h.plugin, obj.Name, state, inf),
					Self:        obj,
					Field:       f,
					Scope:       f.Scope,
					registry:    registry,
				}
				next, err := h.fn(args, fc)
				if err != nil {
					return nil, phaseError(PhaseFieldArgs, h.plugin, fmt.Errorf("%s.%s: %w", obj.Name, f.Name, err))
				}
				args = next
				generators = append(generators, fc.generators...)
			}
			nf := *f
			nf.Args = args
			if len(generators) > 0 {
				nf.ArgDataGenerators = append(append([]schema.ArgDataGenerator{}, f.ArgDataGenerators...), generators...)
			}
			fields[i] = &nf
		}
		next := *obj
		next.Fields = fields
		if err := registry.Replace(&next); err != nil {
			return nil, err
		}
	}

	// object:fields
	for _, t := range registry.Types() {
		obj, ok := t.(*schema.Object)
		if !ok || len(b.objectFields) == 0 {
			continue
		}
		fields := obj.Fields
		for _, h := range b.objectFields {
			oc := &ObjectFieldsContext{
				HookContext: hc(PhaseObjectFields, h.plugin, obj.Name, state, inf),
				Self:        obj,
				Scope:       obj.Scope,
			}
			next, err := h.fn(fields, oc)
			if err != nil {
				return nil, phaseError(PhaseObjectFields, h.plugin, fmt.Errorf("%s: %w", obj.Name, err))
			}
			fields = next
		}
		next := *obj
		next.Fields = fields
		if err := registry.Replace(&next); err != nil {
			return nil, err
		}
	}

	// enum:values
	for _, t := range registry.Types() {
		enum, ok := t.(*schema.Enum)
		if !ok || len(b.enumValues) == 0 {
			continue
		}
		values := enum.Values
		for _, h := range b.enumValues {
			ec := &EnumValuesContext{
				HookContext: hc(PhaseEnumValues, h.plugin, enum.Name, state, inf),
				Self:        enum,
				Scope:       enum.Scope,
			}
			next, err := h.fn(values, ec)
			if err != nil {
				return nil, phaseError(PhaseEnumValues, h.plugin, fmt.Errorf("%s: %w", enum.Name, err))
			}
			values = next
		}
		next := *enum
		next.Values = values
		if err := registry.Replace(&next); err != nil {
			return nil, err
		}
	}

	s, err := schema.NewSchema(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble schema: %w", err)
	}

	return &Result{
		ID:      id,
		Schema:  s,
		State:   state,
		Notices: notices,
	}, nil
}

func phaseError(phase Phase, plugin string, err error) error {
	return fmt.Errorf("%s hook of plugin %s failed: %w", phase, plugin, err)
}
