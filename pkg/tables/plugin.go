package tables

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/introspection"
)

// Simple collection modes
const (
	SimpleCollectionsOmit = "omit"
	SimpleCollectionsOnly = "only"
	SimpleCollectionsBoth = "both"
)

// PluginName identifies the table generator in build logs
const PluginName = "tables"

// ClassesKey holds the classes exposed by the table generator, in
// introspection order
var ClassesKey = build.NewKey[[]*introspection.Class]("tables")

// Options configures the table generator
type Options struct {
	// Schemas limits generation to these namespaces; empty means all
	// namespaces in the snapshot
	Schemas []string
	// SimpleCollections controls list fields next to connections
	SimpleCollections string
}

// Plugin generates row types, connections, sort enums, condition inputs and
// the root query fields for every readable table
type Plugin struct {
	opts Options
	log  *logrus.Logger
}

// NewPlugin creates the table generator
func NewPlugin(opts Options, log *logrus.Logger) *Plugin {
	if log == nil {
		log = logrus.New()
	}
	if opts.SimpleCollections == "" {
		opts.SimpleCollections = SimpleCollectionsOmit
	}
	return &Plugin{opts: opts, log: log}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return PluginName
}

// Register attaches the build and init hooks
func (p *Plugin) Register(b *build.Builder) error {
	switch p.opts.SimpleCollections {
	case SimpleCollectionsOmit, SimpleCollectionsOnly, SimpleCollectionsBoth:
	default:
		return fmt.Errorf("invalid simple collections mode: %s", p.opts.SimpleCollections)
	}
	b.HookBuild(p.scan)
	b.HookInit(p.generate)
	return nil
}

func (p *Plugin) scan(s *build.State) (*build.State, error) {
	snapshot, err := build.MustValue(s, build.IntrospectionKey)
	if err != nil {
		return nil, err
	}

	var classes []*introspection.Class
	for _, c := range snapshot.Classes {
		if p.exposed(c) {
			classes = append(classes, c)
		}
	}

	p.log.WithField("tables", len(classes)).Debug("Collected readable tables")
	return build.WithValue(s, ClassesKey, classes)
}

func (p *Plugin) exposed(c *introspection.Class) bool {
	if c.Namespace == nil || !c.IsSelectable {
		return false
	}
	if introspection.Omit(c, "read") {
		return false
	}
	if len(p.opts.Schemas) == 0 {
		return true
	}
	for _, s := range p.opts.Schemas {
		if s == c.Namespace.Name {
			return true
		}
	}
	return false
}

func (p *Plugin) wantConnections() bool {
	return p.opts.SimpleCollections != SimpleCollectionsOnly
}

func (p *Plugin) wantLists() bool {
	return p.opts.SimpleCollections != SimpleCollectionsOmit
}
