package zombodb

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/tables"
)

// PluginName identifies the search plugin in build logs
const PluginName = "zombodb"

// State keys defined by the build hook
var (
	TablesKey = build.NewKey[EligibleSet]("zombodbTables")
	NamesKey  = build.NewKey[Names]("zombodbNames")
)

// Recorder receives search usage measurements
type Recorder interface {
	EligibleTables(n int)
	SearchLowered(table string, withMinScore bool)
	ScoreSelected(table string)
}

type nopRecorder struct{}

func (nopRecorder) EligibleTables(int)         {}
func (nopRecorder) SearchLowered(string, bool) {}
func (nopRecorder) ScoreSelected(string)       {}

// Options configures the search plugin
type Options struct {
	// SearchInputField names the search argument (default "search")
	SearchInputField string
	// ScoreField names the score field (default "_score")
	ScoreField string
	// Metrics receives usage measurements; nil disables them
	Metrics Recorder
}

// Plugin adds full-text search to tables carrying a zombodb index: a
// search argument on their collections, a score field on their row type
// and score values in their sort enum
type Plugin struct {
	opts    Options
	metrics Recorder
	log     *logrus.Logger
}

// NewPlugin creates the search plugin
func NewPlugin(opts Options, log *logrus.Logger) *Plugin {
	if log == nil {
		log = logrus.New()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Plugin{opts: opts, metrics: metrics, log: log}
}

// Name returns the plugin name
func (p *Plugin) Name() string {
	return PluginName
}

// Register attaches one hook per phase
func (p *Plugin) Register(b *build.Builder) error {
	b.HookInflection(p.inflect)
	b.HookBuild(p.scan)
	b.HookInit(p.registerFilterType)
	b.HookFieldArgs(p.addSearchArg)
	b.HookObjectFields(p.addScoreField)
	b.HookEnumValues(p.addScoreOrder)
	return nil
}

func (p *Plugin) inflect(inf *build.Inflector) (*build.Inflector, error) {
	next, collisions := inf.Extend(InflectionRules(p.opts))
	if len(collisions) > 0 {
		p.log.WithField("rules", collisions).Info("Overriding existing inflection rules")
	}
	return next, nil
}

func (p *Plugin) scan(s *build.State) (*build.State, error) {
	snapshot, err := build.MustValue(s, build.IntrospectionKey)
	if err != nil {
		return nil, err
	}
	inf, err := build.MustValue(s, build.InflectorKey)
	if err != nil {
		return nil, err
	}
	exposed, err := build.MustValue(s, tables.ClassesKey)
	if err != nil {
		return nil, fmt.Errorf("%s plugin must be registered after the tables plugin: %w", PluginName, err)
	}
	names, err := ResolveNames(inf)
	if err != nil {
		return nil, err
	}

	log := p.log.WithField("plugin", PluginName)
	if id, ok := build.Value(s, build.BuildIDKey); ok {
		log = log.WithField("build_id", id)
	}
	eligible := Scan(snapshot, log).Restrict(exposed)
	p.metrics.EligibleTables(len(eligible))

	if s, err = build.WithValue(s, TablesKey, eligible); err != nil {
		return nil, err
	}
	return build.WithValue(s, NamesKey, names)
}
