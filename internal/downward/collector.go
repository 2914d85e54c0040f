package downward

import (
	"time"

	"github.com/spf13/afero"
)

// Snapshot is the result of one collection pass.
type Snapshot struct {
	Runtime     RuntimeContext
	Labels      LabelSet
	CollectedAt time.Time
}

// Complete reports whether every fact is present and the labels file was read.
func (s Snapshot) Complete() bool {
	return s.Runtime.Missing() == 0 && s.Labels.OK()
}

// Collector gathers a Snapshot from an environment and a file system.
// It holds only read-only dependencies and may be shared between goroutines;
// every call to Collect starts from scratch.
type Collector struct {
	env        Env
	fs         afero.Fs
	facts      []FactSource
	labelsPath string
	now        func() time.Time
}

// Option configures a Collector.
type Option func(*Collector)

// WithEnv sets the environment facts are read from.
func WithEnv(env Env) Option {
	return func(c *Collector) { c.env = env }
}

// WithFs sets the file system the labels file is read from.
func WithFs(fs afero.Fs) Option {
	return func(c *Collector) { c.fs = fs }
}

// WithLabelsPath overrides DefaultLabelsPath. An empty path is ignored.
func WithLabelsPath(path string) Option {
	return func(c *Collector) {
		if path != "" {
			c.labelsPath = path
		}
	}
}

// WithClock sets the time source used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// NewCollector returns a Collector reading the process environment and the
// host file system unless overridden by opts.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		env:        OSEnv{},
		fs:         afero.NewOsFs(),
		facts:      DefaultFacts(),
		labelsPath: DefaultLabelsPath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LabelsPath returns the labels file the collector reads.
func (c *Collector) LabelsPath() string { return c.labelsPath }

// Collect runs one pass over both channels. It never fails.
func (c *Collector) Collect() Snapshot {
	return Snapshot{
		Runtime:     ReadFacts(c.env, c.facts),
		Labels:      ReadLabels(c.fs, c.labelsPath),
		CollectedAt: c.now().UTC(),
	}
}
