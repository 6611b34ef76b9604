package pmpo

import (
	"github.com/YuminosukeSato/pmpo/label"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/selection"
	"github.com/YuminosukeSato/pmpo/stats"
)

// DefaultLabelAlias is the name of the boolean label column the builder adds
// to its copy of the dataset.
const DefaultLabelAlias = "pMPO_POSITIVE"

type builderConfig struct {
	good            label.GoodValue
	alias           string
	stats           stats.Options
	r2Cutoff        float64
	sigmoidal       bool
	caseInsensitive bool
	logger          log.Logger
}

func defaultBuilderConfig() *builderConfig {
	return &builderConfig{
		good:            label.Default(),
		alias:           DefaultLabelAlias,
		stats:           stats.DefaultOptions(),
		r2Cutoff:        selection.DefaultR2Cutoff,
		sigmoidal:       true,
		caseInsensitive: true,
	}
}

// Option is a function that configures a Builder
type Option func(*builderConfig)

// WithGoodValue sets how raw labels are judged good
func WithGoodValue(g label.GoodValue) Option {
	return func(c *builderConfig) {
		c.good = g
	}
}

// WithLabelAlias sets the name of the boolean label column
func WithLabelAlias(alias string) Option {
	return func(c *builderConfig) {
		c.alias = alias
	}
}

// WithMinSamples sets the minimum number of values per group
func WithMinSamples(n int) Option {
	return func(c *builderConfig) {
		c.stats.MinSamples = n
	}
}

// WithPValueCutoff sets the significance threshold
func WithPValueCutoff(p float64) Option {
	return func(c *builderConfig) {
		c.stats.PValueCutoff = p
	}
}

// WithQValueCutoff sets the sigmoid steepness parameter
func WithQValueCutoff(q float64) Option {
	return func(c *builderConfig) {
		c.stats.QValueCutoff = q
	}
}

// WithR2Cutoff sets the maximum r² allowed between selected descriptors
func WithR2Cutoff(r2 float64) Option {
	return func(c *builderConfig) {
		c.r2Cutoff = r2
	}
}

// WithSigmoidalCorrection sets whether the built model applies sigmoidal corrections
func WithSigmoidalCorrection(use bool) Option {
	return func(c *builderConfig) {
		c.sigmoidal = use
	}
}

// WithCaseInsensitive sets whether the built model ignores descriptor case
func WithCaseInsensitive(ci bool) Option {
	return func(c *builderConfig) {
		c.caseInsensitive = ci
	}
}

// WithIgnoreColumns excludes numeric columns from the descriptor set
func WithIgnoreColumns(names ...string) Option {
	return func(c *builderConfig) {
		c.stats.Ignore = append(c.stats.Ignore, names...)
	}
}

// WithLogger sets the logger used for build progress
func WithLogger(l log.Logger) Option {
	return func(c *builderConfig) {
		c.logger = l
	}
}
