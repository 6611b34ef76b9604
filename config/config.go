// Package config loads the YAML file that drives the pmpo command: builder
// hyperparameters, the training data source, the scoring server and logging.
package config

import (
	"context"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/label"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/pmpo"
	"github.com/YuminosukeSato/pmpo/selection"
	"github.com/YuminosukeSato/pmpo/stats"
)

// Config is the root of the YAML file.
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Data   DataConfig   `yaml:"data"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ModelConfig holds the builder settings.
type ModelConfig struct {
	Name        string `yaml:"name"`
	LabelColumn string `yaml:"label_column"`
	// GoodValue selects the good label. Unset or "default" means the
	// default truth set.
	GoodValue           interface{} `yaml:"good_value,omitempty"`
	LabelAlias          string      `yaml:"label_alias"`
	MinSamples          int         `yaml:"min_samples"`
	PValueCutoff        float64     `yaml:"p_value_cutoff"`
	QValueCutoff        float64     `yaml:"q_value_cutoff"`
	R2Cutoff            float64     `yaml:"r2_cutoff"`
	SigmoidalCorrection bool        `yaml:"sigmoidal_correction"`
	CaseInsensitive     bool        `yaml:"case_insensitive"`
	IgnoreColumns       []string    `yaml:"ignore_columns,omitempty"`
}

// DataConfig names the training data: either a CSV file or a SQL query.
type DataConfig struct {
	CSV    string `yaml:"csv,omitempty"`
	Driver string `yaml:"driver,omitempty"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn,omitempty"`
	Query  string `yaml:"query,omitempty"`
}

// ServerConfig configures the scoring server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// ScoreRate caps POST /score requests per second; 0 means unlimited.
	ScoreRate  float64 `yaml:"score_rate,omitempty"`
	ScoreBurst int     `yaml:"score_burst,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the published builder defaults and a local server.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:                "pMPO",
			LabelAlias:          pmpo.DefaultLabelAlias,
			MinSamples:          stats.DefaultMinSamples,
			PValueCutoff:        stats.DefaultPValueCutoff,
			QValueCutoff:        stats.DefaultQValueCutoff,
			R2Cutoff:            selection.DefaultR2Cutoff,
			SigmoidalCorrection: true,
			CaseInsensitive:     true,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. It does not require a data source; see
// DataConfig.Validate.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return errors.NewValidationError("model.name", "is required", c.Model.Name)
	}
	if c.Model.LabelAlias == "" {
		return errors.NewValidationError("model.label_alias", "is required", c.Model.LabelAlias)
	}
	opts := stats.Options{
		MinSamples:   c.Model.MinSamples,
		PValueCutoff: c.Model.PValueCutoff,
		QValueCutoff: c.Model.QValueCutoff,
	}
	if err := opts.Validate(); err != nil {
		return errors.Wrap(err, "model")
	}
	if !(c.Model.R2Cutoff >= 0) {
		return errors.NewValidationError("model.r2_cutoff", "must be a non-negative number", c.Model.R2Cutoff)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", err.Error(), c.Log.Level)
	}
	if c.Server.Addr == "" {
		return errors.NewValidationError("server.addr", "is required", c.Server.Addr)
	}
	if !(c.Server.ScoreRate >= 0) || c.Server.ScoreBurst < 0 {
		return errors.NewValidationError("server.score_rate", "must be non-negative", c.Server.ScoreRate)
	}
	if c.Data.CSV != "" || c.Data.Query != "" {
		return c.Data.Validate()
	}
	return nil
}

// Validate checks that exactly one complete source is configured.
func (d DataConfig) Validate() error {
	switch {
	case d.CSV != "" && d.Query != "":
		return errors.NewValidationError("data", "csv and query are mutually exclusive", d.CSV)
	case d.CSV != "":
		return nil
	case d.Query == "":
		return errors.NewValidationError("data", "csv or query is required", "")
	}
	switch d.Driver {
	case "sqlite", "postgres":
	default:
		return errors.NewValidationError("data.driver", "must be sqlite or postgres", d.Driver)
	}
	if d.DSN == "" {
		return errors.NewValidationError("data.dsn", "is required with a query", d.DSN)
	}
	return nil
}

// Open loads the configured dataset. SQL drivers must be registered by the
// caller.
func (d DataConfig) Open(ctx context.Context) (*dataset.Dataset, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.CSV != "" {
		return dataset.ReadCSVFile(d.CSV)
	}
	db, err := sqlx.ConnectContext(ctx, d.Driver, d.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", d.Driver)
	}
	defer db.Close()
	return dataset.LoadSQL(ctx, db, d.Query)
}

// DefaultGoodValue names the built-in truth set in good_value.
const DefaultGoodValue = "default"

// Good converts the configured good label.
func (m ModelConfig) Good() label.GoodValue {
	if m.GoodValue == nil || m.GoodValue == DefaultGoodValue {
		return label.Default()
	}
	return label.Equals(m.GoodValue)
}

// BuilderOptions converts the model section into builder options.
func (c *Config) BuilderOptions() []pmpo.Option {
	m := c.Model
	opts := []pmpo.Option{
		pmpo.WithGoodValue(m.Good()),
		pmpo.WithLabelAlias(m.LabelAlias),
		pmpo.WithMinSamples(m.MinSamples),
		pmpo.WithPValueCutoff(m.PValueCutoff),
		pmpo.WithQValueCutoff(m.QValueCutoff),
		pmpo.WithR2Cutoff(m.R2Cutoff),
		pmpo.WithSigmoidalCorrection(m.SigmoidalCorrection),
		pmpo.WithCaseInsensitive(m.CaseInsensitive),
	}
	if len(m.IgnoreColumns) > 0 {
		opts = append(opts, pmpo.WithIgnoreColumns(m.IgnoreColumns...))
	}
	return opts
}
