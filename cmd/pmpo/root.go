package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/pmpo/config"
	"github.com/YuminosukeSato/pmpo/pkg/log"
)

// app carries state shared by the subcommands.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pmpo",
		Short:         "Build and apply probabilistic multi-parameter optimisation models",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Flags())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file (optional)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	root.AddCommand(a.buildCmd(), a.scoreCmd(), a.serveCmd())
	return root
}

// load reads the config file, applies flag overrides and sets up logging.
func (a *app) load(fs *pflag.FlagSet) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := applyFlags(fs, cfg); err != nil {
		return err
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.Log.Level, nil); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// buildFlags registers the builder and data source flags.
func buildFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "Model name")
	fs.String("label", "", "Label column holding the good/bad classification")
	fs.String("good", "", "Label value counted as good, \"default\" for true/yes/active/good/1")
	fs.String("label-alias", "", "Name of the boolean label column added to the working copy")
	fs.Int("min-samples", 0, "Minimum non-missing values per group")
	fs.Float64("p-cutoff", 0, "Significance threshold for the Welch t-test")
	fs.Float64("q-cutoff", 0, "Sigmoid steepness parameter")
	fs.Float64("r2-cutoff", 0, "Maximum r² between selected descriptors")
	fs.Bool("no-sigmoid", false, "Disable the sigmoidal correction")
	fs.Bool("case-sensitive", false, "Match descriptor names case-sensitively")
	fs.StringSlice("ignore", nil, "Numeric columns that are not descriptors")

	fs.String("csv", "", "Training data CSV file")
	fs.String("driver", "", "SQL driver for --query: sqlite or postgres")
	fs.String("dsn", "", "SQL data source name")
	fs.String("query", "", "SQL query returning the training data")
}

// applyFlags copies explicitly set flags over cfg. Flags a command does not
// define are skipped.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var err error
	changed := func(name string) bool {
		return err == nil && fs.Lookup(name) != nil && fs.Changed(name)
	}
	m := &cfg.Model
	if changed("name") {
		m.Name, err = fs.GetString("name")
	}
	if changed("label") {
		m.LabelColumn, err = fs.GetString("label")
	}
	if changed("good") {
		var good string
		if good, err = fs.GetString("good"); err == nil {
			m.GoodValue = parseGoodValue(good)
		}
	}
	if changed("label-alias") {
		m.LabelAlias, err = fs.GetString("label-alias")
	}
	if changed("min-samples") {
		m.MinSamples, err = fs.GetInt("min-samples")
	}
	if changed("p-cutoff") {
		m.PValueCutoff, err = fs.GetFloat64("p-cutoff")
	}
	if changed("q-cutoff") {
		m.QValueCutoff, err = fs.GetFloat64("q-cutoff")
	}
	if changed("r2-cutoff") {
		m.R2Cutoff, err = fs.GetFloat64("r2-cutoff")
	}
	if changed("no-sigmoid") {
		var off bool
		if off, err = fs.GetBool("no-sigmoid"); err == nil {
			m.SigmoidalCorrection = !off
		}
	}
	if changed("case-sensitive") {
		var cs bool
		if cs, err = fs.GetBool("case-sensitive"); err == nil {
			m.CaseInsensitive = !cs
		}
	}
	if changed("ignore") {
		m.IgnoreColumns, err = fs.GetStringSlice("ignore")
	}

	d := &cfg.Data
	if changed("csv") {
		d.CSV, err = fs.GetString("csv")
	}
	if changed("driver") {
		d.Driver, err = fs.GetString("driver")
	}
	if changed("dsn") {
		d.DSN, err = fs.GetString("dsn")
	}
	if changed("query") {
		d.Query, err = fs.GetString("query")
	}
	if changed("addr") {
		cfg.Server.Addr, err = fs.GetString("addr")
	}
	return err
}

// parseGoodValue keeps numeric labels numeric so they match numeric columns.
// "default" selects the built-in truth set.
func parseGoodValue(s string) interface{} {
	if s == config.DefaultGoodValue {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
