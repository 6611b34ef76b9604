package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	coremodel "github.com/YuminosukeSato/pmpo/core/model"
	"github.com/YuminosukeSato/pmpo/diagnostics"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/pmpo"
	"github.com/YuminosukeSato/pmpo/selection"
	"github.com/YuminosukeSato/pmpo/stats"
)

func (a *app) buildCmd() *cobra.Command {
	var (
		out        string
		statsPath  string
		corrPath   string
		plotDir    string
		plotFormat string
		reference  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a pMPO model from labelled training data",
		Long: `Build reads a CSV file or SQL query, computes the descriptor statistics,
selects uncorrelated significant descriptors and writes the model.

A model path ending in .json is written as a model document; any other
extension is written as gob.`,
		Example: `  pmpo build --csv compounds.csv --label Active --out cns.json
  pmpo build --driver sqlite --dsn train.db --query "SELECT * FROM compounds" --label Active --out cns.gob`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if cfg.Model.LabelColumn == "" {
				return errors.NewValidationError("model.label_column", "is required", "")
			}
			logger := log.GetLoggerWithName("pmpo.cmd")

			ds, err := cfg.Data.Open(cmd.Context())
			if err != nil {
				return err
			}
			b, err := pmpo.NewBuilder(ds, cfg.Model.LabelColumn, cfg.Model.Name, cfg.BuilderOptions()...)
			if err != nil {
				return err
			}
			m, err := b.Model()
			if err != nil {
				return err
			}

			if statsPath != "" {
				if err := writeStatistics(statsPath, b.Statistics()); err != nil {
					return err
				}
			}
			if corrPath != "" {
				if err := writeCorrelation(corrPath, b.Correlation()); err != nil {
					return err
				}
			}
			if coremodel.FormatFromPath(out) == coremodel.FormatJSON {
				doc, err := b.Document()
				if err != nil {
					return err
				}
				err = coremodel.SaveDocument(doc, out)
				if err != nil {
					return err
				}
			} else if err := pmpo.SaveModel(m, out); err != nil {
				return err
			}
			logger.Info("Model saved", log.BuildIDKey, b.BuildID(), "path", out)

			if plotDir != "" {
				paths, err := diagnostics.SaveDescriptorPlots(m, b.Statistics(), plotDir, plotFormat)
				if err != nil {
					return err
				}
				logger.Info("Plots written", "dir", plotDir, "count", len(paths))
			}

			ev, err := pmpo.Evaluate(m, ds, cfg.Model.LabelColumn, cfg.Model.Good(), reference)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, m.String())
			fmt.Fprintf(w, "rows=%d good=%d auc=%.4f\n", ev.Rows, ev.Good, ev.AUC)
			if reference != "" {
				fmt.Fprintf(w, "reference=%s compared=%d mae=%.4f rmse=%.4f r2=%.4f\n",
					reference, ev.Compared, ev.MAE, ev.RMSE, ev.R2)
			}
			return nil
		},
	}

	buildFlags(cmd.Flags())
	cmd.Flags().StringVarP(&out, "out", "o", "pmpo_model.json", "Model output path (.json or gob)")
	cmd.Flags().StringVar(&statsPath, "stats", "", "Write the descriptor statistics table as CSV")
	cmd.Flags().StringVar(&corrPath, "correlation", "", "Write the r² matrix of the significant descriptors as CSV")
	cmd.Flags().StringVar(&plotDir, "plots", "", "Write one curve plot per selected descriptor into this directory")
	cmd.Flags().StringVar(&plotFormat, "plot-format", "png", "Plot image format")
	cmd.Flags().StringVar(&reference, "reference", "", "Numeric column of reference scores to compare against")
	return cmd
}

func writeStatistics(path string, t stats.Table) error {
	return writeFile(path, func(w io.Writer) error { return stats.WriteCSV(w, t) })
}

func writeCorrelation(path string, m *selection.CorrelationMatrix) error {
	return writeFile(path, m.WriteCSV)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
