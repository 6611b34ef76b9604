package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pmpo/dataset"
	"github.com/YuminosukeSato/pmpo/pkg/errors"
	"github.com/YuminosukeSato/pmpo/pkg/log"
	"github.com/YuminosukeSato/pmpo/pmpo"
)

func (a *app) scoreCmd() *cobra.Command {
	var (
		modelPath string
		input     string
		idColumn  string
	)

	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Score the rows of a CSV file with a saved model",
		Example: `  pmpo score --model cns.json --input candidates.csv --id Name > scores.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := pmpo.LoadModel(modelPath)
			if err != nil {
				return err
			}
			ds, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			var ids []any
			if idColumn != "" {
				var ok bool
				if ids, ok = ds.Values(idColumn); !ok {
					return errors.Wrapf(errors.ErrColumnNotFound, "id column %s", idColumn)
				}
			}

			scores := pmpo.ScoreDataset(m, ds)
			log.GetLoggerWithName("pmpo.cmd").Info("Rows scored", log.ModelNameKey, m.Name(), log.ScoredKey, len(scores))
			return writeScores(cmd.OutOrStdout(), idColumn, ids, scores)
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Saved model (.json or gob)")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "CSV file to score, - for stdin")
	cmd.Flags().StringVar(&idColumn, "id", "", "Column copied into the output to identify rows")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func readInput(stdin io.Reader, path string) (*dataset.Dataset, error) {
	if path == "-" {
		return dataset.ReadCSV(stdin)
	}
	return dataset.ReadCSVFile(path)
}

func writeScores(w io.Writer, idColumn string, ids []any, scores []float64) error {
	cw := csv.NewWriter(w)
	header := []string{"score"}
	if idColumn != "" {
		header = []string{idColumn, "score"}
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write scores")
	}
	for i, s := range scores {
		rec := []string{strconv.FormatFloat(s, 'g', -1, 64)}
		if idColumn != "" {
			id := ""
			if ids[i] != nil {
				id = fmt.Sprint(ids[i])
			}
			rec = append([]string{id}, rec...)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "failed to write scores")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to write scores")
}
