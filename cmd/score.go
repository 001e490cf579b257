package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mapline/prospect-cli/internal/exporter"
	"github.com/mapline/prospect-cli/internal/model"
)

var (
	scoreCSVPath string
	scoreFormat  string
	scoreOutput  string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Re-score listings from a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := newScorer()
		if err != nil {
			return err
		}

		listings, err := exporter.ReadListingsCSV(scoreCSVPath)
		if err != nil {
			return err
		}

		results := make([]model.ScoredListing, 0, len(listings))
		skipped := 0
		for _, l := range listings {
			s, err := sc.Score(l)
			if err != nil {
				zap.L().Warn("skipping listing", zap.String("name", l.Name), zap.Error(err))
				skipped++
				continue
			}
			results = append(results, *s)
		}
		zap.L().Info("scored listings",
			zap.Int("scored", len(results)),
			zap.Int("skipped", skipped),
		)

		var w *os.File
		if scoreOutput != "" {
			w, err = os.Create(scoreOutput)
			if err != nil {
				return eris.Wrapf(err, "score: create %s", scoreOutput)
			}
			defer w.Close() //nolint:errcheck
		} else {
			w = os.Stdout
		}

		switch scoreFormat {
		case "csv":
			return exporter.WriteCSV(w, results)
		case "table":
			exporter.WriteTable(w, results)
			return nil
		default:
			return eris.Errorf("score: unsupported format %q", scoreFormat)
		}
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCSVPath, "csv", "", "listings CSV to score")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: csv or table")
	scoreCmd.Flags().StringVar(&scoreOutput, "out", "", "output file (default stdout)")
	_ = scoreCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(scoreCmd)
}
