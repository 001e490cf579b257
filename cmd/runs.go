package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapline/prospect-cli/internal/exporter"
	"github.com/mapline/prospect-cli/internal/model"
	"github.com/mapline/prospect-cli/internal/store"
)

var (
	runsStatus string
	runsSearch string
	runsLimit  int
	runsJSON   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List collection runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Search: runsSearch,
			Limit:  runsLimit,
		})
		if err != nil {
			return err
		}

		if runsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run:     %s\n", run.ID)
		fmt.Printf("Search:  %s\n", run.Search)
		fmt.Printf("Status:  %s\n", run.Status)
		if run.Error != "" {
			fmt.Printf("Error:   %s\n", run.Error)
		}
		if run.Stats != nil {
			fmt.Printf("Found:   %d (scored %d, skipped %d, disqualified %d)\n",
				run.Stats.ListingsFound, run.Stats.Scored, run.Stats.Skipped, run.Stats.Disqualified)
			fmt.Printf("Leads:   %d high, %d potential\n", run.Stats.HighLeads, run.Stats.PotentialLeads)
			fmt.Printf("API:     %d calls\n", run.Stats.APICalls)
		}
		fmt.Println()

		listings, err := st.ListListings(ctx, run.ID)
		if err != nil {
			return err
		}
		exporter.WriteTable(os.Stdout, listings)
		return nil
	},
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.CollectionRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSEARCH\tSTATUS\tFOUND\tHIGH\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t-----\t----\t-------")

	for _, r := range runs {
		found, high := "", ""
		if r.Stats != nil {
			found = fmt.Sprintf("%d", r.Stats.ListingsFound)
			high = fmt.Sprintf("%d", r.Stats.HighLeads)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Search, r.Status, found, high,
			r.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status")
	runsCmd.Flags().StringVar(&runsSearch, "search", "", "filter by search query")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "max runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "output as JSON")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
