package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mapline/prospect-cli/internal/model"
)

// WriteTable writes scored listings as an aligned terminal table.
func WriteTable(out io.Writer, results []model.ScoredListing) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tRATING\tREVIEWS\tWEBSITE\tSCORE\tTYPE")
	_, _ = fmt.Fprintln(w, "----\t------\t-------\t-------\t-----\t----")

	for _, r := range results {
		rating := "-"
		if r.Rating != nil {
			rating = fmt.Sprintf("%.1f", *r.Rating)
		}
		reviews := "-"
		if r.ReviewCount != nil {
			reviews = fmt.Sprintf("%d", *r.ReviewCount)
		}
		website := "no"
		if r.HasWebsite {
			website = "yes"
		}

		name := r.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			name, rating, reviews, website, r.LeadScore, r.LeadType)
	}
	_ = w.Flush()
}
