// Package exporter renders scored listings as CSV, tables, and debug reports.
package exporter

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/mapline/prospect-cli/internal/model"
)

// csvHeader is the stable column order for scored exports. Downstream
// spreadsheet imports depend on it.
var csvHeader = []string{
	"business_name",
	"category",
	"rating",
	"reviews",
	"has_website",
	"website",
	"phone",
	"address",
	"lead_type",
	"classification_reason",
	"lead_score",
}

// WriteCSV writes scored listings with a header row in the stable column
// order.
func WriteCSV(w io.Writer, results []model.ScoredListing) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "exporter: write CSV header")
	}

	for _, r := range results {
		rating := ""
		if r.Rating != nil {
			rating = strconv.FormatFloat(*r.Rating, 'f', 1, 64)
		}
		reviews := ""
		if r.ReviewCount != nil {
			reviews = strconv.Itoa(*r.ReviewCount)
		}

		row := []string{
			r.Name,
			r.Category,
			rating,
			reviews,
			strconv.FormatBool(r.HasWebsite),
			r.Website,
			r.Phone,
			r.Address,
			string(r.LeadType),
			r.ClassificationReason,
			strconv.Itoa(r.LeadScore),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "exporter: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "exporter: flush CSV")
}

// WriteQualifiedCSV writes only the listings worth outreach: score strictly
// above minScore and not disqualified.
func WriteQualifiedCSV(w io.Writer, results []model.ScoredListing, minScore int) error {
	qualified := make([]model.ScoredListing, 0, len(results))
	for _, r := range results {
		if r.Disqualified || r.LeadScore <= minScore {
			continue
		}
		qualified = append(qualified, r)
	}
	return WriteCSV(w, qualified)
}

// ReadListingsCSV parses a raw listings CSV back into the model for
// re-scoring. The header row names the columns; order does not matter.
// Empty rating and reviews cells become absent values, not zeros.
func ReadListingsCSV(path string) ([]model.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "exporter: open listings CSV")
	}
	defer f.Close() //nolint:errcheck

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "exporter: read CSV header")
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["business_name"]; !ok {
		return nil, eris.New("exporter: CSV missing business_name column")
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var listings []model.Listing
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "exporter: read CSV line %d", line)
		}

		l := model.Listing{
			Name:     cell(row, "business_name"),
			Category: cell(row, "category"),
			Website:  cell(row, "website"),
			Phone:    cell(row, "phone"),
			Address:  cell(row, "address"),
			PlaceID:  cell(row, "place_id"),
			Source:   cell(row, "source"),
		}

		if s := cell(row, "rating"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "exporter: line %d: bad rating %q", line, s)
			}
			l.Rating = &v
		}
		if s := cell(row, "reviews"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, eris.Wrapf(err, "exporter: line %d: bad reviews %q", line, s)
			}
			l.ReviewCount = &v
		}

		listings = append(listings, l)
	}

	return listings, nil
}
