package exporter

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/mapline/prospect-cli/internal/model"
	"github.com/mapline/prospect-cli/internal/scorer"
)

// CandidateReason records why one website candidate was accepted or rejected.
type CandidateReason struct {
	URL    string `json:"url"`
	Result string `json:"result"`
}

// CandidateReport explains website resolution for one listing.
type CandidateReport struct {
	Name       string            `json:"business_name"`
	PlaceID    string            `json:"place_id,omitempty"`
	Website    string            `json:"website,omitempty"`
	Candidates []CandidateReason `json:"candidates"`
}

// BuildCandidateReports re-checks every recorded website candidate so a
// rejected listing can be audited after the fact.
func BuildCandidateReports(listings []model.Listing, v *scorer.Validator) []CandidateReport {
	reports := make([]CandidateReport, 0, len(listings))
	for _, l := range listings {
		r := CandidateReport{
			Name:       l.Name,
			PlaceID:    l.PlaceID,
			Website:    l.Website,
			Candidates: make([]CandidateReason, 0, len(l.WebsiteCandidates)),
		}
		for _, cand := range l.WebsiteCandidates {
			r.Candidates = append(r.Candidates, CandidateReason{
				URL:    cand,
				Result: v.Check(cand),
			})
		}
		reports = append(reports, r)
	}
	return reports
}

// WriteDebugJSON writes candidate reports as indented JSON.
func WriteDebugJSON(w io.Writer, reports []CandidateReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(reports), "exporter: write debug JSON")
}
