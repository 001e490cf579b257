// Package model defines the listing records exchanged between the collector,
// scorer, and exporter.
package model

// LeadType buckets a lead score into an outreach priority.
type LeadType string

const (
	LeadTypeLow       LeadType = "LOW"
	LeadTypePotential LeadType = "POTENTIAL"
	LeadTypeHigh      LeadType = "HIGH"
)

// Listing is a single business record sourced from a map/directory dataset.
// Rating and ReviewCount are pointers so "unknown" stays distinguishable from
// a literal zero.
type Listing struct {
	Name              string   `json:"business_name"`
	Category          string   `json:"category,omitempty"`
	Rating            *float64 `json:"rating,omitempty"`
	ReviewCount       *int     `json:"reviews,omitempty"`
	Website           string   `json:"website,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Address           string   `json:"address,omitempty"`
	PlaceID           string   `json:"place_id,omitempty"`
	Source            string   `json:"source,omitempty"`
	WebsiteCandidates []string `json:"website_candidates,omitempty"`
	Disqualified      bool     `json:"disqualified,omitempty"`
	DisqualifyReason  string   `json:"disqualify_reason,omitempty"`
}

// Signal is one scoring contribution: which condition fired, what was
// observed, and how many points it added. Signals are emitted in a fixed
// order (website, rating, reviews, contact) so the rendered reason is
// deterministic.
type Signal struct {
	Name     string `json:"name"`
	Observed string `json:"observed"`
	Points   int    `json:"points"`
}

// ScoredListing is a Listing plus its derived opportunity score. It is built
// once by the scorer and never mutated afterwards.
type ScoredListing struct {
	Listing

	HasWebsite   bool `json:"has_website"`
	WebsiteScore int  `json:"website_score"`
	RatingScore  int  `json:"rating_score"`
	ReviewScore  int  `json:"review_score"`
	ContactScore int  `json:"contact_score"`

	LeadScore            int      `json:"lead_score"`
	LeadType             LeadType `json:"lead_type"`
	Signals              []Signal `json:"signals"`
	ClassificationReason string   `json:"classification_reason"`
}
