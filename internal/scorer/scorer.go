package scorer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mapline/prospect-cli/internal/config"
	"github.com/mapline/prospect-cli/internal/model"
)

// Signal names, in the fixed order they appear in every reason string.
const (
	SignalWebsite = "website"
	SignalRating  = "rating"
	SignalReviews = "reviews"
	SignalContact = "contact"
)

// Scorer maps a raw Listing to a ScoredListing. It holds no mutable state,
// so a single Scorer is safe for concurrent use across records.
type Scorer struct {
	cfg       config.ScorerConfig
	validator *Validator
	formatter ReasonFormatter
}

// New creates a Scorer. The config must already have passed ValidateConfig.
// If formatter is nil, the default semicolon formatter is used.
func New(cfg config.ScorerConfig, formatter ReasonFormatter) *Scorer {
	if formatter == nil {
		formatter = SemicolonFormatter{}
	}
	return &Scorer{
		cfg:       cfg,
		validator: NewValidator(cfg),
		formatter: formatter,
	}
}

// Validator exposes the website validator so collection code can classify
// website candidates with the same rules scoring uses.
func (s *Scorer) Validator() *Validator {
	return s.validator
}

// Score produces the ScoredListing for a single listing. It either returns
// a complete record or an error for this record alone; malformed fields
// never affect neighboring records.
func (s *Scorer) Score(l model.Listing) (*model.ScoredListing, error) {
	hasWebsite := s.validator.Valid(l.Website)

	websiteScore := s.websiteScore(hasWebsite)

	ratingScore, err := s.ratingScore(l.Rating)
	if err != nil {
		return nil, err
	}

	reviewScore, err := s.reviewScore(l.ReviewCount)
	if err != nil {
		return nil, err
	}

	contactScore := s.contactScore(l.Phone, l.Address)

	signals := []model.Signal{
		{Name: SignalWebsite, Observed: websiteObserved(hasWebsite), Points: websiteScore},
		{Name: SignalRating, Observed: ratingObserved(l.Rating), Points: ratingScore},
		{Name: SignalReviews, Observed: reviewsObserved(l.ReviewCount), Points: reviewScore},
		{Name: SignalContact, Observed: contactObserved(l.Phone, l.Address), Points: contactScore},
	}

	leadScore := clamp(websiteScore+ratingScore+reviewScore+contactScore, 0, 100)
	leadType := Classify(leadScore, s.cfg)

	scored := &model.ScoredListing{
		Listing:              l,
		HasWebsite:           hasWebsite,
		WebsiteScore:         websiteScore,
		RatingScore:          ratingScore,
		ReviewScore:          reviewScore,
		ContactScore:         contactScore,
		LeadScore:            leadScore,
		LeadType:             leadType,
		Signals:              signals,
		ClassificationReason: s.formatter.Format(signals),
	}

	zap.L().Debug("scorer: listing scored",
		zap.String("name", l.Name),
		zap.Int("lead_score", leadScore),
		zap.String("lead_type", string(leadType)),
	)

	return scored, nil
}

// Classify buckets a lead score using the configured thresholds.
func Classify(leadScore int, cfg config.ScorerConfig) model.LeadType {
	switch {
	case leadScore >= cfg.HighThreshold:
		return model.LeadTypeHigh
	case leadScore >= cfg.PotentialThreshold:
		return model.LeadTypePotential
	default:
		return model.LeadTypeLow
	}
}

func (s *Scorer) websiteScore(hasWebsite bool) int {
	if hasWebsite {
		return s.cfg.WebsitePoints
	}
	return 0
}

// ratingScore awards points from the first rating band at or below the
// observed rating. An absent rating scores zero; an out-of-range rating is
// an input error, never silently coerced.
func (s *Scorer) ratingScore(rating *float64) (int, error) {
	if rating == nil {
		return 0, nil
	}
	r := *rating
	if r < 0 || r > 5 {
		return 0, &model.InvalidInputError{
			Field:  "rating",
			Value:  r,
			Reason: "must be in [0,5]",
		}
	}
	for _, b := range s.cfg.RatingBands {
		if r >= b.Min {
			return b.Points, nil
		}
	}
	return 0, nil
}

func (s *Scorer) reviewScore(count *int) (int, error) {
	if count == nil {
		return 0, nil
	}
	c := *count
	if c < 0 {
		return 0, &model.InvalidInputError{
			Field:  "review_count",
			Value:  c,
			Reason: "must be >= 0",
		}
	}
	for _, b := range s.cfg.ReviewBands {
		if c >= b.Min {
			return b.Points, nil
		}
	}
	return 0, nil
}

// contactScore awards phone and address points independently.
func (s *Scorer) contactScore(phone, address string) int {
	score := 0
	if phone != "" {
		score += s.cfg.PhonePoints
	}
	if address != "" {
		score += s.cfg.AddressPoints
	}
	return score
}

func websiteObserved(hasWebsite bool) string {
	if hasWebsite {
		return "Website detected"
	}
	return "No website detected"
}

func ratingObserved(rating *float64) string {
	if rating == nil {
		return "Rating unavailable"
	}
	return fmt.Sprintf("Rating %.1f", *rating)
}

func reviewsObserved(count *int) string {
	if count == nil {
		return "Review count unavailable"
	}
	return fmt.Sprintf("%d reviews", *count)
}

func contactObserved(phone, address string) string {
	switch {
	case phone != "" && address != "":
		return "Phone and address available"
	case phone != "":
		return "Phone available"
	case address != "":
		return "Address available"
	default:
		return "No contact info"
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
