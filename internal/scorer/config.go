// Package scorer computes deterministic opportunity scores for business
// listings: four additive subscores, a clamped 0-100 lead score, and a
// reproducible classification reason.
package scorer

import (
	"fmt"
	"strings"

	"github.com/mapline/prospect-cli/internal/config"
	"github.com/mapline/prospect-cli/internal/model"
)

// Classification thresholds and subscore points used when the config file
// leaves the scorer section empty.
const (
	defaultWebsitePoints = 20
	defaultPhonePoints   = 10
	defaultAddressPoints = 5

	defaultHighThreshold      = 70
	defaultPotentialThreshold = 40
)

// DefaultScorerConfig returns the stock scoring policy.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		WebsitePoints: defaultWebsitePoints,
		PhonePoints:   defaultPhonePoints,
		AddressPoints: defaultAddressPoints,

		// Descending Min; the first band at or below the value wins.
		RatingBands: []config.RatingBand{
			{Min: 4.5, Points: 20},
			{Min: 4.0, Points: 15},
			{Min: 3.5, Points: 10},
			{Min: 0, Points: 5},
		},
		ReviewBands: []config.ReviewBand{
			{Min: 200, Points: 25},
			{Min: 100, Points: 20},
			{Min: 50, Points: 15},
			{Min: 20, Points: 10},
			{Min: 5, Points: 5},
			{Min: 0, Points: 0},
		},

		BlockedDomains: []string{
			"google.com",
			"googleusercontent.com",
			"gstatic.com",
			"fonts.gstatic.com",
			"accounts.google.com",
			"ggpht.com",
			"googleapis.com",
			"doubleclick.net",
			"g.co",
		},
		AssetExtensions: []string{
			".woff", ".woff2", ".ttf", ".svg", ".css", ".js",
		},

		HighThreshold:      defaultHighThreshold,
		PotentialThreshold: defaultPotentialThreshold,
	}
}

// MergeDefaults fills any unset section of a ScorerConfig with the stock
// policy, so a partial config file only overrides what it names.
func MergeDefaults(c config.ScorerConfig) config.ScorerConfig {
	def := DefaultScorerConfig()

	if c.WebsitePoints == 0 {
		c.WebsitePoints = def.WebsitePoints
	}
	if c.PhonePoints == 0 {
		c.PhonePoints = def.PhonePoints
	}
	if c.AddressPoints == 0 {
		c.AddressPoints = def.AddressPoints
	}
	if len(c.RatingBands) == 0 {
		c.RatingBands = def.RatingBands
	}
	if len(c.ReviewBands) == 0 {
		c.ReviewBands = def.ReviewBands
	}
	if len(c.BlockedDomains) == 0 {
		c.BlockedDomains = def.BlockedDomains
	}
	if len(c.AssetExtensions) == 0 {
		c.AssetExtensions = def.AssetExtensions
	}
	if c.HighThreshold == 0 {
		c.HighThreshold = def.HighThreshold
	}
	if c.PotentialThreshold == 0 {
		c.PotentialThreshold = def.PotentialThreshold
	}

	return c
}

// ValidateConfig checks that a ScorerConfig is internally consistent. All
// scoring depends on it, so a failure here is fatal at startup.
func ValidateConfig(c config.ScorerConfig) error {
	if c.WebsitePoints < 0 {
		return &model.ConfigError{Field: "website_points", Reason: "must be >= 0"}
	}
	if c.PhonePoints < 0 {
		return &model.ConfigError{Field: "phone_points", Reason: "must be >= 0"}
	}
	if c.AddressPoints < 0 {
		return &model.ConfigError{Field: "address_points", Reason: "must be >= 0"}
	}

	if len(c.RatingBands) == 0 {
		return &model.ConfigError{Field: "rating_bands", Reason: "must not be empty"}
	}
	for i, b := range c.RatingBands {
		if b.Min < 0 || b.Min > 5 {
			return &model.ConfigError{
				Field:  "rating_bands",
				Reason: fmt.Sprintf("band %d: min %.2f outside [0,5]", i, b.Min),
			}
		}
		if b.Points < 0 {
			return &model.ConfigError{
				Field:  "rating_bands",
				Reason: fmt.Sprintf("band %d: points must be >= 0", i),
			}
		}
		if i > 0 && b.Min >= c.RatingBands[i-1].Min {
			return &model.ConfigError{
				Field:  "rating_bands",
				Reason: fmt.Sprintf("band %d: mins must be strictly descending", i),
			}
		}
	}

	if len(c.ReviewBands) == 0 {
		return &model.ConfigError{Field: "review_bands", Reason: "must not be empty"}
	}
	for i, b := range c.ReviewBands {
		if b.Min < 0 {
			return &model.ConfigError{
				Field:  "review_bands",
				Reason: fmt.Sprintf("band %d: min must be >= 0", i),
			}
		}
		if b.Points < 0 {
			return &model.ConfigError{
				Field:  "review_bands",
				Reason: fmt.Sprintf("band %d: points must be >= 0", i),
			}
		}
		if i > 0 && b.Min >= c.ReviewBands[i-1].Min {
			return &model.ConfigError{
				Field:  "review_bands",
				Reason: fmt.Sprintf("band %d: mins must be strictly descending", i),
			}
		}
	}

	if len(c.BlockedDomains) == 0 {
		return &model.ConfigError{Field: "blocked_domains", Reason: "must not be empty"}
	}
	for _, ext := range c.AssetExtensions {
		if !strings.HasPrefix(ext, ".") {
			return &model.ConfigError{
				Field:  "asset_extensions",
				Reason: fmt.Sprintf("%q must start with a dot", ext),
			}
		}
	}

	if c.PotentialThreshold < 0 || c.PotentialThreshold > 100 {
		return &model.ConfigError{Field: "potential_threshold", Reason: "must be in [0,100]"}
	}
	if c.HighThreshold < 0 || c.HighThreshold > 100 {
		return &model.ConfigError{Field: "high_threshold", Reason: "must be in [0,100]"}
	}
	if c.HighThreshold <= c.PotentialThreshold {
		return &model.ConfigError{
			Field:  "high_threshold",
			Reason: "must be greater than potential_threshold",
		}
	}

	return nil
}
