// Package collector gathers business listings from the Places API, normalizes
// them into the internal model, and flags prospects that should be skipped.
package collector

import (
	"context"

	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mapline/prospect-cli/internal/config"
	"github.com/mapline/prospect-cli/internal/model"
	"github.com/mapline/prospect-cli/internal/resilience"
	"github.com/mapline/prospect-cli/internal/scorer"
	"github.com/mapline/prospect-cli/pkg/places"
)

// Result holds the listings collected for one job plus API-call accounting.
type Result struct {
	Listings []model.Listing
	APICalls int
}

// Collector runs search jobs against a places.Client.
type Collector struct {
	client    places.Client
	limiter   *rate.Limiter
	validator *scorer.Validator
	cfg       config.CollectConfig
	retry     resilience.Policy
}

// New creates a Collector. The limiter is shared across jobs so concurrent
// collection stays inside the API quota.
func New(client places.Client, limiter *rate.Limiter, validator *scorer.Validator, cfg config.CollectConfig) *Collector {
	return &Collector{
		client:    client,
		limiter:   limiter,
		validator: validator,
		cfg:       cfg,
		retry: resilience.Policy{
			OnRetry: func(attempt int, err error) {
				zap.L().Warn("retrying places search",
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
			},
		},
	}
}

// Collect runs one search job, following pagination up to the job's (or the
// configured) page limit.
func (c *Collector) Collect(ctx context.Context, job Job) (*Result, error) {
	query := job.SearchQuery()
	if query == "" {
		return nil, eris.New("collector: job has no search query")
	}

	maxPages := job.MaxPages
	if maxPages <= 0 {
		maxPages = c.cfg.MaxPages
	}

	res := &Result{}
	pageToken := ""
	for page := 0; page < maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "collector: rate limit wait")
		}

		resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*places.TextSearchResponse, error) {
			return c.client.TextSearch(ctx, places.TextSearchRequest{
				TextQuery: query,
				PageSize:  c.cfg.PageSize,
				PageToken: pageToken,
			})
		})
		if err != nil {
			return nil, eris.Wrapf(err, "collector: search %q page %d", query, page+1)
		}
		res.APICalls++

		for _, p := range resp.Places {
			res.Listings = append(res.Listings, c.listingFromPlace(p, query))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	zap.L().Info("collected listings",
		zap.String("query", query),
		zap.Int("listings", len(res.Listings)),
		zap.Int("api_calls", res.APICalls),
	)
	return res, nil
}

func (c *Collector) listingFromPlace(p places.Place, query string) model.Listing {
	l := model.Listing{
		Name:        p.DisplayName.Text,
		Category:    p.PrimaryTypeDisplayName.Text,
		Rating:      p.Rating,
		ReviewCount: p.UserRatingCount,
		Phone:       normalizePhone(p.NationalPhoneNumber, c.cfg.PhoneRegion),
		Address:     p.FormattedAddress,
		PlaceID:     p.ID,
		Source:      query,
	}

	if p.WebsiteURI != "" {
		cand := scorer.UnwrapRedirect(p.WebsiteURI)
		l.WebsiteCandidates = append(l.WebsiteCandidates, cand)
		if c.validator.Valid(cand) {
			l.Website = cand
		}
	}

	if ok, reason := Disqualify(l, c.cfg); ok {
		l.Disqualified = true
		l.DisqualifyReason = reason
		zap.L().Debug("disqualified listing",
			zap.String("name", l.Name),
			zap.String("reason", reason),
		)
	}

	return l
}

// normalizePhone formats a phone number as E.164 when it parses as a valid
// number for the region, and passes it through untouched otherwise.
func normalizePhone(raw, region string) string {
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
