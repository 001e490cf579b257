package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mapline/prospect-cli/internal/collector"
	"github.com/mapline/prospect-cli/internal/exporter"
	"github.com/mapline/prospect-cli/internal/model"
	"github.com/mapline/prospect-cli/internal/scorer"
	"github.com/mapline/prospect-cli/internal/store"
	"github.com/mapline/prospect-cli/pkg/places"
)

var (
	scrapeJobsFile    string
	scrapeQuery       string
	scrapeCity        string
	scrapePages       int
	scrapeOutput      string
	scrapeDebug       bool
	scrapeSave        bool
	scrapeConcurrency int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect listings from map search and score them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Places.Key == "" {
			return eris.New("scrape: places.key is required (PROSPECT_PLACES_KEY)")
		}

		jobs, err := buildJobs()
		if err != nil {
			return err
		}

		sc, err := newScorer()
		if err != nil {
			return err
		}

		var st store.Store
		if scrapeSave {
			st, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		client := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
		limiter := rate.NewLimiter(rate.Limit(cfg.Places.RateLimit), 1)
		coll := collector.New(client, limiter, sc.Validator(), cfg.Collect)

		concurrency := scrapeConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Collect.Concurrency
		}
		zap.L().Info("starting scrape",
			zap.Int("jobs", len(jobs)),
			zap.Int("concurrency", concurrency),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		var mu sync.Mutex
		var allScored []model.ScoredListing
		var allListings []model.Listing

		for _, job := range jobs {
			g.Go(func() error {
				scored, raw, err := runJob(gctx, coll, sc, st, job)
				if err != nil {
					return err
				}
				mu.Lock()
				allScored = append(allScored, scored...)
				allListings = append(allListings, raw...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Export.DataDir, 0o755); err != nil {
			return eris.Wrap(err, "scrape: create data dir")
		}

		leadsPath := scrapeOutput
		if leadsPath == "" {
			leadsPath = filepath.Join(cfg.Export.DataDir, "leads.csv")
		}
		if err := writeQualifiedFile(leadsPath, allScored, cfg.Export.MinQualifiedScore); err != nil {
			return err
		}
		zap.L().Info("wrote qualified leads", zap.String("path", leadsPath))

		if scrapeDebug {
			debugPath := filepath.Join(cfg.Export.DataDir, "candidates.json")
			if err := writeDebugFile(debugPath, allListings, sc.Validator()); err != nil {
				return err
			}
			zap.L().Info("wrote candidate debug report", zap.String("path", debugPath))
		}

		exporter.WriteTable(os.Stdout, allScored)
		return nil
	},
}

// runJob collects one search, scores its listings, writes the per-search CSV,
// and records the run if a store is open.
func runJob(ctx context.Context, coll *collector.Collector, sc *scorer.Scorer, st store.Store, job collector.Job) ([]model.ScoredListing, []model.Listing, error) {
	query := job.SearchQuery()
	log := zap.L().With(zap.String("search", query))

	var run *model.CollectionRun
	if st != nil {
		var err error
		run, err = st.CreateRun(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusCollecting)
	}

	fail := func(err error) ([]model.ScoredListing, []model.Listing, error) {
		if run != nil {
			_ = st.FailRun(ctx, run.ID, err)
		}
		return nil, nil, err
	}

	res, err := coll.Collect(ctx, job)
	if err != nil {
		return fail(err)
	}

	if run != nil {
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusScoring)
	}

	stats := model.RunStats{
		ListingsFound: len(res.Listings),
		APICalls:      res.APICalls,
	}

	scored := make([]model.ScoredListing, 0, len(res.Listings))
	for _, l := range res.Listings {
		s, err := sc.Score(l)
		if err != nil {
			log.Warn("skipping listing", zap.String("name", l.Name), zap.Error(err))
			stats.Skipped++
			continue
		}
		stats.Scored++
		if s.Disqualified {
			stats.Disqualified++
		}
		switch s.LeadType {
		case model.LeadTypeHigh:
			stats.HighLeads++
		case model.LeadTypePotential:
			stats.PotentialLeads++
		}
		scored = append(scored, *s)
	}

	out := job.Output
	if out == "" {
		out = filepath.Join(cfg.Export.DataDir, searchFileName(query))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fail(eris.Wrapf(err, "scrape: create output dir for %q", query))
	}
	if err := writeScoredFile(out, scored); err != nil {
		return fail(err)
	}
	log.Info("wrote search results",
		zap.String("path", out),
		zap.Int("scored", stats.Scored),
		zap.Int("skipped", stats.Skipped),
	)

	if run != nil {
		if err := st.SaveListings(ctx, run.ID, scored); err != nil {
			return fail(err)
		}
		if err := st.CompleteRun(ctx, run.ID, &stats); err != nil {
			return fail(err)
		}
	}

	return scored, res.Listings, nil
}

func buildJobs() ([]collector.Job, error) {
	if scrapeJobsFile != "" {
		return collector.LoadJobs(scrapeJobsFile)
	}
	if scrapeQuery == "" {
		return nil, eris.New("scrape: either --jobs or --query is required")
	}
	return []collector.Job{{
		Query:    scrapeQuery,
		City:     scrapeCity,
		MaxPages: scrapePages,
	}}, nil
}

// searchFileName turns a search query into a safe CSV file name.
func searchFileName(query string) string {
	name := strings.ToLower(query)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.Trim(name, "_") + ".csv"
}

func writeScoredFile(path string, scored []model.ScoredListing) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "scrape: create %s", path)
	}
	defer f.Close() //nolint:errcheck
	return exporter.WriteCSV(f, scored)
}

func writeQualifiedFile(path string, scored []model.ScoredListing, minScore int) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "scrape: create %s", path)
	}
	defer f.Close() //nolint:errcheck
	return exporter.WriteQualifiedCSV(f, scored, minScore)
}

func writeDebugFile(path string, listings []model.Listing, v *scorer.Validator) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "scrape: create %s", path)
	}
	defer f.Close() //nolint:errcheck
	return exporter.WriteDebugJSON(f, exporter.BuildCandidateReports(listings, v))
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeJobsFile, "jobs", "", "JSON jobs file (object or list)")
	scrapeCmd.Flags().StringVar(&scrapeQuery, "query", "", "search query, e.g. \"plumbers\"")
	scrapeCmd.Flags().StringVar(&scrapeCity, "city", "", "city appended to the query")
	scrapeCmd.Flags().IntVar(&scrapePages, "pages", 0, "max result pages per search (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeOutput, "out", "", "qualified leads CSV path (default <data_dir>/leads.csv)")
	scrapeCmd.Flags().BoolVar(&scrapeDebug, "debug-candidates", false, "write website candidate rejection report")
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "persist runs and listings to the store")
	scrapeCmd.Flags().IntVar(&scrapeConcurrency, "concurrency", 0, "concurrent searches (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
