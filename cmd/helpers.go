package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/mapline/prospect-cli/internal/scorer"
	"github.com/mapline/prospect-cli/internal/store"
)

// openStore opens and migrates the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Store.Driver {
	case "", "sqlite":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// newScorer builds a Scorer from config merged with the stock policy.
func newScorer() (*scorer.Scorer, error) {
	sc := scorer.MergeDefaults(cfg.Scorer)
	if err := scorer.ValidateConfig(sc); err != nil {
		return nil, err
	}
	return scorer.New(sc, nil), nil
}
