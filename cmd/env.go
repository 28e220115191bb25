package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/siteiq/internal/db"
	"github.com/sells-group/siteiq/internal/feature"
	"github.com/sells-group/siteiq/internal/geospatial"
	"github.com/sells-group/siteiq/internal/mlstore"
	"github.com/sells-group/siteiq/internal/scoring"
)

// appEnv holds the wired application components shared by the commands.
type appEnv struct {
	pool      *pgxpool.Pool
	repo      *geospatial.PostgresRepository
	extractor *feature.Extractor
	models    mlstore.Store
	analyses  *scoring.AnalysisStore
	engine    *scoring.Engine
}

// initEnv connects to the database and wires the scoring stack.
func initEnv(ctx context.Context) (*appEnv, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store.database_url is required (SITEIQ_STORE_DATABASE_URL)")
	}

	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var models mlstore.Store
	switch cfg.Store.ModelDriver {
	case "sqlite":
		models, err = mlstore.NewSQLite(cfg.Store.ModelPath)
		if err != nil {
			pool.Close()
			return nil, err
		}
	default:
		models = mlstore.NewPostgresStore(pool)
	}

	repo := geospatial.NewPostgresRepository(pool)
	extractor := feature.NewExtractor(repo)
	analyses := scoring.NewAnalysisStore(pool)
	engine := scoring.NewEngine(extractor, models, scoring.WithSink(analyses))

	return &appEnv{
		pool:      pool,
		repo:      repo,
		extractor: extractor,
		models:    models,
		analyses:  analyses,
		engine:    engine,
	}, nil
}

func (e *appEnv) Close() {
	_ = e.models.Close()
	e.pool.Close()
}
