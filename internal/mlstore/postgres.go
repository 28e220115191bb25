package mlstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siteiq/internal/db"
	"github.com/sells-group/siteiq/internal/model"
)

// PostgresStore implements Store on the shared pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save implements Store. Deactivation of prior artifacts and insertion of
// the new active one happen in a single transaction, so readers never see a
// category with zero or two active models.
func (s *PostgresStore) Save(ctx context.Context, artifact *model.ModelArtifact) (string, error) {
	meta := &artifact.Metadata
	meta.ID = uuid.NewString()
	meta.Active = true
	if meta.TrainedAt.IsZero() {
		meta.TrainedAt = time.Now().UTC()
	}

	names, err := json.Marshal(meta.FeatureNames)
	if err != nil {
		return "", eris.Wrap(err, "mlstore: marshal feature names")
	}
	var importances []byte
	if len(meta.FeatureImportance) > 0 {
		importances, err = json.Marshal(meta.FeatureImportance)
		if err != nil {
			return "", eris.Wrap(err, "mlstore: marshal feature importances")
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", eris.Wrap(err, "mlstore: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`UPDATE ml_models SET is_active = false WHERE business_type = $1 AND is_active`,
		string(meta.Category),
	); err != nil {
		return "", eris.Wrap(err, "mlstore: deactivate prior models")
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ml_models
			(id, business_type, algorithm, schema_version, feature_names,
			 r2, rmse, mae, sample_count, feature_importance, payload,
			 is_active, trained_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12)
	`,
		meta.ID, string(meta.Category), meta.Algorithm, meta.SchemaVersion, names,
		meta.R2, meta.RMSE, meta.MAE, meta.SampleCount, importances, artifact.Payload,
		meta.TrainedAt,
	); err != nil {
		return "", eris.Wrap(err, "mlstore: insert model")
	}

	if err := tx.Commit(ctx); err != nil {
		return "", eris.Wrap(err, "mlstore: commit model")
	}

	zap.L().Info("mlstore: saved model",
		zap.String("id", meta.ID),
		zap.String("category", meta.Category.String()),
		zap.String("algorithm", meta.Algorithm),
		zap.Float64("r2", meta.R2),
	)
	return meta.ID, nil
}

// LoadLatestActive implements Store.
func (s *PostgresStore) LoadLatestActive(ctx context.Context, category model.Category) (*model.ModelArtifact, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, business_type, algorithm, schema_version, feature_names,
		       r2, rmse, mae, sample_count, feature_importance, payload, trained_at
		FROM ml_models
		WHERE business_type = $1 AND is_active
		ORDER BY trained_at DESC
		LIMIT 1
	`, string(category))

	artifact, err := scanArtifact(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "category %s", category)
		}
		return nil, eris.Wrap(err, "mlstore: load latest active")
	}
	return artifact, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, category model.Category) ([]model.ModelMetadata, error) {
	sql := `
		SELECT id, business_type, algorithm, schema_version, feature_names,
		       r2, rmse, mae, sample_count, is_active, trained_at
		FROM ml_models
	`
	args := []any{}
	if category != "" {
		sql += ` WHERE business_type = $1`
		args = append(args, string(category))
	}
	sql += ` ORDER BY trained_at DESC`

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "mlstore: list models")
	}
	defer rows.Close()

	var out []model.ModelMetadata
	for rows.Next() {
		var m model.ModelMetadata
		var bt string
		var names []byte
		if err := rows.Scan(&m.ID, &bt, &m.Algorithm, &m.SchemaVersion, &names,
			&m.R2, &m.RMSE, &m.MAE, &m.SampleCount, &m.Active, &m.TrainedAt); err != nil {
			return nil, eris.Wrap(err, "mlstore: scan model row")
		}
		m.Category = model.Category(bt)
		if err := json.Unmarshal(names, &m.FeatureNames); err != nil {
			return nil, eris.Wrapf(err, "mlstore: unmarshal feature names for %s", m.ID)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "mlstore: iterate model rows")
	}
	return out, nil
}

// Close implements Store. The pool is shared and owned by the caller.
func (s *PostgresStore) Close() error { return nil }

func scanArtifact(row pgx.Row) (*model.ModelArtifact, error) {
	var a model.ModelArtifact
	var bt string
	var names, importances []byte
	err := row.Scan(
		&a.Metadata.ID, &bt, &a.Metadata.Algorithm, &a.Metadata.SchemaVersion, &names,
		&a.Metadata.R2, &a.Metadata.RMSE, &a.Metadata.MAE, &a.Metadata.SampleCount,
		&importances, &a.Payload, &a.Metadata.TrainedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Metadata.Category = model.Category(bt)
	a.Metadata.Active = true
	if err := json.Unmarshal(names, &a.Metadata.FeatureNames); err != nil {
		return nil, eris.Wrap(err, "mlstore: unmarshal feature names")
	}
	if len(importances) > 0 {
		if err := json.Unmarshal(importances, &a.Metadata.FeatureImportance); err != nil {
			return nil, eris.Wrap(err, "mlstore: unmarshal feature importances")
		}
	}
	return &a, nil
}
