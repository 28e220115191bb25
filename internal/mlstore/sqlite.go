package mlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/siteiq/internal/model"
)

// SQLiteStore implements Store on a local SQLite file for runs without a
// Postgres instance.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ml_models (
	id                 TEXT PRIMARY KEY,
	business_type      TEXT NOT NULL,
	algorithm          TEXT NOT NULL,
	schema_version     TEXT NOT NULL,
	feature_names      TEXT NOT NULL,
	r2                 REAL NOT NULL,
	rmse               REAL NOT NULL,
	mae                REAL NOT NULL,
	sample_count       INTEGER NOT NULL,
	feature_importance TEXT,
	payload            BLOB NOT NULL,
	is_active          INTEGER NOT NULL DEFAULT 0,
	trained_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS ml_models_type_idx ON ml_models (business_type, trained_at DESC);
`

// NewSQLite opens a SQLite database at the given path, configures WAL mode,
// and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "mlstore: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "mlstore: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "mlstore: migrate sqlite")
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, artifact *model.ModelArtifact) (string, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "mlstore: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`UPDATE ml_models SET is_active = 0 WHERE business_type = ? AND is_active = 1`,
		string(meta.Category),
	); err != nil {
		return "", eris.Wrap(err, "mlstore: deactivate prior models")
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ml_models
			(id, business_type, algorithm, schema_version, feature_names,
			 r2, rmse, mae, sample_count, feature_importance, payload,
			 is_active, trained_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`,
		meta.ID, string(meta.Category), meta.Algorithm, meta.SchemaVersion, string(names),
		meta.R2, meta.RMSE, meta.MAE, meta.SampleCount, nullableString(importances),
		artifact.Payload, meta.TrainedAt.UTC(),
	); err != nil {
		return "", eris.Wrap(err, "mlstore: insert model")
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "mlstore: commit model")
	}
	return meta.ID, nil
}

// LoadLatestActive implements Store.
func (s *SQLiteStore) LoadLatestActive(ctx context.Context, category model.Category) (*model.ModelArtifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, business_type, algorithm, schema_version, feature_names,
		       r2, rmse, mae, sample_count, feature_importance, payload, trained_at
		FROM ml_models
		WHERE business_type = ? AND is_active = 1
		ORDER BY trained_at DESC
		LIMIT 1
	`, string(category))

	var a model.ModelArtifact
	var bt, names string
	var importances sql.NullString
	err := row.Scan(
		&a.Metadata.ID, &bt, &a.Metadata.Algorithm, &a.Metadata.SchemaVersion, &names,
		&a.Metadata.R2, &a.Metadata.RMSE, &a.Metadata.MAE, &a.Metadata.SampleCount,
		&importances, &a.Payload, &a.Metadata.TrainedAt,
	)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "category %s", category)
		}
		return nil, eris.Wrap(err, "mlstore: load latest active")
	}

	a.Metadata.Category = model.Category(bt)
	a.Metadata.Active = true
	if err := json.Unmarshal([]byte(names), &a.Metadata.FeatureNames); err != nil {
		return nil, eris.Wrap(err, "mlstore: unmarshal feature names")
	}
	if importances.Valid && importances.String != "" {
		if err := json.Unmarshal([]byte(importances.String), &a.Metadata.FeatureImportance); err != nil {
			return nil, eris.Wrap(err, "mlstore: unmarshal feature importances")
		}
	}
	return &a, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, category model.Category) ([]model.ModelMetadata, error) {
	query := `
		SELECT id, business_type, algorithm, schema_version, feature_names,
		       r2, rmse, mae, sample_count, is_active, trained_at
		FROM ml_models
	`
	args := []any{}
	if category != "" {
		query += ` WHERE business_type = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY trained_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "mlstore: list models")
	}
	defer rows.Close()

	var out []model.ModelMetadata
	for rows.Next() {
		var m model.ModelMetadata
		var bt, names string
		if err := rows.Scan(&m.ID, &bt, &m.Algorithm, &m.SchemaVersion, &names,
			&m.R2, &m.RMSE, &m.MAE, &m.SampleCount, &m.Active, &m.TrainedAt); err != nil {
			return nil, eris.Wrap(err, "mlstore: scan model row")
		}
		m.Category = model.Category(bt)
		if err := json.Unmarshal([]byte(names), &m.FeatureNames); err != nil {
			return nil, eris.Wrapf(err, "mlstore: unmarshal feature names for %s", m.ID)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "mlstore: iterate model rows")
	}
	return out, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
