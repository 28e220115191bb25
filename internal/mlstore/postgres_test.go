package mlstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siteiq/internal/model"
)

func testArtifact() *model.ModelArtifact {
	return &model.ModelArtifact{
		Metadata: model.ModelMetadata{
			Category:      model.CategoryCafe,
			Algorithm:     "gradient_boosting",
			SchemaVersion: "v1",
			FeatureNames:  []string{"competitors_500m", "total_businesses"},
			R2:            0.82,
			RMSE:          0.9,
			MAE:           0.7,
			SampleCount:   120,
			FeatureImportance: map[string]float64{
				"competitors_500m": 0.8,
				"total_businesses": 0.2,
			},
		},
		Payload: []byte{0x01, 0x02},
	}
}

func TestPostgresSaveActivatesAtomically(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ml_models SET is_active = false`).
		WithArgs("cafe").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO ml_models`).
		WithArgs(pgxmock.AnyArg(), "cafe", "gradient_boosting", "v1", pgxmock.AnyArg(),
			0.82, 0.9, 0.7, 120, pgxmock.AnyArg(), []byte{0x01, 0x02}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	store := NewPostgresStore(mock)
	id, err := store.Save(context.Background(), testArtifact())
	require.NoError(t, err)

	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRollsBackOnInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE ml_models SET is_active = false`).
		WithArgs("cafe").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO ml_models`).
		WithArgs(pgxmock.AnyArg(), "cafe", "gradient_boosting", "v1", pgxmock.AnyArg(),
			0.82, 0.9, 0.7, 120, pgxmock.AnyArg(), []byte{0x01, 0x02}, pgxmock.AnyArg()).
		WillReturnError(eris.New("disk full"))
	mock.ExpectRollback()

	store := NewPostgresStore(mock)
	_, err = store.Save(context.Background(), testArtifact())
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadLatestActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names, _ := json.Marshal([]string{"competitors_500m"})
	importances, _ := json.Marshal(map[string]float64{"competitors_500m": 1})
	trainedAt := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM ml_models`).
		WithArgs("cafe").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_type", "algorithm", "schema_version", "feature_names",
			"r2", "rmse", "mae", "sample_count", "feature_importance", "payload", "trained_at",
		}).AddRow(
			"m-1", "cafe", "random_forest", "v1", names,
			0.75, 1.1, 0.8, 90, importances, []byte{0xAA}, trainedAt,
		))

	store := NewPostgresStore(mock)
	artifact, err := store.LoadLatestActive(context.Background(), model.CategoryCafe)
	require.NoError(t, err)

	assert.Equal(t, "m-1", artifact.Metadata.ID)
	assert.Equal(t, model.CategoryCafe, artifact.Metadata.Category)
	assert.Equal(t, []string{"competitors_500m"}, artifact.Metadata.FeatureNames)
	assert.True(t, artifact.Metadata.Active)
	assert.Equal(t, []byte{0xAA}, artifact.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadLatestActiveNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM ml_models`).
		WithArgs("hotel").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	_, err = store.LoadLatestActive(context.Background(), model.CategoryHotel)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	names, _ := json.Marshal([]string{"competitors_500m"})
	trainedAt := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM ml_models`).
		WithArgs("cafe").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_type", "algorithm", "schema_version", "feature_names",
			"r2", "rmse", "mae", "sample_count", "is_active", "trained_at",
		}).
			AddRow("m-2", "cafe", "gradient_boosting", "v1", names, 0.8, 1.0, 0.7, 100, true, trainedAt).
			AddRow("m-1", "cafe", "random_forest", "v1", names, 0.7, 1.2, 0.9, 80, false, trainedAt.Add(-time.Hour)))

	store := NewPostgresStore(mock)
	metas, err := store.List(context.Background(), model.CategoryCafe)
	require.NoError(t, err)

	require.Len(t, metas, 2)
	assert.True(t, metas[0].Active)
	assert.False(t, metas[1].Active)
	assert.Equal(t, "gradient_boosting", metas[0].Algorithm)
	assert.NoError(t, mock.ExpectationsWereMet())
}
