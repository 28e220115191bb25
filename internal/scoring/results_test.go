package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/siteiq/internal/model"
)

func sampleResult() *model.ScoreResult {
	return &model.ScoreResult{
		ID:           "an-1",
		Latitude:     41.0082,
		Longitude:    28.9784,
		Category:     model.CategoryCafe,
		OverallScore: 7.5,
		Confidence:   0.85,
		Method:       model.MethodML,
		Components: model.ComponentScores{
			Competition:   8,
			FootTraffic:   6,
			Accessibility: 7,
			Demographic:   5,
			Environmental: 6,
		},
		Insights: model.Insights{
			KeyInsights:     []string{"strong demand"},
			Opportunities:   []string{},
			RiskFactors:     []string{},
			Recommendations: []string{},
		},
		FeatureImportance:  map[string]float64{"competitors_500m": 1},
		BusinessesAnalyzed: 42,
		CreatedAt:          time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestAnalysisStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult()
	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("an-1", pgxmock.AnyArg(), "cafe", 7.5, 0.85, model.MethodML,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 42, result.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewAnalysisStore(mock)
	require.NoError(t, store.Insert(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisStoreInsertNoImportance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult()
	result.Method = model.MethodRuleBased
	result.FeatureImportance = nil

	// The importance column is NULL for rule-based results.
	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("an-1", pgxmock.AnyArg(), "cafe", 7.5, 0.85, model.MethodRuleBased,
			pgxmock.AnyArg(), pgxmock.AnyArg(), []byte(nil), 42, result.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewAnalysisStore(mock)
	require.NoError(t, store.Insert(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisStoreInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	result := sampleResult()
	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs("an-1", pgxmock.AnyArg(), "cafe", 7.5, 0.85, model.MethodML,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 42, result.CreatedAt).
		WillReturnError(eris.New("connection reset"))

	store := NewAnalysisStore(mock)
	err = store.Insert(context.Background(), result)
	assert.Error(t, err)
}

func TestAnalysisStoreList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "st_y", "st_x", "business_type", "overall_score",
		"confidence", "method", "created_at",
	}).
		AddRow("an-2", 41.01, 28.98, "cafe", 8.1, 0.85, model.MethodML, created).
		AddRow("an-1", 41.00, 28.97, "cafe", 6.2, 0.6, model.MethodRuleBased, created.Add(-time.Hour))

	mock.ExpectQuery(`FROM analyses`).
		WithArgs("cafe", 5).
		WillReturnRows(rows)

	store := NewAnalysisStore(mock)
	records, err := store.List(context.Background(), model.CategoryCafe, 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "an-2", records[0].ID)
	assert.Equal(t, 41.01, records[0].Latitude)
	assert.Equal(t, 28.98, records[0].Longitude)
	assert.Equal(t, "cafe", records[0].Category)
	assert.Equal(t, 8.1, records[0].OverallScore)
	assert.Equal(t, model.MethodRuleBased, records[1].Method)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisStoreListDefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "st_y", "st_x", "business_type", "overall_score",
		"confidence", "method", "created_at",
	})

	// An empty category matches everything and a non-positive limit
	// falls back to 100.
	mock.ExpectQuery(`FROM analyses`).
		WithArgs("", 100).
		WillReturnRows(rows)

	store := NewAnalysisStore(mock)
	records, err := store.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisStoreListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM analyses`).
		WithArgs("cafe", 10).
		WillReturnError(eris.New("relation does not exist"))

	store := NewAnalysisStore(mock)
	_, err = store.List(context.Background(), model.CategoryCafe, 10)
	assert.Error(t, err)
}
