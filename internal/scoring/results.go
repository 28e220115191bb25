package scoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"

	"github.com/sells-group/siteiq/internal/db"
	"github.com/sells-group/siteiq/internal/model"
)

// AnalysisStore persists and lists finished analyses in Postgres. The
// location is stored as a PostGIS point so past analyses can be queried
// spatially alongside the business data.
type AnalysisStore struct {
	pool db.Pool
}

// NewAnalysisStore wraps a connection pool.
func NewAnalysisStore(pool db.Pool) *AnalysisStore {
	return &AnalysisStore{pool: pool}
}

// AnalysisRecord is the listing projection of a persisted analysis.
type AnalysisRecord struct {
	ID           string    `json:"id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Category     string    `json:"category"`
	OverallScore float64   `json:"overall_score"`
	Confidence   float64   `json:"confidence"`
	Method       string    `json:"method"`
	CreatedAt    time.Time `json:"created_at"`
}

// Insert stores a score result.
func (s *AnalysisStore) Insert(ctx context.Context, result *model.ScoreResult) error {
	point := geom.NewPointFlat(geom.XY, []float64{result.Longitude, result.Latitude}).SetSRID(4326)
	geomWKB, err := ewkb.Marshal(point, ewkb.NDR)
	if err != nil {
		return eris.Wrap(err, "scoring: encode analysis point")
	}

	components, err := json.Marshal(result.Components)
	if err != nil {
		return eris.Wrap(err, "scoring: encode component scores")
	}
	insights, err := json.Marshal(result.Insights)
	if err != nil {
		return eris.Wrap(err, "scoring: encode insights")
	}
	var importance []byte
	if len(result.FeatureImportance) > 0 {
		importance, err = json.Marshal(result.FeatureImportance)
		if err != nil {
			return eris.Wrap(err, "scoring: encode feature importance")
		}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO analyses (
			id, geom, business_type, overall_score, confidence, method,
			component_scores, insights, feature_importance,
			businesses_analyzed, created_at
		) VALUES ($1, ST_GeomFromEWKB($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		result.ID, geomWKB, string(result.Category), result.OverallScore,
		result.Confidence, result.Method, components, insights, importance,
		result.BusinessesAnalyzed, result.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "scoring: insert analysis")
	}
	return nil
}

// List returns analyses newest first, optionally filtered by category.
func (s *AnalysisStore) List(ctx context.Context, category model.Category, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, ST_Y(geom), ST_X(geom), business_type, overall_score,
		       confidence, method, created_at
		FROM analyses
		WHERE ($1 = '' OR business_type = $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		string(category), limit)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: list analyses")
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.Latitude, &rec.Longitude, &rec.Category,
			&rec.OverallScore, &rec.Confidence, &rec.Method, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "scoring: scan analysis row")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "scoring: iterate analyses")
	}
	return records, nil
}
