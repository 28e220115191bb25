package geospatial

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siteiq/internal/db"
	"github.com/sells-group/siteiq/internal/model"
)

// PostgresRepository implements Repository on a PostGIS-enabled pool.
type PostgresRepository struct {
	pool db.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Aggregate implements Repository.
func (r *PostgresRepository) Aggregate(ctx context.Context, category model.Category, center Point, radiusM float64) (AggregateStats, error) {
	sql := `
		SELECT COUNT(*),
		       COALESCE(AVG(rating), 0),
		       COALESCE(AVG(review_count), 0),
		       COALESCE(SUM(review_count), 0)
		FROM businesses
		WHERE business_type = $1
		  AND is_active = true
		  AND ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4)
	`
	var s AggregateStats
	err := r.pool.QueryRow(ctx, sql, string(category), center.Lng, center.Lat, radiusM).Scan(
		&s.Count, &s.AvgRating, &s.AvgReviewCount, &s.SumReviewCount,
	)
	if err != nil {
		return AggregateStats{}, eris.Wrap(wrapRepo(err), "geospatial: aggregate")
	}
	return s, nil
}

// QualityAggregate implements Repository.
func (r *PostgresRepository) QualityAggregate(ctx context.Context, category model.Category, center Point, radiusM, minRating float64) (AggregateStats, error) {
	sql := `
		SELECT COUNT(*),
		       COALESCE(AVG(rating), 0),
		       COALESCE(AVG(review_count), 0),
		       COALESCE(SUM(review_count), 0)
		FROM businesses
		WHERE business_type = $1
		  AND is_active = true
		  AND rating >= $2
		  AND ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5)
	`
	var s AggregateStats
	err := r.pool.QueryRow(ctx, sql, string(category), minRating, center.Lng, center.Lat, radiusM).Scan(
		&s.Count, &s.AvgRating, &s.AvgReviewCount, &s.SumReviewCount,
	)
	if err != nil {
		return AggregateStats{}, eris.Wrap(wrapRepo(err), "geospatial: quality aggregate")
	}
	return s, nil
}

// Density implements Repository.
func (r *PostgresRepository) Density(ctx context.Context, center Point, radiusM float64) (DensityStats, error) {
	sql := `
		SELECT COUNT(*),
		       COUNT(DISTINCT business_type),
		       COALESCE(AVG(rating), 0),
		       COALESCE(SUM(review_count), 0)
		FROM businesses
		WHERE is_active = true
		  AND ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
	`
	var s DensityStats
	err := r.pool.QueryRow(ctx, sql, center.Lng, center.Lat, radiusM).Scan(
		&s.TotalCount, &s.DistinctCategories, &s.AvgRating, &s.SumReviews,
	)
	if err != nil {
		return DensityStats{}, eris.Wrap(wrapRepo(err), "geospatial: density")
	}
	return s, nil
}

// CategoryCounts implements Repository.
func (r *PostgresRepository) CategoryCounts(ctx context.Context, center Point, radiusM float64) (map[model.Category]int, error) {
	sql := `
		SELECT business_type, COUNT(*)
		FROM businesses
		WHERE is_active = true
		  AND ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		GROUP BY business_type
	`
	rows, err := r.pool.Query(ctx, sql, center.Lng, center.Lat, radiusM)
	if err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: category counts")
	}
	defer rows.Close()

	counts := make(map[model.Category]int)
	for rows.Next() {
		var bt string
		var n int
		if err := rows.Scan(&bt, &n); err != nil {
			return nil, eris.Wrap(wrapRepo(err), "geospatial: scan category count")
		}
		counts[model.Category(bt)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: iterate category counts")
	}
	return counts, nil
}

// Nearest implements Repository.
func (r *PostgresRepository) Nearest(ctx context.Context, category model.Category, center Point, maxRadiusM float64) (NearestStats, error) {
	sql := `
		SELECT COUNT(*),
		       MIN(ST_Distance(geom::geography, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography))
		FROM businesses
		WHERE business_type = $1
		  AND is_active = true
		  AND ST_DWithin(geom::geography, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4)
	`
	var s NearestStats
	err := r.pool.QueryRow(ctx, sql, string(category), center.Lng, center.Lat, maxRadiusM).Scan(
		&s.Count, &s.MinDistanceM,
	)
	if err != nil {
		return NearestStats{}, eris.Wrap(wrapRepo(err), "geospatial: nearest")
	}
	return s, nil
}

// ListEligible implements Repository.
func (r *PostgresRepository) ListEligible(ctx context.Context, category model.Category, minReviews int) ([]model.Business, error) {
	sql := `
		SELECT id, name, business_type,
		       ST_Y(geom), ST_X(geom),
		       rating, review_count, price_level, is_active
		FROM businesses
		WHERE business_type = $1
		  AND rating IS NOT NULL
		  AND review_count > $2
		  AND is_active = true
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, sql, string(category), minReviews)
	if err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: list eligible")
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		var b model.Business
		var bt string
		if err := rows.Scan(&b.ID, &b.Name, &bt, &b.Latitude, &b.Longitude,
			&b.Rating, &b.ReviewCount, &b.PriceLevel, &b.Active); err != nil {
			return nil, eris.Wrap(wrapRepo(err), "geospatial: scan eligible business")
		}
		b.Category = model.Category(bt)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: iterate eligible businesses")
	}
	return out, nil
}

// ListReviews implements Repository.
func (r *PostgresRepository) ListReviews(ctx context.Context, businessID int64) ([]model.Review, error) {
	sql := `
		SELECT id, business_id, text, rating, published_at
		FROM business_reviews
		WHERE business_id = $1 AND text IS NOT NULL
		ORDER BY published_at DESC
	`
	rows, err := r.pool.Query(ctx, sql, businessID)
	if err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: list reviews")
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BusinessID, &rv.Text, &rv.Rating, &rv.PublishedAt); err != nil {
			return nil, eris.Wrap(wrapRepo(err), "geospatial: scan review")
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(wrapRepo(err), "geospatial: iterate reviews")
	}
	return out, nil
}

// wrapRepo tags a driver error with the ErrRepository sentinel so callers can
// classify it without inspecting pgx internals. Both chains stay reachable:
// errors.Is matches the sentinel and the original pgx error alike.
func wrapRepo(err error) error {
	return errors.Join(ErrRepository, err)
}
