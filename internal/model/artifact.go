package model

import "time"

// ModelMetadata describes a persisted regression model. FeatureNames captures
// the exact column order used at fit time; prediction must reorder incoming
// feature vectors to match it, so artifacts stay interpretable after the
// feature schema evolves.
type ModelMetadata struct {
	ID                string             `json:"id"`
	Category          Category           `json:"category"`
	Algorithm         string             `json:"algorithm"`
	SchemaVersion     string             `json:"schema_version"`
	FeatureNames      []string           `json:"feature_names"`
	R2                float64            `json:"r2"`
	RMSE              float64            `json:"rmse"`
	MAE               float64            `json:"mae"`
	SampleCount       int                `json:"sample_count"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	Active            bool               `json:"active"`
	TrainedAt         time.Time          `json:"trained_at"`
}

// ModelArtifact is an immutable fitted model: an opaque serialized payload
// plus its metadata. A retrain writes a new artifact and flips the active
// flag; existing rows are never mutated.
type ModelArtifact struct {
	Metadata ModelMetadata `json:"metadata"`
	Payload  []byte        `json:"-"`
}
