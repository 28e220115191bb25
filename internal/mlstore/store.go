// Package mlstore persists trained model artifacts. Artifacts are immutable:
// a retrain inserts a new row and flips the active flag to it in the same
// transaction, leaving prior rows intact but inactive.
package mlstore

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siteiq/internal/model"
)

// ErrNotFound is returned when no active artifact exists for a category.
// Scoring treats it as non-fatal and degrades to the rule-based path.
var ErrNotFound = eris.New("mlstore: no active model")

// Store is the artifact persistence surface.
type Store interface {
	// Save persists a new artifact and atomically makes it the single
	// active artifact for its category. The artifact's ID and Active flag
	// are set by the store.
	Save(ctx context.Context, artifact *model.ModelArtifact) (string, error)

	// LoadLatestActive returns the most recently trained active artifact
	// for a category, or ErrNotFound.
	LoadLatestActive(ctx context.Context, category model.Category) (*model.ModelArtifact, error)

	// List returns artifact metadata, newest first. An empty category lists
	// all categories.
	List(ctx context.Context, category model.Category) ([]model.ModelMetadata, error)

	// Close releases the underlying connection.
	Close() error
}
