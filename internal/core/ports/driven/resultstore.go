package driven

import (
	"context"

	"github.com/custodia-labs/aobun/internal/core/domain"
)

// ResultStore holds converted artifacts until they are downloaded or expire.
type ResultStore interface {
	// Put stores an artifact and returns an opaque ID for retrieval.
	Put(ctx context.Context, artifact domain.Artifact) (string, error)

	// Get retrieves an artifact by ID.
	// Returns domain.ErrNotFound if the ID is unknown or expired.
	Get(ctx context.Context, id string) (*domain.Artifact, error)

	// Len returns the number of live artifacts.
	Len() int
}
