package resolution

import (
	"context"

	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/tracing"
)

// ModelIDSource resolves a (manufacturer name, model name, year) triple to a
// model id by case-insensitive exact lookup. Returns "" when no row matches.
type ModelIDSource interface {
	ResolveID(ctx context.Context, manufacturerName, modelName string, year int) (string, error)
}

// ReferenceResolver turns a submission's model reference into a hard model
// id. An unresolved reference is not an error: callers fall back to the
// free-text fields instead.
type ReferenceResolver struct {
	source ModelIDSource
}

// NewReferenceResolver creates a ReferenceResolver over the given source.
func NewReferenceResolver(source ModelIDSource) *ReferenceResolver {
	return &ReferenceResolver{source: source}
}

// Resolve returns the model id for the reference, or "" when the reference
// is absent or names a model the store does not have.
func (r *ReferenceResolver) Resolve(ctx context.Context, ref *models.ModelReference) (string, error) {
	if ref == nil {
		return "", nil
	}

	ctx, span := tracing.StartSpan(ctx, "resolution.ReferenceResolver.Resolve")
	defer span.End()

	return r.source.ResolveID(ctx, ref.ManufacturerName, ref.ModelName, ref.Year)
}
