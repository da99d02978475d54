package resolution

import (
	"context"
	"fmt"

	"github.com/fretbase/registry/pkg/matching"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/schema"
	"github.com/fretbase/registry/pkg/tracing"
)

// Decision thresholds shared by manufacturers and models. At or above
// mergeThreshold the best candidate is treated as the same entity; between
// reviewThreshold and mergeThreshold it needs a human.
const (
	mergeThreshold  = 0.95
	reviewThreshold = 0.85
)

// ManufacturerLookup finds a manufacturer by case-insensitive exact name.
// Returns nil when absent.
type ManufacturerLookup interface {
	FindByName(ctx context.Context, name string) (*models.Manufacturer, error)
}

// Decider validates a payload, finds its match candidates and resolves what
// should happen to it: insert, merge into an existing row, or flag for
// manual review.
type Decider struct {
	validator     *schema.Validator
	finder        *matching.Finder
	manufacturers ManufacturerLookup
	resolver      *ReferenceResolver
}

// NewDecider creates a Decider.
func NewDecider(validator *schema.Validator, finder *matching.Finder, manufacturers ManufacturerLookup, resolver *ReferenceResolver) *Decider {
	return &Decider{
		validator:     validator,
		finder:        finder,
		manufacturers: manufacturers,
		resolver:      resolver,
	}
}

// DecideManufacturer resolves a manufacturer payload.
func (d *Decider) DecideManufacturer(ctx context.Context, input *models.ManufacturerInput) (models.Decision, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Decider.DecideManufacturer")
	defer span.End()

	if vr := d.validator.ValidateManufacturer(input); !vr.Valid {
		return models.InvalidSchemaDecision(vr.Violations()), nil
	}

	candidates, err := d.finder.FindManufacturers(ctx, input)
	if err != nil {
		return models.Decision{}, err
	}

	if len(candidates) == 0 {
		return models.InsertDecision(), nil
	}

	best := candidates[0]
	switch {
	case best.Confidence >= mergeThreshold:
		return models.UpdateDecision(best.ID, best.Confidence), nil
	case best.Confidence >= reviewThreshold:
		return models.ConflictDecision(best.ID, best.Confidence,
			[]string{fmt.Sprintf("Similar manufacturer found: %s", best.Label)}), nil
	default:
		return models.InsertDecision(), nil
	}
}

// DecideModel resolves a model payload. The named manufacturer must already
// exist; when it does not, the decision is MISSING_DEPENDENCY and the
// returned manufacturer id is empty.
func (d *Decider) DecideModel(ctx context.Context, input *models.ModelInput) (models.Decision, string, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Decider.DecideModel")
	defer span.End()

	if vr := d.validator.ValidateModel(input); !vr.Valid {
		return models.InvalidSchemaDecision(vr.Violations()), "", nil
	}

	manufacturer, err := d.manufacturers.FindByName(ctx, input.ManufacturerName)
	if err != nil {
		return models.Decision{}, "", err
	}
	if manufacturer == nil {
		return models.MissingDependencyDecision(
			fmt.Sprintf("Manufacturer '%s' not found", input.ManufacturerName)), "", nil
	}

	candidates, err := d.finder.FindModels(ctx, manufacturer.ID, input)
	if err != nil {
		return models.Decision{}, "", err
	}

	if len(candidates) == 0 {
		return models.InsertDecision(), manufacturer.ID, nil
	}

	best := candidates[0]
	switch {
	case best.Confidence >= mergeThreshold:
		return models.UpdateDecision(best.ID, best.Confidence), manufacturer.ID, nil
	case best.Confidence >= reviewThreshold:
		return models.ConflictDecision(best.ID, best.Confidence,
			[]string{fmt.Sprintf("Similar model found: %s", best.Label)}), manufacturer.ID, nil
	default:
		return models.InsertDecision(), manufacturer.ID, nil
	}
}

// DecideGuitar resolves an individual guitar payload. Guitars follow a
// binary rule: a candidate merges only at confidence exactly 1.0, which an
// exact serial-number match or full agreement across the fallback trio
// (manufacturer, model, year estimate) produces. Partial agreement, and
// anything the production-date bonus pushes past 1.0, inserts instead. The
// resolved model id (possibly empty) is returned for the caller to persist.
func (d *Decider) DecideGuitar(ctx context.Context, input *models.IndividualGuitarInput) (models.Decision, string, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Decider.DecideGuitar")
	defer span.End()

	if vr := d.validator.ValidateGuitar(input); !vr.Valid {
		return models.InvalidSchemaDecision(vr.Violations()), "", nil
	}

	modelID, err := d.resolver.Resolve(ctx, input.ModelReference)
	if err != nil {
		return models.Decision{}, "", err
	}

	candidates, err := d.finder.FindGuitars(ctx, modelID, input)
	if err != nil {
		return models.Decision{}, "", err
	}

	if len(candidates) > 0 && candidates[0].Confidence == 1.0 {
		return models.UpdateDecision(candidates[0].ID, 1.0), modelID, nil
	}
	return models.InsertDecision(), modelID, nil
}

// DecideSource resolves a source attribution payload. Sources never merge
// through matching; deduplication happens at insert time on (name, url).
func (d *Decider) DecideSource(ctx context.Context, input *models.SourceAttributionInput) (models.Decision, error) {
	if vr := d.validator.ValidateSource(input); !vr.Valid {
		return models.InvalidSchemaDecision(vr.Violations()), nil
	}
	return models.InsertDecision(), nil
}
