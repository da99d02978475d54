package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/fretbase/registry/internal/repositories/finish"
	"github.com/fretbase/registry/internal/repositories/specification"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/resolution"
	"github.com/fretbase/registry/pkg/tracing"
)

// ManufacturerStore persists manufacturers.
type ManufacturerStore interface {
	Create(ctx context.Context, input *models.ManufacturerInput) (*models.Manufacturer, error)
	Merge(ctx context.Context, id string, input *models.ManufacturerInput) error
}

// ProductLineStore resolves product lines, creating them on demand.
type ProductLineStore interface {
	GetOrCreate(ctx context.Context, manufacturerID, name string) (string, error)
}

// ModelStore persists models.
type ModelStore interface {
	Create(ctx context.Context, manufacturerID, productLineID string, input *models.ModelInput) (*models.Model, error)
	Merge(ctx context.Context, id string, input *models.ModelInput) error
}

// GuitarStore persists individual guitars.
type GuitarStore interface {
	Create(ctx context.Context, modelID string, input *models.IndividualGuitarInput) (*models.IndividualGuitar, error)
	Merge(ctx context.Context, id, modelID string, input *models.IndividualGuitarInput) error
}

// SpecificationStore persists specification sheets.
type SpecificationStore interface {
	Create(ctx context.Context, owner specification.Owner, input *models.SpecificationInput) (string, error)
}

// FinishStore persists finishes.
type FinishStore interface {
	Create(ctx context.Context, owner finish.Owner, input *models.FinishInput) (string, error)
}

// AssociationStore persists notable associations.
type AssociationStore interface {
	Create(ctx context.Context, guitarID string, input *models.NotableAssociationInput) (string, error)
}

// SourceStore persists data sources with (name, url) deduplication.
type SourceStore interface {
	FindExisting(ctx context.Context, sourceName string, url *string) (string, error)
	Create(ctx context.Context, input *models.SourceAttributionInput) (string, error)
}

// Stores bundles every store the processor writes to. In production all of
// them sit on the same transaction.
type Stores struct {
	Manufacturers  ManufacturerStore
	ProductLines   ProductLineStore
	Models         ModelStore
	Guitars        GuitarStore
	Specifications SpecificationStore
	Finishes       FinishStore
	Associations   AssociationStore
	Sources        SourceStore
}

// SubmissionProcessor applies one submission's entities to the store in
// dependency order: manufacturer, then model, then individual guitar, then
// source attribution. A model can therefore name the manufacturer submitted
// alongside it.
type SubmissionProcessor struct {
	decider *resolution.Decider
	stores  Stores
	logger  ectologger.Logger
}

// New creates a SubmissionProcessor.
func New(decider *resolution.Decider, stores Stores, logger ectologger.Logger) *SubmissionProcessor {
	return &SubmissionProcessor{
		decider: decider,
		stores:  stores,
		logger:  logger,
	}
}

// Process applies a single submission. Failures never propagate as errors:
// they are folded into the result so a batch can keep going. That includes
// panics from a store or decider, which come back as a failed result.
func (p *SubmissionProcessor) Process(ctx context.Context, index int, submission *models.Submission) (result models.SubmissionResult) {
	ctx, span := tracing.StartSpan(ctx, "processor.SubmissionProcessor.Process")
	defer span.End()

	result = models.SubmissionResult{
		Index:      index,
		IDsCreated: map[string]any{},
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.WithContext(ctx).WithFields(map[string]any{"index": index, "panic": r}).Error("Submission processing panicked")
			result.Success = false
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("Processing error: %v", r))
		}
	}()

	if submission.Manufacturer != nil && !p.processManufacturer(ctx, submission.Manufacturer, &result) {
		return result
	}
	if submission.Model != nil && !p.processModel(ctx, submission.Model, &result) {
		return result
	}
	if submission.IndividualGuitar != nil && !p.processGuitar(ctx, submission.IndividualGuitar, &result) {
		return result
	}
	if submission.SourceAttribution != nil && !p.processSource(ctx, submission.SourceAttribution, &result) {
		return result
	}

	result.Success = true
	return result
}

func (p *SubmissionProcessor) processManufacturer(ctx context.Context, input *models.ManufacturerInput, result *models.SubmissionResult) bool {
	decision, err := p.decider.DecideManufacturer(ctx, input)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	if !decision.Valid {
		result.Conflicts = append(result.Conflicts, decision.Conflicts...)
		return false
	}
	if decision.Resolution == models.ResolutionManualReview {
		result.ManualReviewNeeded = true
		result.Conflicts = append(result.Conflicts, fmt.Sprintf("Manufacturer conflict: %v", decision.Conflicts))
		return false
	}

	switch decision.Action {
	case models.ActionInsert:
		m, err := p.stores.Manufacturers.Create(ctx, input)
		if err != nil {
			return p.fail(ctx, result, err)
		}
		result.IDsCreated["manufacturer"] = m.ID
	case models.ActionUpdate:
		if err := p.stores.Manufacturers.Merge(ctx, decision.TargetID, input); err != nil {
			return p.fail(ctx, result, err)
		}
	}

	result.Record(models.EntityManufacturer, decision.Action)
	return true
}

func (p *SubmissionProcessor) processModel(ctx context.Context, input *models.ModelInput, result *models.SubmissionResult) bool {
	decision, manufacturerID, err := p.decider.DecideModel(ctx, input)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	if !decision.Valid {
		result.Conflicts = append(result.Conflicts, decision.Conflicts...)
		return false
	}
	if decision.Resolution == models.ResolutionManualReview {
		result.ManualReviewNeeded = true
		result.Conflicts = append(result.Conflicts, fmt.Sprintf("Model conflict: %v", decision.Conflicts))
		return false
	}

	switch decision.Action {
	case models.ActionInsert:
		productLineID := ""
		if input.ProductLineName != nil && *input.ProductLineName != "" {
			productLineID, err = p.stores.ProductLines.GetOrCreate(ctx, manufacturerID, *input.ProductLineName)
			if err != nil {
				return p.fail(ctx, result, err)
			}
		}

		m, err := p.stores.Models.Create(ctx, manufacturerID, productLineID, input)
		if err != nil {
			return p.fail(ctx, result, err)
		}
		result.IDsCreated["model"] = m.ID

		if input.Specifications != nil {
			specID, err := p.stores.Specifications.Create(ctx, specification.ForModel(m.ID), input.Specifications)
			if err != nil {
				return p.fail(ctx, result, err)
			}
			result.IDsCreated["model_specifications"] = specID
		}
		if len(input.Finishes) > 0 {
			finishIDs := make([]string, 0, len(input.Finishes))
			for i := range input.Finishes {
				finishID, err := p.stores.Finishes.Create(ctx, finish.ForModel(m.ID), &input.Finishes[i])
				if err != nil {
					return p.fail(ctx, result, err)
				}
				finishIDs = append(finishIDs, finishID)
			}
			result.IDsCreated["model_finishes"] = finishIDs
		}
	case models.ActionUpdate:
		if err := p.stores.Models.Merge(ctx, decision.TargetID, input); err != nil {
			return p.fail(ctx, result, err)
		}
	}

	result.Record(models.EntityModel, decision.Action)
	return true
}

func (p *SubmissionProcessor) processGuitar(ctx context.Context, input *models.IndividualGuitarInput, result *models.SubmissionResult) bool {
	decision, modelID, err := p.decider.DecideGuitar(ctx, input)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	if !decision.Valid {
		result.Conflicts = append(result.Conflicts, decision.Conflicts...)
		return false
	}

	switch decision.Action {
	case models.ActionInsert:
		g, err := p.stores.Guitars.Create(ctx, modelID, input)
		if err != nil {
			return p.fail(ctx, result, err)
		}
		result.IDsCreated["individual_guitar"] = g.ID

		if input.Specifications != nil {
			specID, err := p.stores.Specifications.Create(ctx, specification.ForGuitar(g.ID), input.Specifications)
			if err != nil {
				return p.fail(ctx, result, err)
			}
			result.IDsCreated["guitar_specifications"] = specID
		}
		if len(input.NotableAssociations) > 0 {
			associationIDs := make([]string, 0, len(input.NotableAssociations))
			for i := range input.NotableAssociations {
				associationID, err := p.stores.Associations.Create(ctx, g.ID, &input.NotableAssociations[i])
				if err != nil {
					return p.fail(ctx, result, err)
				}
				associationIDs = append(associationIDs, associationID)
			}
			result.IDsCreated["notable_associations"] = associationIDs
		}
	case models.ActionUpdate:
		if err := p.stores.Guitars.Merge(ctx, decision.TargetID, modelID, input); err != nil {
			return p.fail(ctx, result, err)
		}
	}

	result.Record(models.EntityGuitar, decision.Action)
	return true
}

func (p *SubmissionProcessor) processSource(ctx context.Context, input *models.SourceAttributionInput, result *models.SubmissionResult) bool {
	decision, err := p.decider.DecideSource(ctx, input)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	if !decision.Valid {
		result.Conflicts = append(result.Conflicts, decision.Conflicts...)
		return false
	}

	id, err := p.stores.Sources.FindExisting(ctx, input.SourceName, input.URL)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	if id == "" {
		id, err = p.stores.Sources.Create(ctx, input)
		if err != nil {
			return p.fail(ctx, result, err)
		}
	}
	result.IDsCreated["source"] = id

	result.Record(models.EntitySource, models.ActionInsert)
	return true
}

// fail folds a store or decider error into the result and marks the
// submission failed.
func (p *SubmissionProcessor) fail(ctx context.Context, result *models.SubmissionResult, err error) bool {
	p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"index": result.Index}).Error("Submission processing failed")
	result.Conflicts = append(result.Conflicts, fmt.Sprintf("Processing error: %s", err.Error()))
	return false
}
