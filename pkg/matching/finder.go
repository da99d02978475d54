package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/tracing"
)

// Candidate thresholds per entity type. Anything scoring below its threshold
// is not considered a match at all.
const (
	manufacturerThreshold = 0.7
	modelThreshold        = 0.8
	guitarThreshold       = 0.5
)

// ManufacturerSource lists manufacturers eligible for matching.
type ManufacturerSource interface {
	ListActive(ctx context.Context) ([]models.Manufacturer, error)
}

// ModelSource lists models for a manufacturer.
type ModelSource interface {
	ListByManufacturer(ctx context.Context, manufacturerID string) ([]models.Model, error)
}

// GuitarSource queries individual guitars three ways: by serial number, by
// model id, and by fallback text.
type GuitarSource interface {
	GetBySerial(ctx context.Context, serial string) (*models.IndividualGuitar, error)
	ListByModelID(ctx context.Context, modelID string) ([]models.IndividualGuitar, error)
	ListByFallback(ctx context.Context, manufacturer string, model, yearEstimate *string) ([]models.IndividualGuitar, error)
}

// Finder searches the store for existing entities and scores them against an
// incoming payload.
type Finder struct {
	scorer        *Scorer
	manufacturers ManufacturerSource
	guitarModels  ModelSource
	guitars       GuitarSource
}

// NewFinder creates a Finder over the given sources.
func NewFinder(manufacturers ManufacturerSource, guitarModels ModelSource, guitars GuitarSource) *Finder {
	return &Finder{
		scorer:        NewScorer(),
		manufacturers: manufacturers,
		guitarModels:  guitarModels,
		guitars:       guitars,
	}
}

// FindManufacturers scores the incoming manufacturer against every
// non-defunct manufacturer. Confidence is name similarity plus a 0.1 bonus
// each for country and founding year, awarded when the input gives the value
// and the stored row does not contradict it.
func (f *Finder) FindManufacturers(ctx context.Context, input *models.ManufacturerInput) ([]models.Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Finder.FindManufacturers")
	defer span.End()

	existing, err := f.manufacturers.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, m := range existing {
		confidence := f.scorer.Similarity(input.Name, m.Name)

		countryMatch := true
		if input.Country != nil && m.Country != nil {
			countryMatch = *input.Country == *m.Country
		}
		if countryMatch && input.Country != nil {
			confidence += 0.1
		}

		yearMatch := true
		if input.FoundedYear != nil && m.FoundedYear != nil {
			yearMatch = *input.FoundedYear == *m.FoundedYear
		}
		if yearMatch && input.FoundedYear != nil {
			confidence += 0.1
		}

		if confidence >= manufacturerThreshold {
			candidates = append(candidates, models.Candidate{ID: m.ID, Confidence: confidence, Label: m.Name})
		}
	}

	sortByConfidence(candidates)
	return candidates, nil
}

// FindModels scores the incoming model against the manufacturer's existing
// models. A differing year disqualifies a candidate outright; a matching year
// adds 0.3 on top of name similarity.
func (f *Finder) FindModels(ctx context.Context, manufacturerID string, input *models.ModelInput) ([]models.Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Finder.FindModels")
	defer span.End()

	existing, err := f.guitarModels.ListByManufacturer(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, m := range existing {
		// Year is a hard gate: "Firebird III 1976" must never match
		// "Firebird I 1963" no matter how similar the names are.
		if input.Year != 0 && m.Year != 0 && input.Year != m.Year {
			continue
		}

		confidence := f.scorer.Similarity(input.Name, m.Name)
		if input.Year != 0 && input.Year == m.Year {
			confidence += 0.3
		}

		if confidence >= modelThreshold {
			candidates = append(candidates, models.Candidate{
				ID:         m.ID,
				Confidence: confidence,
				Label:      fmt.Sprintf("%s (%d)", m.Name, m.Year),
			})
		}
	}

	sortByConfidence(candidates)
	return candidates, nil
}

// FindGuitars runs the two-tier individual guitar search. An exact serial
// number match short-circuits with confidence 1.0. Otherwise candidates come
// from the resolved model id when there is one, or from fallback text
// matching, which requires at least a fallback manufacturer name.
func (f *Finder) FindGuitars(ctx context.Context, modelID string, input *models.IndividualGuitarInput) ([]models.Candidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Finder.FindGuitars")
	defer span.End()

	if input.SerialNumber != nil && *input.SerialNumber != "" {
		existing, err := f.guitars.GetBySerial(ctx, *input.SerialNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return []models.Candidate{{ID: existing.ID, Confidence: 1.0, Label: guitarLabel(existing)}}, nil
		}
	}

	var existing []models.IndividualGuitar
	var err error
	if modelID != "" {
		existing, err = f.guitars.ListByModelID(ctx, modelID)
	} else {
		if input.ManufacturerNameFallback == nil || *input.ManufacturerNameFallback == "" {
			return nil, nil
		}
		existing, err = f.guitars.ListByFallback(ctx, *input.ManufacturerNameFallback, input.ModelNameFallback, input.YearEstimate)
	}
	if err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, g := range existing {
		confidence := 0.0

		if input.ProductionDate != nil && g.ProductionDate != nil && *input.ProductionDate == *g.ProductionDate {
			confidence += 0.5
		}

		if modelID == "" && g.ManufacturerNameFallback != nil {
			confidence += 0.3

			if input.ModelNameFallback != nil && g.ModelNameFallback != nil &&
				f.scorer.Normalize(*input.ModelNameFallback) == f.scorer.Normalize(*g.ModelNameFallback) {
				confidence += 0.4
			}
			if input.YearEstimate != nil && g.YearEstimate != nil && *input.YearEstimate == *g.YearEstimate {
				confidence += 0.3
			}
		}

		if confidence >= guitarThreshold {
			candidates = append(candidates, models.Candidate{ID: g.ID, Confidence: confidence, Label: guitarLabel(&g)})
		}
	}

	sortByConfidence(candidates)
	return candidates, nil
}

func guitarLabel(g *models.IndividualGuitar) string {
	if g.SerialNumber != nil && *g.SerialNumber != "" {
		return "serial " + *g.SerialNumber
	}
	if g.ModelNameFallback != nil && *g.ModelNameFallback != "" {
		return *g.ModelNameFallback
	}
	return g.ID
}

// sortByConfidence sorts descending; ties keep store iteration order.
func sortByConfidence(candidates []models.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}
