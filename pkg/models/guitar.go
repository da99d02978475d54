package models

import "time"

// Significance levels for individual guitars.
const (
	SignificanceHistoric = "historic"
	SignificanceNotable  = "notable"
	SignificanceRare     = "rare"
	SignificanceCustom   = "custom"
)

// IndividualGuitar is a physical instrument. It either links to a catalog
// model by id or carries free-text fallback fields describing its maker and
// model when no catalog entry exists.
type IndividualGuitar struct {
	ID                       string    `json:"id" db:"id"`
	ModelID                  *string   `json:"model_id,omitempty" db:"model_id"`
	ManufacturerNameFallback *string   `json:"manufacturer_name_fallback,omitempty" db:"manufacturer_name_fallback"`
	ModelNameFallback        *string   `json:"model_name_fallback,omitempty" db:"model_name_fallback"`
	YearEstimate             *string   `json:"year_estimate,omitempty" db:"year_estimate"`
	Description              *string   `json:"description,omitempty" db:"description"`
	SerialNumber             *string   `json:"serial_number,omitempty" db:"serial_number"`
	ProductionDate           *string   `json:"production_date,omitempty" db:"production_date"`
	ProductionNumber         *int      `json:"production_number,omitempty" db:"production_number"`
	SignificanceLevel        *string   `json:"significance_level,omitempty" db:"significance_level"`
	SignificanceNotes        *string   `json:"significance_notes,omitempty" db:"significance_notes"`
	CurrentEstimatedValue    *float64  `json:"current_estimated_value,omitempty" db:"current_estimated_value"`
	LastValuationDate        *string   `json:"last_valuation_date,omitempty" db:"last_valuation_date"`
	ConditionRating          *string   `json:"condition_rating,omitempty" db:"condition_rating"`
	Modifications            *string   `json:"modifications,omitempty" db:"modifications"`
	ProvenanceNotes          *string   `json:"provenance_notes,omitempty" db:"provenance_notes"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time `json:"updated_at" db:"updated_at"`
}

// ModelReference names a catalog model by manufacturer, model name and year.
type ModelReference struct {
	ManufacturerName string `json:"manufacturer_name" validate:"required"`
	ModelName        string `json:"model_name" validate:"required"`
	Year             int    `json:"year" validate:"required,gte=1900,lte=2030"`
}

// IndividualGuitarInput is the submission payload for an individual guitar.
// The instrument must be identifiable: a ModelReference, or a fallback
// manufacturer name paired with a fallback model name or a description. That
// gate lives in the schema validator.
type IndividualGuitarInput struct {
	ModelReference           *ModelReference            `json:"model_reference,omitempty"`
	ManufacturerNameFallback *string                    `json:"manufacturer_name_fallback,omitempty" validate:"omitempty,max=100"`
	ModelNameFallback        *string                    `json:"model_name_fallback,omitempty" validate:"omitempty,max=150"`
	YearEstimate             *string                    `json:"year_estimate,omitempty" validate:"omitempty,max=50"`
	Description              *string                    `json:"description,omitempty"`
	SerialNumber             *string                    `json:"serial_number,omitempty" validate:"omitempty,max=50"`
	ProductionDate           *string                    `json:"production_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProductionNumber         *int                       `json:"production_number,omitempty" validate:"omitempty,gte=1"`
	SignificanceLevel        *string                    `json:"significance_level,omitempty" validate:"omitempty,oneof=historic notable rare custom"`
	SignificanceNotes        *string                    `json:"significance_notes,omitempty"`
	CurrentEstimatedValue    *float64                   `json:"current_estimated_value,omitempty" validate:"omitempty,gte=0"`
	LastValuationDate        *string                    `json:"last_valuation_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ConditionRating          *string                    `json:"condition_rating,omitempty" validate:"omitempty,oneof=mint excellent very_good good fair poor relic"`
	Modifications            *string                    `json:"modifications,omitempty"`
	ProvenanceNotes          *string                    `json:"provenance_notes,omitempty"`
	Specifications           *SpecificationInput        `json:"specifications,omitempty"`
	NotableAssociations      []NotableAssociationInput  `json:"notable_associations,omitempty" validate:"omitempty,dive"`
}

// SignificanceLevelOrDefault returns the significance level, defaulting to
// notable.
func (g *IndividualGuitarInput) SignificanceLevelOrDefault() string {
	if g.SignificanceLevel != nil && *g.SignificanceLevel != "" {
		return *g.SignificanceLevel
	}
	return SignificanceNotable
}

// HasIdentity reports whether the input carries enough to identify the
// instrument: a model reference, or a fallback manufacturer name combined
// with either a fallback model name or a description. A fallback
// manufacturer alone is not an identity.
func (g *IndividualGuitarInput) HasIdentity() bool {
	if g.ModelReference != nil {
		return true
	}
	if g.ManufacturerNameFallback == nil || *g.ManufacturerNameFallback == "" {
		return false
	}
	return (g.ModelNameFallback != nil && *g.ModelNameFallback != "") ||
		(g.Description != nil && *g.Description != "")
}
