package models

import "time"

// ProductLine groups models under a manufacturer (e.g. "Les Paul").
// Lines are created on demand when a submission names one that does not exist.
type ProductLine struct {
	ID             string    `json:"id" db:"id"`
	ManufacturerID string    `json:"manufacturer_id" db:"manufacturer_id"`
	Name           string    `json:"name" db:"name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Model is a production guitar model. Identity is fuzzy per manufacturer,
// but year is a hard gate: models from different years never match.
type Model struct {
	ID                          string    `json:"id" db:"id"`
	ManufacturerID              string    `json:"manufacturer_id" db:"manufacturer_id"`
	ProductLineID               *string   `json:"product_line_id,omitempty" db:"product_line_id"`
	Name                        string    `json:"name" db:"name"`
	Year                        int       `json:"year" db:"year"`
	ProductionType              *string   `json:"production_type,omitempty" db:"production_type"`
	ProductionStartDate         *string   `json:"production_start_date,omitempty" db:"production_start_date"`
	ProductionEndDate           *string   `json:"production_end_date,omitempty" db:"production_end_date"`
	EstimatedProductionQuantity *int      `json:"estimated_production_quantity,omitempty" db:"estimated_production_quantity"`
	MSRPOriginal                *float64  `json:"msrp_original,omitempty" db:"msrp_original"`
	Currency                    *string   `json:"currency,omitempty" db:"currency"`
	Description                 *string   `json:"description,omitempty" db:"description"`
	CreatedAt                   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at" db:"updated_at"`
}

// ModelInput is the submission payload for a model. The manufacturer is named
// by text and resolved to an id before insertion.
type ModelInput struct {
	ManufacturerName            string              `json:"manufacturer_name" validate:"required"`
	ProductLineName             *string             `json:"product_line_name,omitempty"`
	Name                        string              `json:"name" validate:"required,max=150"`
	Year                        int                 `json:"year" validate:"required,gte=1900,lte=2030"`
	ProductionType              *string             `json:"production_type,omitempty" validate:"omitempty,oneof=mass limited custom prototype one-off"`
	ProductionStartDate         *string             `json:"production_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProductionEndDate           *string             `json:"production_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EstimatedProductionQuantity *int                `json:"estimated_production_quantity,omitempty" validate:"omitempty,gte=1"`
	MSRPOriginal                *float64            `json:"msrp_original,omitempty" validate:"omitempty,gte=0"`
	Currency                    *string             `json:"currency,omitempty" validate:"omitempty,max=3"`
	Description                 *string             `json:"description,omitempty"`
	Specifications              *SpecificationInput `json:"specifications,omitempty"`
	Finishes                    []FinishInput       `json:"finishes,omitempty" validate:"omitempty,dive"`
}

// ProductionTypeOrDefault returns the production type, defaulting to mass.
func (m *ModelInput) ProductionTypeOrDefault() string {
	if m.ProductionType != nil && *m.ProductionType != "" {
		return *m.ProductionType
	}
	return "mass"
}

// CurrencyOrDefault returns the currency, defaulting to USD.
func (m *ModelInput) CurrencyOrDefault() string {
	if m.Currency != nil && *m.Currency != "" {
		return *m.Currency
	}
	return "USD"
}
