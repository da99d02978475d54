package models

import "time"

// Manufacturer statuses.
const (
	ManufacturerStatusActive  = "active"
	ManufacturerStatusDefunct = "defunct"
)

// Manufacturer is a guitar maker. Identity is fuzzy: name plus optional
// country and founding year.
type Manufacturer struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Country     *string   `json:"country,omitempty" db:"country"`
	FoundedYear *int      `json:"founded_year,omitempty" db:"founded_year"`
	Website     *string   `json:"website,omitempty" db:"website"`
	Status      *string   `json:"status,omitempty" db:"status"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ManufacturerInput is the submission payload for a manufacturer.
type ManufacturerInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Country     *string `json:"country,omitempty" validate:"omitempty,max=50"`
	FoundedYear *int    `json:"founded_year,omitempty" validate:"omitempty,gte=1800,lte=2030"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active defunct acquired"`
	Notes       *string `json:"notes,omitempty"`
}

// StatusOrDefault returns the status, defaulting to active.
func (m *ManufacturerInput) StatusOrDefault() string {
	if m.Status != nil && *m.Status != "" {
		return *m.Status
	}
	return ManufacturerStatusActive
}
