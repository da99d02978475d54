package models

import "time"

// DataSource records where a submission's facts came from. Sources are
// deduplicated on (source_name, url): a second citation of the same page is
// reused rather than re-inserted.
type DataSource struct {
	ID               string    `json:"id" db:"id"`
	SourceName       string    `json:"source_name" db:"source_name"`
	SourceType       *string   `json:"source_type,omitempty" db:"source_type"`
	URL              *string   `json:"url,omitempty" db:"url"`
	ISBN             *string   `json:"isbn,omitempty" db:"isbn"`
	PublicationDate  *string   `json:"publication_date,omitempty" db:"publication_date"`
	ReliabilityScore *int      `json:"reliability_score,omitempty" db:"reliability_score"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// SourceAttributionInput is the submission payload for a data source.
type SourceAttributionInput struct {
	SourceName       string  `json:"source_name" validate:"required,max=100"`
	SourceType       *string `json:"source_type,omitempty" validate:"omitempty,oneof=manufacturer_catalog auction_record museum book website manual_entry price_guide"`
	URL              *string `json:"url,omitempty" validate:"omitempty,url,max=500"`
	ISBN             *string `json:"isbn,omitempty" validate:"omitempty,max=20"`
	PublicationDate  *string `json:"publication_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReliabilityScore *int    `json:"reliability_score,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes            *string `json:"notes,omitempty"`
}

// SourceTypeOrDefault returns the source type, defaulting to website.
func (s *SourceAttributionInput) SourceTypeOrDefault() string {
	if s.SourceType != nil && *s.SourceType != "" {
		return *s.SourceType
	}
	return "website"
}
