package models

import "time"

// Specification is a component sheet attached to exactly one model or one
// individual guitar.
type Specification struct {
	ID              string    `json:"id" db:"id"`
	ModelID         *string   `json:"model_id,omitempty" db:"model_id"`
	GuitarID        *string   `json:"guitar_id,omitempty" db:"guitar_id"`
	BodyWood        *string   `json:"body_wood,omitempty" db:"body_wood"`
	NeckWood        *string   `json:"neck_wood,omitempty" db:"neck_wood"`
	FingerboardWood *string   `json:"fingerboard_wood,omitempty" db:"fingerboard_wood"`
	ScaleLength     *float64  `json:"scale_length,omitempty" db:"scale_length"`
	NumFrets        *int      `json:"num_frets,omitempty" db:"num_frets"`
	NutWidth        *float64  `json:"nut_width,omitempty" db:"nut_width"`
	NeckProfile     *string   `json:"neck_profile,omitempty" db:"neck_profile"`
	BridgeType      *string   `json:"bridge_type,omitempty" db:"bridge_type"`
	PickupConfig    *string   `json:"pickup_configuration,omitempty" db:"pickup_configuration"`
	PickupBrand     *string   `json:"pickup_brand,omitempty" db:"pickup_brand"`
	PickupModel     *string   `json:"pickup_model,omitempty" db:"pickup_model"`
	ElectronicsDesc *string   `json:"electronics_description,omitempty" db:"electronics_description"`
	HardwareFinish  *string   `json:"hardware_finish,omitempty" db:"hardware_finish"`
	BodyFinish      *string   `json:"body_finish,omitempty" db:"body_finish"`
	WeightLbs       *float64  `json:"weight_lbs,omitempty" db:"weight_lbs"`
	CaseIncluded    *bool     `json:"case_included,omitempty" db:"case_included"`
	CaseType        *string   `json:"case_type,omitempty" db:"case_type"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// SpecificationInput is the nested specification payload.
type SpecificationInput struct {
	BodyWood        *string  `json:"body_wood,omitempty" validate:"omitempty,max=50"`
	NeckWood        *string  `json:"neck_wood,omitempty" validate:"omitempty,max=50"`
	FingerboardWood *string  `json:"fingerboard_wood,omitempty" validate:"omitempty,max=50"`
	ScaleLength     *float64 `json:"scale_length,omitempty" validate:"omitempty,gte=20,lte=30"`
	NumFrets        *int     `json:"num_frets,omitempty" validate:"omitempty,gte=12,lte=36"`
	NutWidth        *float64 `json:"nut_width,omitempty" validate:"omitempty,gte=1,lte=2.5"`
	NeckProfile     *string  `json:"neck_profile,omitempty" validate:"omitempty,max=50"`
	BridgeType      *string  `json:"bridge_type,omitempty" validate:"omitempty,max=50"`
	PickupConfig    *string  `json:"pickup_configuration,omitempty" validate:"omitempty,max=20"`
	PickupBrand     *string  `json:"pickup_brand,omitempty" validate:"omitempty,max=50"`
	PickupModel     *string  `json:"pickup_model,omitempty" validate:"omitempty,max=100"`
	ElectronicsDesc *string  `json:"electronics_description,omitempty"`
	HardwareFinish  *string  `json:"hardware_finish,omitempty" validate:"omitempty,max=50"`
	BodyFinish      *string  `json:"body_finish,omitempty" validate:"omitempty,max=100"`
	WeightLbs       *float64 `json:"weight_lbs,omitempty" validate:"omitempty,gte=1,lte=20"`
	CaseIncluded    *bool    `json:"case_included,omitempty"`
	CaseType        *string  `json:"case_type,omitempty" validate:"omitempty,max=50"`
}

// Finish is a catalog finish option for a model.
type Finish struct {
	ID         string    `json:"id" db:"id"`
	ModelID    *string   `json:"model_id,omitempty" db:"model_id"`
	GuitarID   *string   `json:"guitar_id,omitempty" db:"guitar_id"`
	FinishName string    `json:"finish_name" db:"finish_name"`
	FinishType *string   `json:"finish_type,omitempty" db:"finish_type"`
	ColorCode  *string   `json:"color_code,omitempty" db:"color_code"`
	Rarity     *string   `json:"rarity,omitempty" db:"rarity"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FinishInput is the nested finish payload.
type FinishInput struct {
	FinishName string  `json:"finish_name" validate:"required,max=100"`
	FinishType *string `json:"finish_type,omitempty" validate:"omitempty,max=50"`
	ColorCode  *string `json:"color_code,omitempty" validate:"omitempty,max=20"`
	Rarity     *string `json:"rarity,omitempty" validate:"omitempty,oneof=common uncommon rare extremely_rare"`
}

// NotableAssociation ties an individual guitar to a person.
type NotableAssociation struct {
	ID                  string    `json:"id" db:"id"`
	GuitarID            string    `json:"guitar_id" db:"guitar_id"`
	PersonName          string    `json:"person_name" db:"person_name"`
	AssociationType     string    `json:"association_type" db:"association_type"`
	PeriodStart         *string   `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd           *string   `json:"period_end,omitempty" db:"period_end"`
	NotableSongs        *string   `json:"notable_songs,omitempty" db:"notable_songs"`
	NotablePerformances *string   `json:"notable_performances,omitempty" db:"notable_performances"`
	VerificationStatus  *string   `json:"verification_status,omitempty" db:"verification_status"`
	VerificationSource  *string   `json:"verification_source,omitempty" db:"verification_source"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// NotableAssociationInput is the nested association payload.
type NotableAssociationInput struct {
	PersonName          string  `json:"person_name" validate:"required,max=100"`
	AssociationType     string  `json:"association_type" validate:"required,oneof=owner player recorded_with performed_with"`
	PeriodStart         *string `json:"period_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PeriodEnd           *string `json:"period_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NotableSongs        *string `json:"notable_songs,omitempty"`
	NotablePerformances *string `json:"notable_performances,omitempty"`
	VerificationStatus  *string `json:"verification_status,omitempty" validate:"omitempty,oneof=verified likely claimed unverified"`
	VerificationSource  *string `json:"verification_source,omitempty"`
}

// VerificationStatusOrDefault returns the verification status, defaulting to
// unverified.
func (a *NotableAssociationInput) VerificationStatusOrDefault() string {
	if a.VerificationStatus != nil && *a.VerificationStatus != "" {
		return *a.VerificationStatus
	}
	return "unverified"
}
