package models

// Submission is one unit of intake: any combination of the four top-level
// entity payloads. Entities are processed in dependency order so a model can
// name the manufacturer submitted alongside it.
type Submission struct {
	Manufacturer      *ManufacturerInput      `json:"manufacturer,omitempty"`
	Model             *ModelInput             `json:"model,omitempty"`
	IndividualGuitar  *IndividualGuitarInput  `json:"individual_guitar,omitempty"`
	SourceAttribution *SourceAttributionInput `json:"source_attribution,omitempty"`
}

// IsEmpty reports whether the submission carries no entities at all.
func (s *Submission) IsEmpty() bool {
	return s.Manufacturer == nil && s.Model == nil &&
		s.IndividualGuitar == nil && s.SourceAttribution == nil
}

// EntityKind names which top-level entity an action applies to.
type EntityKind string

const (
	EntityManufacturer EntityKind = "manufacturer"
	EntityModel        EntityKind = "model"
	EntityGuitar       EntityKind = "guitar"
	EntitySource       EntityKind = "source"
)

// ActionRecord is one (entity, action) pair taken while processing a
// submission.
type ActionRecord struct {
	Entity EntityKind `json:"entity"`
	Action Action     `json:"action"`
}

// String renders the record as a human-readable action line.
func (r ActionRecord) String() string {
	switch r.Entity {
	case EntityManufacturer:
		return "Manufacturer " + string(r.Action)
	case EntityModel:
		return "Model " + string(r.Action)
	case EntityGuitar:
		return "Guitar " + string(r.Action)
	case EntitySource:
		return "Source attribution processed"
	}
	return string(r.Entity) + " " + string(r.Action)
}

// SubmissionResult is the per-submission outcome.
type SubmissionResult struct {
	Index              int            `json:"index"`
	Success            bool           `json:"success"`
	Actions            []ActionRecord `json:"actions"`
	ActionsTaken       []string       `json:"actions_taken"`
	Conflicts          []string       `json:"conflicts,omitempty"`
	IDsCreated         map[string]any `json:"ids_created,omitempty"`
	ManualReviewNeeded bool           `json:"manual_review_needed"`
	Error              string         `json:"error,omitempty"`
}

// Record appends an action both as a structured record and as its rendered
// line, keeping the two views consistent.
func (r *SubmissionResult) Record(entity EntityKind, action Action) {
	rec := ActionRecord{Entity: entity, Action: action}
	r.Actions = append(r.Actions, rec)
	r.ActionsTaken = append(r.ActionsTaken, rec.String())
}

// ActionTally counts inserts and updates per entity kind across a batch.
type ActionTally struct {
	ManufacturersInserted int `json:"manufacturers_inserted"`
	ManufacturersUpdated  int `json:"manufacturers_updated"`
	ModelsInserted        int `json:"models_inserted"`
	ModelsUpdated         int `json:"models_updated"`
	GuitarsInserted       int `json:"guitars_inserted"`
	GuitarsUpdated        int `json:"guitars_updated"`
}

// Add counts one action record. Only inserts and updates are tallied; source
// attributions and failures fall outside the counts.
func (t *ActionTally) Add(r ActionRecord) {
	switch r.Entity {
	case EntityManufacturer:
		switch r.Action {
		case ActionInsert:
			t.ManufacturersInserted++
		case ActionUpdate:
			t.ManufacturersUpdated++
		}
	case EntityModel:
		switch r.Action {
		case ActionInsert:
			t.ModelsInserted++
		case ActionUpdate:
			t.ModelsUpdated++
		}
	case EntityGuitar:
		switch r.Action {
		case ActionInsert:
			t.GuitarsInserted++
		case ActionUpdate:
			t.GuitarsUpdated++
		}
	}
}

// BatchSummary aggregates a batch's per-submission outcomes.
type BatchSummary struct {
	Successful         int         `json:"successful"`
	Failed             int         `json:"failed"`
	ManualReviewNeeded int         `json:"manual_review_needed"`
	ActionsTaken       ActionTally `json:"actions_taken"`
}

// BatchResult is the outcome of a whole batch: every submission's result plus
// the commit/rollback disposition.
type BatchResult struct {
	Success        bool               `json:"success"`
	ProcessedCount int                `json:"processed_count"`
	TotalCount     int                `json:"total_count"`
	Results        []SubmissionResult `json:"results"`
	Summary        BatchSummary       `json:"summary"`
	PartialSuccess bool               `json:"partial_success,omitempty"`
	RolledBack     bool               `json:"rolled_back,omitempty"`
	RollbackReason string             `json:"rollback_reason,omitempty"`
	Error          string             `json:"error,omitempty"`
}
