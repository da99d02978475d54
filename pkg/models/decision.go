package models

// Action is the outcome chosen for one entity within a submission.
type Action string

const (
	ActionInsert            Action = "insert"
	ActionUpdate            Action = "update"
	ActionConflict          Action = "conflict"
	ActionInvalidSchema     Action = "invalid_schema"
	ActionMissingDependency Action = "missing_dependency"
)

// Resolution qualifies how an update or conflict should be carried out.
type Resolution string

const (
	ResolutionMerge        Resolution = "merge"
	ResolutionManualReview Resolution = "manual_review"
)

// Candidate is a scored match against an existing row.
type Candidate struct {
	ID         string  `json:"id"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// Decision is the resolved plan for one entity: what to do, against which
// existing row, and with what confidence.
type Decision struct {
	Valid      bool       `json:"valid"`
	Action     Action     `json:"action"`
	TargetID   string     `json:"target_id,omitempty"`
	Confidence float64    `json:"confidence"`
	Conflicts  []string   `json:"conflicts,omitempty"`
	Resolution Resolution `json:"resolution,omitempty"`
}

// InsertDecision is the plan for a brand-new entity.
func InsertDecision() Decision {
	return Decision{Valid: true, Action: ActionInsert, Confidence: 1.0}
}

// UpdateDecision is the plan for merging into an existing row.
func UpdateDecision(targetID string, confidence float64) Decision {
	return Decision{
		Valid:      true,
		Action:     ActionUpdate,
		TargetID:   targetID,
		Confidence: confidence,
		Resolution: ResolutionMerge,
	}
}

// ConflictDecision is the plan for an ambiguous match that needs a human.
func ConflictDecision(targetID string, confidence float64, conflicts []string) Decision {
	return Decision{
		Valid:      true,
		Action:     ActionConflict,
		TargetID:   targetID,
		Confidence: confidence,
		Conflicts:  conflicts,
		Resolution: ResolutionManualReview,
	}
}

// InvalidSchemaDecision is the plan for a payload that failed validation.
func InvalidSchemaDecision(violations []string) Decision {
	return Decision{
		Valid:     false,
		Action:    ActionInvalidSchema,
		Conflicts: violations,
	}
}

// MissingDependencyDecision is the plan for an entity whose named parent
// could not be resolved.
func MissingDependencyDecision(reason string) Decision {
	return Decision{
		Valid:     false,
		Action:    ActionMissingDependency,
		Conflicts: []string{reason},
	}
}
