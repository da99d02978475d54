package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fretbase/registry/pkg/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validating a submission payload
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Violations renders the errors as "field: message" lines.
func (r ValidationResult) Violations() []string {
	lines := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Field == "" {
			lines = append(lines, e.Message)
			continue
		}
		lines = append(lines, e.Field+": "+e.Message)
	}
	return lines
}

// Validator validates submission payloads against their schemas
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with all entity rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so violations match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(guitarIdentityGate, models.IndividualGuitarInput{})

	return &Validator{validate: v}
}

// A guitar must be identifiable: a model reference, or a fallback
// manufacturer name plus a fallback model name or description.
func guitarIdentityGate(sl validator.StructLevel) {
	input := sl.Current().Interface().(models.IndividualGuitarInput)
	if !input.HasIdentity() {
		sl.ReportError(input.ModelReference, "model_reference", "ModelReference", "guitar_identity", "")
	}
}

// ValidateManufacturer validates a manufacturer payload.
func (v *Validator) ValidateManufacturer(input *models.ManufacturerInput) ValidationResult {
	return v.check(v.validate.Struct(input))
}

// ValidateModel validates a model payload.
func (v *Validator) ValidateModel(input *models.ModelInput) ValidationResult {
	return v.check(v.validate.Struct(input))
}

// ValidateGuitar validates an individual guitar payload.
func (v *Validator) ValidateGuitar(input *models.IndividualGuitarInput) ValidationResult {
	return v.check(v.validate.Struct(input))
}

// ValidateSource validates a source attribution payload.
func (v *Validator) ValidateSource(input *models.SourceAttributionInput) ValidationResult {
	return v.check(v.validate.Struct(input))
}

func (v *Validator) check(err error) ValidationResult {
	if err == nil {
		return ValidationResult{Valid: true}
	}

	result := ValidationResult{Valid: false}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{Message: err.Error()})
		return result
	}

	for _, fe := range verrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldPath(fe),
			Message: describe(fe),
		})
	}
	return result
}

// fieldPath strips the root struct name from the namespace, leaving a dotted
// json-name path like "model_reference.year".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is missing"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "invalid date format (expected YYYY-MM-DD)"
	case "url":
		return "invalid URL format"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "guitar_identity":
		return "a model_reference, or a fallback manufacturer name with a fallback model name or description, is required"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
