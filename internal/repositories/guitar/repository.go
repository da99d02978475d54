package guitar

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/fretbase/registry/pkg/database"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/tracing"
)

var columns = []string{
	"id", "model_id", "manufacturer_name_fallback", "model_name_fallback", "year_estimate",
	"description", "serial_number", "production_date", "production_number",
	"significance_level", "significance_notes", "current_estimated_value",
	"last_valuation_date", "condition_rating", "modifications", "provenance_notes",
	"created_at", "updated_at",
}

// Repository handles individual guitar persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new individual guitar repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new individual guitar. modelID may be empty, in which
// case the fallback text fields carry the instrument's identity.
func (r *Repository) Create(ctx context.Context, modelID string, input *models.IndividualGuitarInput) (*models.IndividualGuitar, error) {
	ctx, span := tracing.StartSpan(ctx, "guitar.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	significance := input.SignificanceLevelOrDefault()
	g := &models.IndividualGuitar{
		ID:                       uuid.New().String(),
		ManufacturerNameFallback: input.ManufacturerNameFallback,
		ModelNameFallback:        input.ModelNameFallback,
		YearEstimate:             input.YearEstimate,
		Description:              input.Description,
		SerialNumber:             input.SerialNumber,
		ProductionDate:           input.ProductionDate,
		ProductionNumber:         input.ProductionNumber,
		SignificanceLevel:        &significance,
		SignificanceNotes:        input.SignificanceNotes,
		CurrentEstimatedValue:    input.CurrentEstimatedValue,
		LastValuationDate:        input.LastValuationDate,
		ConditionRating:          input.ConditionRating,
		Modifications:            input.Modifications,
		ProvenanceNotes:          input.ProvenanceNotes,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if modelID != "" {
		g.ModelID = &modelID
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("individual_guitars")
	sb.Cols(columns...)
	sb.Values(g.ID, g.ModelID, g.ManufacturerNameFallback, g.ModelNameFallback, g.YearEstimate,
		g.Description, g.SerialNumber, g.ProductionDate, g.ProductionNumber,
		g.SignificanceLevel, g.SignificanceNotes, g.CurrentEstimatedValue,
		g.LastValuationDate, g.ConditionRating, g.Modifications, g.ProvenanceNotes,
		g.CreatedAt, g.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"guitar_id": g.ID}).Error("Failed to create individual guitar")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create individual guitar")
	}

	return g, nil
}

// Merge updates an existing guitar with the non-null fields of the input.
// Serial number and significance level are identity-adjacent and are never
// overwritten. A resolved modelID upgrades a fallback-only row to a hard
// model link.
func (r *Repository) Merge(ctx context.Context, id, modelID string, input *models.IndividualGuitarInput) error {
	ctx, span := tracing.StartSpan(ctx, "guitar.Repository.Merge")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("individual_guitars")

	var assignments []string
	if modelID != "" {
		assignments = append(assignments, ub.Assign("model_id", modelID))
	}
	if input.ManufacturerNameFallback != nil {
		assignments = append(assignments, ub.Assign("manufacturer_name_fallback", *input.ManufacturerNameFallback))
	}
	if input.ModelNameFallback != nil {
		assignments = append(assignments, ub.Assign("model_name_fallback", *input.ModelNameFallback))
	}
	if input.YearEstimate != nil {
		assignments = append(assignments, ub.Assign("year_estimate", *input.YearEstimate))
	}
	if input.Description != nil {
		assignments = append(assignments, ub.Assign("description", *input.Description))
	}
	if input.ProductionDate != nil {
		assignments = append(assignments, ub.Assign("production_date", *input.ProductionDate))
	}
	if input.ProductionNumber != nil {
		assignments = append(assignments, ub.Assign("production_number", *input.ProductionNumber))
	}
	if input.SignificanceNotes != nil {
		assignments = append(assignments, ub.Assign("significance_notes", *input.SignificanceNotes))
	}
	if input.CurrentEstimatedValue != nil {
		assignments = append(assignments, ub.Assign("current_estimated_value", *input.CurrentEstimatedValue))
	}
	if input.LastValuationDate != nil {
		assignments = append(assignments, ub.Assign("last_valuation_date", *input.LastValuationDate))
	}
	if input.ConditionRating != nil {
		assignments = append(assignments, ub.Assign("condition_rating", *input.ConditionRating))
	}
	if input.Modifications != nil {
		assignments = append(assignments, ub.Assign("modifications", *input.Modifications))
	}
	if input.ProvenanceNotes != nil {
		assignments = append(assignments, ub.Assign("provenance_notes", *input.ProvenanceNotes))
	}
	if len(assignments) == 0 {
		return nil
	}
	assignments = append(assignments, ub.Assign("updated_at", time.Now().UTC()))

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"guitar_id": id}).Error("Failed to merge individual guitar")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to merge individual guitar")
	}

	return nil
}

// GetBySerial returns the guitar with the given serial number, or nil when
// none exists.
func (r *Repository) GetBySerial(ctx context.Context, serial string) (*models.IndividualGuitar, error) {
	ctx, span := tracing.StartSpan(ctx, "guitar.Repository.GetBySerial")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("individual_guitars")
	sb.Where(sb.Equal("serial_number", serial))
	sb.Limit(1)

	query, args := sb.Build()
	var g models.IndividualGuitar
	if err := r.db.GetContext(ctx, &g, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"serial_number": serial}).Error("Failed to get guitar by serial number")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get guitar by serial number")
	}
	return &g, nil
}

// ListByModelID returns every guitar linked to the given model.
func (r *Repository) ListByModelID(ctx context.Context, modelID string) ([]models.IndividualGuitar, error) {
	ctx, span := tracing.StartSpan(ctx, "guitar.Repository.ListByModelID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("individual_guitars")
	sb.Where(sb.Equal("model_id", modelID))

	query, args := sb.Build()
	var result []models.IndividualGuitar
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"model_id": modelID}).Error("Failed to list guitars by model")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list guitars by model")
	}
	return result, nil
}

// ListByFallback returns guitars whose fallback text matches the given
// manufacturer name case-insensitively, narrowed further by model name and
// year estimate when those are provided.
func (r *Repository) ListByFallback(ctx context.Context, manufacturer string, model, yearEstimate *string) ([]models.IndividualGuitar, error) {
	ctx, span := tracing.StartSpan(ctx, "guitar.Repository.ListByFallback")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("individual_guitars")
	where := []string{
		sb.IsNotNull("manufacturer_name_fallback"),
		"LOWER(manufacturer_name_fallback) = LOWER(" + sb.Var(manufacturer) + ")",
	}
	if model != nil && *model != "" {
		where = append(where, "LOWER(model_name_fallback) = LOWER("+sb.Var(*model)+")")
	}
	if yearEstimate != nil && *yearEstimate != "" {
		where = append(where, sb.Equal("year_estimate", *yearEstimate))
	}
	sb.Where(where...)

	query, args := sb.Build()
	var result []models.IndividualGuitar
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_name_fallback": manufacturer}).Error("Failed to list guitars by fallback text")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list guitars by fallback text")
	}
	return result, nil
}
