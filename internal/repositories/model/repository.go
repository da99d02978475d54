package model

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
	"id", "manufacturer_id", "product_line_id", "name", "year", "production_type",
	"production_start_date", "production_end_date", "estimated_production_quantity",
	"msrp_original", "currency", "description", "created_at", "updated_at",
}

// Repository handles model persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new model repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new model under the given manufacturer. productLineID may
// be empty.
func (r *Repository) Create(ctx context.Context, manufacturerID, productLineID string, input *models.ModelInput) (*models.Model, error) {
	ctx, span := tracing.StartSpan(ctx, "model.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	productionType := input.ProductionTypeOrDefault()
	currency := input.CurrencyOrDefault()
	m := &models.Model{
		ID:                          uuid.New().String(),
		ManufacturerID:              manufacturerID,
		Name:                        input.Name,
		Year:                        input.Year,
		ProductionType:              &productionType,
		ProductionStartDate:         input.ProductionStartDate,
		ProductionEndDate:           input.ProductionEndDate,
		EstimatedProductionQuantity: input.EstimatedProductionQuantity,
		MSRPOriginal:                input.MSRPOriginal,
		Currency:                    &currency,
		Description:                 input.Description,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	if productLineID != "" {
		m.ProductLineID = &productLineID
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("models")
	sb.Cols(columns...)
	sb.Values(m.ID, m.ManufacturerID, m.ProductLineID, m.Name, m.Year, m.ProductionType,
		m.ProductionStartDate, m.ProductionEndDate, m.EstimatedProductionQuantity,
		m.MSRPOriginal, m.Currency, m.Description, m.CreatedAt, m.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_id": manufacturerID, "name": m.Name}).Error("Failed to create model")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create model")
	}

	return m, nil
}

// Merge updates an existing model with the non-null production and pricing
// fields of the input. Name, year and lineage are identity and stay as-is.
func (r *Repository) Merge(ctx context.Context, id string, input *models.ModelInput) error {
	ctx, span := tracing.StartSpan(ctx, "model.Repository.Merge")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("models")

	var assignments []string
	if input.ProductionStartDate != nil {
		assignments = append(assignments, ub.Assign("production_start_date", *input.ProductionStartDate))
	}
	if input.ProductionEndDate != nil {
		assignments = append(assignments, ub.Assign("production_end_date", *input.ProductionEndDate))
	}
	if input.EstimatedProductionQuantity != nil {
		assignments = append(assignments, ub.Assign("estimated_production_quantity", *input.EstimatedProductionQuantity))
	}
	if input.MSRPOriginal != nil {
		assignments = append(assignments, ub.Assign("msrp_original", *input.MSRPOriginal))
	}
	if input.Currency != nil {
		assignments = append(assignments, ub.Assign("currency", *input.Currency))
	}
	if input.Description != nil {
		assignments = append(assignments, ub.Assign("description", *input.Description))
	}
	if len(assignments) == 0 {
		return nil
	}
	assignments = append(assignments, ub.Assign("updated_at", time.Now().UTC()))

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"model_id": id}).Error("Failed to merge model")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to merge model")
	}

	return nil
}

// ListByManufacturer returns every model belonging to the manufacturer.
func (r *Repository) ListByManufacturer(ctx context.Context, manufacturerID string) ([]models.Model, error) {
	ctx, span := tracing.StartSpan(ctx, "model.Repository.ListByManufacturer")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("models")
	sb.Where(sb.Equal("manufacturer_id", manufacturerID))

	query, args := sb.Build()
	var result []models.Model
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_id": manufacturerID}).Error("Failed to list models by manufacturer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list models")
	}
	return result, nil
}

// ResolveID resolves a (manufacturer name, model name, year) triple to a
// model id, joining through manufacturers with case-insensitive name
// comparison. Returns "" when no row matches.
func (r *Repository) ResolveID(ctx context.Context, manufacturerName, modelName string, year int) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "model.Repository.ResolveID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("m.id")
	sb.From("models m")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "manufacturers mfr", "m.manufacturer_id = mfr.id")
	sb.Where(
		"LOWER(mfr.name) = LOWER("+sb.Var(manufacturerName)+")",
		"LOWER(m.name) = LOWER("+sb.Var(modelName)+")",
		sb.Equal("m.year", year),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var id string
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_name": manufacturerName, "model_name": modelName, "year": year}).Error("Failed to resolve model reference")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve model reference")
	}
	return id, nil
}
