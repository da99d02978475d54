package manufacturer

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

var columns = []string{"id", "name", "country", "founded_year", "website", "status", "notes", "created_at", "updated_at"}

// Repository handles manufacturer persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new manufacturer repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new manufacturer
func (r *Repository) Create(ctx context.Context, input *models.ManufacturerInput) (*models.Manufacturer, error) {
	ctx, span := tracing.StartSpan(ctx, "manufacturer.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	status := input.StatusOrDefault()
	m := &models.Manufacturer{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Country:     input.Country,
		FoundedYear: input.FoundedYear,
		Website:     input.Website,
		Status:      &status,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("manufacturers")
	sb.Cols(columns...)
	sb.Values(m.ID, m.Name, m.Country, m.FoundedYear, m.Website, m.Status, m.Notes, m.CreatedAt, m.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": m.Name}).Error("Failed to create manufacturer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create manufacturer")
	}

	return m, nil
}

// Merge updates an existing manufacturer with the non-null fields of the
// input. Name is identity and is never overwritten.
func (r *Repository) Merge(ctx context.Context, id string, input *models.ManufacturerInput) error {
	ctx, span := tracing.StartSpan(ctx, "manufacturer.Repository.Merge")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("manufacturers")

	var assignments []string
	if input.Country != nil {
		assignments = append(assignments, ub.Assign("country", *input.Country))
	}
	if input.FoundedYear != nil {
		assignments = append(assignments, ub.Assign("founded_year", *input.FoundedYear))
	}
	if input.Website != nil {
		assignments = append(assignments, ub.Assign("website", *input.Website))
	}
	if input.Status != nil {
		assignments = append(assignments, ub.Assign("status", *input.Status))
	}
	if input.Notes != nil {
		assignments = append(assignments, ub.Assign("notes", *input.Notes))
	}
	if len(assignments) == 0 {
		return nil
	}
	assignments = append(assignments, ub.Assign("updated_at", time.Now().UTC()))

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_id": id}).Error("Failed to merge manufacturer")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to merge manufacturer")
	}

	return nil
}

// ListActive returns every manufacturer that is not defunct. Rows with no
// status are included.
func (r *Repository) ListActive(ctx context.Context) ([]models.Manufacturer, error) {
	ctx, span := tracing.StartSpan(ctx, "manufacturer.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("manufacturers")
	sb.Where(sb.Or(
		sb.NotEqual("status", models.ManufacturerStatusDefunct),
		sb.IsNull("status"),
	))

	query, args := sb.Build()
	var manufacturers []models.Manufacturer
	if err := r.db.SelectContext(ctx, &manufacturers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active manufacturers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list manufacturers")
	}
	return manufacturers, nil
}

// FindByName returns the manufacturer with the given name, compared
// case-insensitively. Returns nil when no row matches.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	ctx, span := tracing.StartSpan(ctx, "manufacturer.Repository.FindByName")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("manufacturers")
	sb.Where("LOWER(name) = LOWER(" + sb.Var(name) + ")")
	sb.Limit(1)

	query, args := sb.Build()
	var m models.Manufacturer
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": name}).Error("Failed to find manufacturer by name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find manufacturer")
	}
	return &m, nil
}
