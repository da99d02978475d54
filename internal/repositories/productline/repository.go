package productline

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
	"github.com/fretbase/registry/pkg/tracing"
)

// Repository handles product line persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new product line repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetOrCreate returns the id of the manufacturer's product line with the
// given name, creating it when it does not exist. Name comparison is
// case-insensitive.
func (r *Repository) GetOrCreate(ctx context.Context, manufacturerID, name string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "productline.Repository.GetOrCreate")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("product_lines")
	sb.Where(
		sb.Equal("manufacturer_id", manufacturerID),
		"LOWER(name) = LOWER("+sb.Var(name)+")",
	)
	sb.Limit(1)

	query, args := sb.Build()
	var id string
	err := r.db.GetContext(ctx, &id, query, args...)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_id": manufacturerID, "name": name}).Error("Failed to look up product line")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up product line")
	}

	id = uuid.New().String()
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("product_lines")
	ib.Cols("id", "manufacturer_id", "name", "created_at")
	ib.Values(id, manufacturerID, name, time.Now().UTC())

	query, args = ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"manufacturer_id": manufacturerID, "name": name}).Error("Failed to create product line")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product line")
	}

	return id, nil
}
