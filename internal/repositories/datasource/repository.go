package datasource

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

// Repository handles data source persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new data source repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FindExisting returns the id of the data source with the same name and url.
// A nil url only matches rows with no url. Returns "" when no row matches.
func (r *Repository) FindExisting(ctx context.Context, sourceName string, url *string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "datasource.Repository.FindExisting")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("data_sources")
	where := []string{sb.Equal("source_name", sourceName)}
	if url != nil && *url != "" {
		where = append(where, sb.Equal("url", *url))
	} else {
		where = append(where, sb.IsNull("url"))
	}
	sb.Where(where...)
	sb.Limit(1)

	query, args := sb.Build()
	var id string
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_name": sourceName}).Error("Failed to look up data source")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up data source")
	}
	return id, nil
}

// Create inserts a new data source and returns its id.
func (r *Repository) Create(ctx context.Context, input *models.SourceAttributionInput) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "datasource.Repository.Create")
	defer span.End()

	id := uuid.New().String()
	sourceType := input.SourceTypeOrDefault()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("data_sources")
	sb.Cols("id", "source_name", "source_type", "url", "isbn", "publication_date", "reliability_score", "notes", "created_at")
	sb.Values(id, input.SourceName, sourceType, input.URL, input.ISBN, input.PublicationDate,
		input.ReliabilityScore, input.Notes, time.Now().UTC())

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_name": input.SourceName}).Error("Failed to create data source")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to create data source")
	}

	return id, nil
}
