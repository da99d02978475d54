package association

import (
	"context"
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

// Repository handles notable association persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new notable association repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a notable association for the guitar and returns its id.
func (r *Repository) Create(ctx context.Context, guitarID string, input *models.NotableAssociationInput) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "association.Repository.Create")
	defer span.End()

	id := uuid.New().String()
	verification := input.VerificationStatusOrDefault()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("notable_associations")
	sb.Cols("id", "guitar_id", "person_name", "association_type", "period_start", "period_end",
		"notable_songs", "notable_performances", "verification_status", "verification_source", "created_at")
	sb.Values(id, guitarID, input.PersonName, input.AssociationType, input.PeriodStart, input.PeriodEnd,
		input.NotableSongs, input.NotablePerformances, verification, input.VerificationSource, time.Now().UTC())

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"guitar_id": guitarID, "person_name": input.PersonName}).Error("Failed to create notable association")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to create notable association")
	}

	return id, nil
}
