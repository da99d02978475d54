package finish

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

// Owner names the single parent a finish belongs to.
type Owner struct {
	ModelID  *string
	GuitarID *string
}

// ForModel makes an Owner pointing at a model.
func ForModel(id string) Owner {
	return Owner{ModelID: &id}
}

// ForGuitar makes an Owner pointing at an individual guitar.
func ForGuitar(id string) Owner {
	return Owner{GuitarID: &id}
}

// Repository handles finish persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new finish repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a finish for the owner and returns its id.
func (r *Repository) Create(ctx context.Context, owner Owner, input *models.FinishInput) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "finish.Repository.Create")
	defer span.End()

	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("finishes")
	sb.Cols("id", "model_id", "guitar_id", "finish_name", "finish_type", "color_code", "rarity", "created_at")
	sb.Values(id, owner.ModelID, owner.GuitarID, input.FinishName, input.FinishType, input.ColorCode, input.Rarity, time.Now().UTC())

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"finish_id": id, "finish_name": input.FinishName}).Error("Failed to create finish")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to create finish")
	}

	return id, nil
}
