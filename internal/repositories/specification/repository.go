package specification

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

// Owner names the single parent a specification sheet belongs to. Exactly
// one of the two ids must be set.
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

// Repository handles specification persistence
type Repository struct {
	db     database.Session
	logger ectologger.Logger
}

// NewRepository creates a new specification repository
func NewRepository(db database.Session, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a specification sheet for the owner and returns its id.
func (r *Repository) Create(ctx context.Context, owner Owner, input *models.SpecificationInput) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "specification.Repository.Create")
	defer span.End()

	id := uuid.New().String()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("specifications")
	sb.Cols("id", "model_id", "guitar_id", "body_wood", "neck_wood", "fingerboard_wood",
		"scale_length", "num_frets", "nut_width", "neck_profile", "bridge_type",
		"pickup_configuration", "pickup_brand", "pickup_model", "electronics_description",
		"hardware_finish", "body_finish", "weight_lbs", "case_included", "case_type", "created_at")
	sb.Values(id, owner.ModelID, owner.GuitarID, input.BodyWood, input.NeckWood, input.FingerboardWood,
		input.ScaleLength, input.NumFrets, input.NutWidth, input.NeckProfile, input.BridgeType,
		input.PickupConfig, input.PickupBrand, input.PickupModel, input.ElectronicsDesc,
		input.HardwareFinish, input.BodyFinish, input.WeightLbs, input.CaseIncluded, input.CaseType,
		time.Now().UTC())

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"specification_id": id}).Error("Failed to create specification")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to create specification")
	}

	return id, nil
}
