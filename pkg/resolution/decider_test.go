package resolution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fretbase/registry/pkg/matching"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/schema"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type fakeStore struct {
	manufacturers []models.Manufacturer
	guitarModels  []models.Model
	bySerial      map[string]*models.IndividualGuitar
	byModel       []models.IndividualGuitar
	byFallback    []models.IndividualGuitar
	modelIDs      map[string]string
}

func (f *fakeStore) ListActive(ctx context.Context) ([]models.Manufacturer, error) {
	return f.manufacturers, nil
}

func (f *fakeStore) FindByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	for i := range f.manufacturers {
		if f.manufacturers[i].Name == name {
			return &f.manufacturers[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListByManufacturer(ctx context.Context, manufacturerID string) ([]models.Model, error) {
	return f.guitarModels, nil
}

func (f *fakeStore) GetBySerial(ctx context.Context, serial string) (*models.IndividualGuitar, error) {
	return f.bySerial[serial], nil
}

func (f *fakeStore) ListByModelID(ctx context.Context, modelID string) ([]models.IndividualGuitar, error) {
	return f.byModel, nil
}

func (f *fakeStore) ListByFallback(ctx context.Context, manufacturer string, model, yearEstimate *string) ([]models.IndividualGuitar, error) {
	return f.byFallback, nil
}

func (f *fakeStore) ResolveID(ctx context.Context, manufacturerName, modelName string, year int) (string, error) {
	return f.modelIDs[modelName], nil
}

func newDecider(store *fakeStore) *Decider {
	finder := matching.NewFinder(store, store, store)
	return NewDecider(schema.NewValidator(), finder, store, NewReferenceResolver(store))
}

func TestDecideManufacturer(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid schema short circuits", func(t *testing.T) {
		d := newDecider(&fakeStore{})
		decision, err := d.DecideManufacturer(ctx, &models.ManufacturerInput{})
		require.NoError(t, err)
		assert.False(t, decision.Valid)
		assert.Equal(t, models.ActionInvalidSchema, decision.Action)
		assert.NotEmpty(t, decision.Conflicts)
	})

	t.Run("no candidates inserts", func(t *testing.T) {
		d := newDecider(&fakeStore{})
		decision, err := d.DecideManufacturer(ctx, &models.ManufacturerInput{Name: "Gibson"})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
		assert.Equal(t, 1.0, decision.Confidence)
	})

	t.Run("resubmitted payload merges", func(t *testing.T) {
		d := newDecider(&fakeStore{manufacturers: []models.Manufacturer{
			{ID: "m1", Name: "Gibson", Country: strPtr("USA"), FoundedYear: intPtr(1902)},
		}})
		decision, err := d.DecideManufacturer(ctx, &models.ManufacturerInput{
			Name:        "Gibson",
			Country:     strPtr("USA"),
			FoundedYear: intPtr(1902),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionUpdate, decision.Action)
		assert.Equal(t, "m1", decision.TargetID)
		assert.Equal(t, models.ResolutionMerge, decision.Resolution)
	})

	t.Run("ambiguous match asks for review", func(t *testing.T) {
		// name ratio 0.8 plus the 0.1 country bonus lands in [0.85, 0.95)
		d := newDecider(&fakeStore{manufacturers: []models.Manufacturer{
			{ID: "m1", Name: "Gretsch Co"},
		}})
		decision, err := d.DecideManufacturer(ctx, &models.ManufacturerInput{
			Name:    "Gretsch Company",
			Country: strPtr("USA"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionConflict, decision.Action)
		assert.Equal(t, models.ResolutionManualReview, decision.Resolution)
		assert.Contains(t, decision.Conflicts[0], "Similar manufacturer found: Gretsch Co")
	})

	t.Run("weak similarity inserts as new", func(t *testing.T) {
		d := newDecider(&fakeStore{manufacturers: []models.Manufacturer{
			{ID: "m1", Name: "Gibson Corporation"},
		}})
		decision, err := d.DecideManufacturer(ctx, &models.ManufacturerInput{Name: "Gibson Corp."})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
	})
}

func TestDecideModel(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown manufacturer is a missing dependency", func(t *testing.T) {
		d := newDecider(&fakeStore{})
		decision, manufacturerID, err := d.DecideModel(ctx, &models.ModelInput{
			ManufacturerName: "Gibson",
			Name:             "Les Paul",
			Year:             1959,
		})
		require.NoError(t, err)
		assert.False(t, decision.Valid)
		assert.Equal(t, models.ActionMissingDependency, decision.Action)
		assert.Contains(t, decision.Conflicts[0], "Manufacturer 'Gibson' not found")
		assert.Empty(t, manufacturerID)
	})

	t.Run("resubmitted model merges", func(t *testing.T) {
		d := newDecider(&fakeStore{
			manufacturers: []models.Manufacturer{{ID: "mfr1", Name: "Gibson"}},
			guitarModels:  []models.Model{{ID: "mod1", Name: "Les Paul Standard", Year: 1959}},
		})
		decision, manufacturerID, err := d.DecideModel(ctx, &models.ModelInput{
			ManufacturerName: "Gibson",
			Name:             "Les Paul Standard",
			Year:             1959,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionUpdate, decision.Action)
		assert.Equal(t, "mod1", decision.TargetID)
		assert.Equal(t, "mfr1", manufacturerID)
	})

	t.Run("same name different year inserts", func(t *testing.T) {
		d := newDecider(&fakeStore{
			manufacturers: []models.Manufacturer{{ID: "mfr1", Name: "Gibson"}},
			guitarModels:  []models.Model{{ID: "mod1", Name: "Firebird III", Year: 1963}},
		})
		decision, _, err := d.DecideModel(ctx, &models.ModelInput{
			ManufacturerName: "Gibson",
			Name:             "Firebird III",
			Year:             1976,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
	})
}

func TestDecideGuitar(t *testing.T) {
	ctx := context.Background()

	t.Run("serial match merges", func(t *testing.T) {
		d := newDecider(&fakeStore{
			bySerial: map[string]*models.IndividualGuitar{
				"9-0824": {ID: "g1", SerialNumber: strPtr("9-0824")},
			},
		})
		decision, modelID, err := d.DecideGuitar(ctx, &models.IndividualGuitarInput{
			ManufacturerNameFallback: strPtr("Gibson"),
			ModelNameFallback:        strPtr("Les Paul"),
			SerialNumber:             strPtr("9-0824"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionUpdate, decision.Action)
		assert.Equal(t, "g1", decision.TargetID)
		assert.Equal(t, 1.0, decision.Confidence)
		assert.Empty(t, modelID)
	})

	t.Run("resolved model reference is returned", func(t *testing.T) {
		d := newDecider(&fakeStore{
			modelIDs: map[string]string{"Les Paul Standard": "mod1"},
		})
		decision, modelID, err := d.DecideGuitar(ctx, &models.IndividualGuitarInput{
			ModelReference: &models.ModelReference{
				ManufacturerName: "Gibson",
				ModelName:        "Les Paul Standard",
				Year:             1959,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
		assert.Equal(t, "mod1", modelID)
	})

	t.Run("unresolved reference falls back to insert", func(t *testing.T) {
		d := newDecider(&fakeStore{})
		decision, modelID, err := d.DecideGuitar(ctx, &models.IndividualGuitarInput{
			ModelReference: &models.ModelReference{
				ManufacturerName: "Gibson",
				ModelName:        "Moderne",
				Year:             1957,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
		assert.Empty(t, modelID)
	})

	t.Run("full fallback agreement merges", func(t *testing.T) {
		// 0.3 + 0.4 + 0.3 sums to exactly 1.0 in float64, so a guitar whose
		// fallback manufacturer, model and year estimate all agree hits the
		// binary merge rule without a serial number.
		d := newDecider(&fakeStore{
			byFallback: []models.IndividualGuitar{{
				ID:                       "g1",
				ManufacturerNameFallback: strPtr("Gibson"),
				ModelNameFallback:        strPtr("Les Paul"),
				YearEstimate:             strPtr("late 1950s"),
			}},
		})
		decision, modelID, err := d.DecideGuitar(ctx, &models.IndividualGuitarInput{
			ManufacturerNameFallback: strPtr("Gibson"),
			ModelNameFallback:        strPtr("Les Paul"),
			YearEstimate:             strPtr("late 1950s"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionUpdate, decision.Action)
		assert.Equal(t, "g1", decision.TargetID)
		assert.Empty(t, modelID)
	})

	t.Run("partial fallback match still inserts", func(t *testing.T) {
		d := newDecider(&fakeStore{
			byFallback: []models.IndividualGuitar{{
				ID:                       "g1",
				ManufacturerNameFallback: strPtr("Gibson"),
				ModelNameFallback:        strPtr("Les Paul"),
			}},
		})
		decision, _, err := d.DecideGuitar(ctx, &models.IndividualGuitarInput{
			ManufacturerNameFallback: strPtr("Gibson"),
			ModelNameFallback:        strPtr("Les Paul"),
		})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
	})
}

func TestDecideSource(t *testing.T) {
	ctx := context.Background()
	d := newDecider(&fakeStore{})

	t.Run("valid source inserts", func(t *testing.T) {
		decision, err := d.DecideSource(ctx, &models.SourceAttributionInput{SourceName: "Blue Book of Guitars"})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInsert, decision.Action)
	})

	t.Run("invalid source fails schema", func(t *testing.T) {
		decision, err := d.DecideSource(ctx, &models.SourceAttributionInput{})
		require.NoError(t, err)
		assert.Equal(t, models.ActionInvalidSchema, decision.Action)
	})
}
