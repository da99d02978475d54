package processor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fretbase/registry/internal/repositories/finish"
	"github.com/fretbase/registry/internal/repositories/specification"
	"github.com/fretbase/registry/pkg/matching"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/resolution"
	"github.com/fretbase/registry/pkg/schema"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

// memoryStore backs both the matching sources and the processor stores, so
// inserts become visible to subsequent lookups exactly like rows in a
// transaction would.
type memoryStore struct {
	manufacturers []models.Manufacturer
	productLines  map[string]string
	guitarModels  []models.Model
	guitars       []models.IndividualGuitar
	specs         []string
	finishes      []string
	associations  []string
	sources       map[string]string

	nextID int

	createManufacturerErr error
	panicOnCreateName     string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		productLines: map[string]string{},
		sources:      map[string]string{},
	}
}

func (s *memoryStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memoryStore) ListActive(ctx context.Context) ([]models.Manufacturer, error) {
	var active []models.Manufacturer
	for _, m := range s.manufacturers {
		if m.Status == nil || *m.Status != models.ManufacturerStatusDefunct {
			active = append(active, m)
		}
	}
	return active, nil
}

func (s *memoryStore) FindByName(ctx context.Context, name string) (*models.Manufacturer, error) {
	for i := range s.manufacturers {
		if strings.EqualFold(s.manufacturers[i].Name, name) {
			return &s.manufacturers[i], nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListByManufacturer(ctx context.Context, manufacturerID string) ([]models.Model, error) {
	var result []models.Model
	for _, m := range s.guitarModels {
		if m.ManufacturerID == manufacturerID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *memoryStore) GetBySerial(ctx context.Context, serial string) (*models.IndividualGuitar, error) {
	for i := range s.guitars {
		if s.guitars[i].SerialNumber != nil && *s.guitars[i].SerialNumber == serial {
			return &s.guitars[i], nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListByModelID(ctx context.Context, modelID string) ([]models.IndividualGuitar, error) {
	var result []models.IndividualGuitar
	for _, g := range s.guitars {
		if g.ModelID != nil && *g.ModelID == modelID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (s *memoryStore) ListByFallback(ctx context.Context, manufacturer string, model, yearEstimate *string) ([]models.IndividualGuitar, error) {
	var result []models.IndividualGuitar
	for _, g := range s.guitars {
		if g.ManufacturerNameFallback == nil || !strings.EqualFold(*g.ManufacturerNameFallback, manufacturer) {
			continue
		}
		if model != nil && *model != "" &&
			(g.ModelNameFallback == nil || !strings.EqualFold(*g.ModelNameFallback, *model)) {
			continue
		}
		if yearEstimate != nil && *yearEstimate != "" &&
			(g.YearEstimate == nil || *g.YearEstimate != *yearEstimate) {
			continue
		}
		result = append(result, g)
	}
	return result, nil
}

func (s *memoryStore) ResolveID(ctx context.Context, manufacturerName, modelName string, year int) (string, error) {
	manufacturer, _ := s.FindByName(ctx, manufacturerName)
	if manufacturer == nil {
		return "", nil
	}
	for _, m := range s.guitarModels {
		if m.ManufacturerID == manufacturer.ID && strings.EqualFold(m.Name, modelName) && m.Year == year {
			return m.ID, nil
		}
	}
	return "", nil
}

func (s *memoryStore) Create(ctx context.Context, input *models.ManufacturerInput) (*models.Manufacturer, error) {
	if s.createManufacturerErr != nil {
		return nil, s.createManufacturerErr
	}
	if s.panicOnCreateName != "" && input.Name == s.panicOnCreateName {
		panic("runtime error: invalid memory address or nil pointer dereference")
	}
	status := input.StatusOrDefault()
	m := models.Manufacturer{
		ID:          s.id("mfr"),
		Name:        input.Name,
		Country:     input.Country,
		FoundedYear: input.FoundedYear,
		Website:     input.Website,
		Status:      &status,
		Notes:       input.Notes,
	}
	s.manufacturers = append(s.manufacturers, m)
	return &m, nil
}

func (s *memoryStore) Merge(ctx context.Context, id string, input *models.ManufacturerInput) error {
	for i := range s.manufacturers {
		if s.manufacturers[i].ID == id {
			if input.Country != nil {
				s.manufacturers[i].Country = input.Country
			}
			if input.Notes != nil {
				s.manufacturers[i].Notes = input.Notes
			}
		}
	}
	return nil
}

func (s *memoryStore) GetOrCreate(ctx context.Context, manufacturerID, name string) (string, error) {
	key := manufacturerID + "|" + strings.ToLower(name)
	if id, ok := s.productLines[key]; ok {
		return id, nil
	}
	id := s.id("line")
	s.productLines[key] = id
	return id, nil
}

type modelStore struct{ *memoryStore }

func (s modelStore) Create(ctx context.Context, manufacturerID, productLineID string, input *models.ModelInput) (*models.Model, error) {
	m := models.Model{
		ID:             s.id("mod"),
		ManufacturerID: manufacturerID,
		Name:           input.Name,
		Year:           input.Year,
	}
	if productLineID != "" {
		m.ProductLineID = &productLineID
	}
	s.guitarModels = append(s.guitarModels, m)
	return &m, nil
}

func (s modelStore) Merge(ctx context.Context, id string, input *models.ModelInput) error {
	for i := range s.guitarModels {
		if s.guitarModels[i].ID == id && input.Description != nil {
			s.guitarModels[i].Description = input.Description
		}
	}
	return nil
}

type guitarStore struct{ *memoryStore }

func (s guitarStore) Create(ctx context.Context, modelID string, input *models.IndividualGuitarInput) (*models.IndividualGuitar, error) {
	g := models.IndividualGuitar{
		ID:                       s.id("gtr"),
		ManufacturerNameFallback: input.ManufacturerNameFallback,
		ModelNameFallback:        input.ModelNameFallback,
		YearEstimate:             input.YearEstimate,
		SerialNumber:             input.SerialNumber,
		ProductionDate:           input.ProductionDate,
	}
	if modelID != "" {
		g.ModelID = &modelID
	}
	s.guitars = append(s.guitars, g)
	return &g, nil
}

func (s guitarStore) Merge(ctx context.Context, id, modelID string, input *models.IndividualGuitarInput) error {
	for i := range s.guitars {
		if s.guitars[i].ID == id {
			if modelID != "" {
				s.guitars[i].ModelID = &modelID
			}
			if input.ProvenanceNotes != nil {
				s.guitars[i].ProvenanceNotes = input.ProvenanceNotes
			}
		}
	}
	return nil
}

type specStore struct{ *memoryStore }

func (s specStore) Create(ctx context.Context, owner specification.Owner, input *models.SpecificationInput) (string, error) {
	id := s.id("spec")
	s.specs = append(s.specs, id)
	return id, nil
}

type finishStore struct{ *memoryStore }

func (s finishStore) Create(ctx context.Context, owner finish.Owner, input *models.FinishInput) (string, error) {
	id := s.id("fin")
	s.finishes = append(s.finishes, id)
	return id, nil
}

type associationStore struct{ *memoryStore }

func (s associationStore) Create(ctx context.Context, guitarID string, input *models.NotableAssociationInput) (string, error) {
	id := s.id("assoc")
	s.associations = append(s.associations, id)
	return id, nil
}

type sourceStore struct{ *memoryStore }

func (s sourceStore) key(name string, url *string) string {
	if url != nil {
		return name + "|" + *url
	}
	return name + "|"
}

func (s sourceStore) FindExisting(ctx context.Context, sourceName string, url *string) (string, error) {
	return s.sources[s.key(sourceName, url)], nil
}

func (s sourceStore) Create(ctx context.Context, input *models.SourceAttributionInput) (string, error) {
	id := s.id("src")
	s.sources[s.key(input.SourceName, input.URL)] = id
	return id, nil
}

func newTestProcessor(store *memoryStore) *SubmissionProcessor {
	finder := matching.NewFinder(store, store, store)
	decider := resolution.NewDecider(schema.NewValidator(), finder, store, resolution.NewReferenceResolver(store))
	stores := Stores{
		Manufacturers:  store,
		ProductLines:   store,
		Models:         modelStore{store},
		Guitars:        guitarStore{store},
		Specifications: specStore{store},
		Finishes:       finishStore{store},
		Associations:   associationStore{store},
		Sources:        sourceStore{store},
	}
	return New(decider, stores, testLogger())
}

func fullSubmission() *models.Submission {
	return &models.Submission{
		Manufacturer: &models.ManufacturerInput{
			Name:        "Gibson Guitar Corporation",
			Country:     strPtr("USA"),
			FoundedYear: intPtr(1902),
		},
		Model: &models.ModelInput{
			ManufacturerName: "Gibson Guitar Corporation",
			ProductLineName:  strPtr("Les Paul"),
			Name:             "Les Paul Standard",
			Year:             1959,
			Specifications:   &models.SpecificationInput{BodyWood: strPtr("mahogany")},
			Finishes: []models.FinishInput{
				{FinishName: "Sunburst", Rarity: strPtr("rare")},
			},
		},
		IndividualGuitar: &models.IndividualGuitarInput{
			ModelReference: &models.ModelReference{
				ManufacturerName: "Gibson Guitar Corporation",
				ModelName:        "Les Paul Standard",
				Year:             1959,
			},
			SerialNumber: strPtr("9-0824"),
			NotableAssociations: []models.NotableAssociationInput{
				{PersonName: "Jimmy Page", AssociationType: "player"},
			},
		},
		SourceAttribution: &models.SourceAttributionInput{
			SourceName: "Vintage Guitar Magazine",
			URL:        strPtr("https://vintageguitar.example.com/bursts"),
		},
	}
}

func TestProcessFullSubmission(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	proc := newTestProcessor(store)

	result := proc.Process(ctx, 0, fullSubmission())

	require.True(t, result.Success, "conflicts: %v", result.Conflicts)
	assert.Equal(t, []string{
		"Manufacturer insert",
		"Model insert",
		"Guitar insert",
		"Source attribution processed",
	}, result.ActionsTaken)

	assert.Contains(t, result.IDsCreated, "manufacturer")
	assert.Contains(t, result.IDsCreated, "model")
	assert.Contains(t, result.IDsCreated, "model_specifications")
	assert.Contains(t, result.IDsCreated, "model_finishes")
	assert.Contains(t, result.IDsCreated, "individual_guitar")
	assert.Contains(t, result.IDsCreated, "notable_associations")
	assert.Contains(t, result.IDsCreated, "source")

	assert.Len(t, store.manufacturers, 1)
	assert.Len(t, store.guitarModels, 1)
	assert.Len(t, store.guitars, 1)
	assert.Len(t, store.finishes, 1)
	assert.Len(t, store.associations, 1)
	assert.Len(t, store.productLines, 1)
}

func TestProcessIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	proc := newTestProcessor(store)

	first := proc.Process(ctx, 0, fullSubmission())
	require.True(t, first.Success)

	second := proc.Process(ctx, 1, fullSubmission())
	require.True(t, second.Success, "conflicts: %v", second.Conflicts)

	assert.Equal(t, []string{
		"Manufacturer update",
		"Model update",
		"Guitar update",
		"Source attribution processed",
	}, second.ActionsTaken)

	// No duplicate rows, and the source id is reused.
	assert.Len(t, store.manufacturers, 1)
	assert.Len(t, store.guitarModels, 1)
	assert.Len(t, store.guitars, 1)
	assert.Equal(t, first.IDsCreated["source"], second.IDsCreated["source"])
}

func TestProcessInvalidSchemaAbortsSubmission(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	proc := newTestProcessor(store)

	sub := fullSubmission()
	sub.Manufacturer.Name = ""

	result := proc.Process(ctx, 0, sub)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Conflicts)
	assert.Empty(t, result.ActionsTaken)
	// Nothing after the failing manufacturer is touched.
	assert.Empty(t, store.guitarModels)
	assert.Empty(t, store.guitars)
	assert.Empty(t, store.sources)
}

func TestProcessMissingDependency(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	proc := newTestProcessor(store)

	result := proc.Process(ctx, 0, &models.Submission{
		Model: &models.ModelInput{
			ManufacturerName: "Orville",
			Name:             "Les Paul",
			Year:             1988,
		},
	})

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Conflicts)
	assert.Contains(t, result.Conflicts[0], "Manufacturer 'Orville' not found")
}

func TestProcessManualReviewAbortsDownstream(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.manufacturers = append(store.manufacturers, models.Manufacturer{ID: "mfr-seed", Name: "Gretsch Co"})
	proc := newTestProcessor(store)

	result := proc.Process(ctx, 0, &models.Submission{
		Manufacturer: &models.ManufacturerInput{
			Name:    "Gretsch Company",
			Country: strPtr("USA"),
		},
		Model: &models.ModelInput{
			ManufacturerName: "Gretsch Company",
			Name:             "White Falcon",
			Year:             1955,
		},
	})

	assert.False(t, result.Success)
	assert.True(t, result.ManualReviewNeeded)
	require.NotEmpty(t, result.Conflicts)
	assert.Contains(t, result.Conflicts[0], "Manufacturer conflict")
	assert.Empty(t, store.guitarModels)
}

func TestProcessStoreErrorBecomesConflict(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.createManufacturerErr = fmt.Errorf("connection reset")
	proc := newTestProcessor(store)

	result := proc.Process(ctx, 0, &models.Submission{
		Manufacturer: &models.ManufacturerInput{Name: "Gibson"},
	})

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Conflicts)
	assert.Contains(t, result.Conflicts[0], "Processing error: connection reset")
}

func TestProcessStorePanicBecomesFailedResult(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.panicOnCreateName = "Boom Guitars"
	proc := newTestProcessor(store)

	result := proc.Process(ctx, 3, &models.Submission{
		Manufacturer: &models.ManufacturerInput{Name: "Boom Guitars"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Index)
	require.NotEmpty(t, result.Conflicts)
	assert.Contains(t, result.Conflicts[0], "Processing error: runtime error")
}

func TestProcessSourceOnlySubmission(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	proc := newTestProcessor(store)

	sub := &models.Submission{
		SourceAttribution: &models.SourceAttributionInput{SourceName: "Blue Book of Guitars"},
	}

	first := proc.Process(ctx, 0, sub)
	require.True(t, first.Success)
	second := proc.Process(ctx, 1, sub)
	require.True(t, second.Success)

	assert.Equal(t, first.IDsCreated["source"], second.IDsCreated["source"])
	assert.Len(t, store.sources, 1)
}
