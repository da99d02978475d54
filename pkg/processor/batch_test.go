package processor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fretbase/registry/pkg/database"
	"github.com/fretbase/registry/pkg/models"
)

type fakeTx struct {
	database.Session
	committed  bool
	rolledBack bool
	closed     bool
}

func (t *fakeTx) Commit() error {
	if t.closed {
		return nil
	}
	t.committed = true
	t.closed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.closed {
		return nil
	}
	t.rolledBack = true
	t.closed = true
	return nil
}

type fakeDB struct {
	database.Session
	tx       *fakeTx
	beginErr error
}

func (d *fakeDB) Begin(ctx context.Context) (database.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	d.tx = &fakeTx{}
	return d.tx, nil
}

func (d *fakeDB) PingContext(ctx context.Context) error { return nil }
func (d *fakeDB) Close() error                          { return nil }

type recordingEmitter struct {
	submissions int
	batches     int
}

func (e *recordingEmitter) SubmissionProcessed(ctx context.Context, result *models.SubmissionResult) {
	e.submissions++
}

func (e *recordingEmitter) BatchCompleted(ctx context.Context, result *models.BatchResult) {
	e.batches++
}

func newTestController(db database.DB, emitter OutcomeEmitter) (*Controller, *memoryStore) {
	store := newMemoryStore()
	build := func(sess database.Session) *SubmissionProcessor {
		return newTestProcessor(store)
	}
	return NewController(db, build, emitter, testLogger()), store
}

func goodSubmission(name string) models.Submission {
	return models.Submission{
		Manufacturer: &models.ManufacturerInput{Name: name},
	}
}

func badSubmission() models.Submission {
	// Fails schema validation: name is required.
	return models.Submission{
		Manufacturer: &models.ManufacturerInput{},
	}
}

func TestProcessBatchAllSuccessfulCommits(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	emitter := &recordingEmitter{}
	controller, store := newTestController(db, emitter)

	result := controller.ProcessBatch(ctx, []models.Submission{
		goodSubmission("Gibson"),
		goodSubmission("Fender"),
		goodSubmission("Gretsch"),
	})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ProcessedCount)
	assert.Equal(t, 3, result.Summary.Successful)
	assert.Equal(t, 0, result.Summary.Failed)
	assert.Equal(t, 3, result.Summary.ActionsTaken.ManufacturersInserted)
	assert.False(t, result.RolledBack)
	assert.False(t, result.PartialSuccess)

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
	assert.Len(t, store.manufacturers, 3)

	assert.Equal(t, 3, emitter.submissions)
	assert.Equal(t, 1, emitter.batches)
}

func TestProcessBatchHighFailureRateRollsBack(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	emitter := &recordingEmitter{}
	controller, _ := newTestController(db, emitter)

	result := controller.ProcessBatch(ctx, []models.Submission{
		goodSubmission("Gibson"),
		badSubmission(),
		badSubmission(),
		badSubmission(),
		goodSubmission("Fender"),
	})

	assert.False(t, result.Success)
	assert.Equal(t, 5, result.ProcessedCount)
	assert.Equal(t, 2, result.Summary.Successful)
	assert.Equal(t, 3, result.Summary.Failed)
	assert.True(t, result.RolledBack)
	assert.Equal(t, "High failure rate: 3/5 submissions failed", result.RollbackReason)
	assert.False(t, result.PartialSuccess)

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)

	// Nothing persisted, so no per-submission outcomes go out.
	assert.Equal(t, 0, emitter.submissions)
	assert.Equal(t, 1, emitter.batches)
}

func TestProcessBatchContinuesPastPanic(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	controller, store := newTestController(db, nil)
	store.panicOnCreateName = "Boom Guitars"

	result := controller.ProcessBatch(ctx, []models.Submission{
		goodSubmission("Gibson"),
		goodSubmission("Boom Guitars"),
		goodSubmission("Fender"),
	})

	assert.False(t, result.Success)
	assert.True(t, result.PartialSuccess)
	assert.Equal(t, 3, result.ProcessedCount)
	assert.Equal(t, 2, result.Summary.Successful)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Contains(t, result.Results[1].Conflicts[0], "Processing error: runtime error")

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
}

func TestProcessBatchMinorFailuresCommitPartial(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	controller, _ := newTestController(db, nil)

	result := controller.ProcessBatch(ctx, []models.Submission{
		goodSubmission("Gibson"),
		goodSubmission("Fender"),
		badSubmission(),
		goodSubmission("Gretsch"),
		goodSubmission("Martin"),
	})

	assert.False(t, result.Success)
	assert.True(t, result.PartialSuccess)
	assert.False(t, result.RolledBack)
	assert.Equal(t, 4, result.Summary.Successful)
	assert.Equal(t, 1, result.Summary.Failed)

	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
}

func TestProcessBatchExactlyHalfFailedCommits(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	controller, _ := newTestController(db, nil)

	// Failure rate must exceed 0.5 to roll back; exactly half commits.
	result := controller.ProcessBatch(ctx, []models.Submission{
		goodSubmission("Gibson"),
		badSubmission(),
	})

	assert.False(t, result.Success)
	assert.True(t, result.PartialSuccess)
	assert.False(t, result.RolledBack)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
}

func TestProcessBatchBeginFaultReportsBatchError(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{beginErr: fmt.Errorf("connection refused")}
	controller, _ := newTestController(db, nil)

	result := controller.ProcessBatch(ctx, []models.Submission{goodSubmission("Gibson")})

	assert.False(t, result.Success)
	assert.True(t, result.RolledBack)
	assert.Contains(t, result.Error, "Batch processing error: connection refused")
	assert.Equal(t, 0, result.ProcessedCount)
}

func TestProcessBatchEmptyCommitsCleanly(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	controller, _ := newTestController(db, nil)

	result := controller.ProcessBatch(ctx, []models.Submission{})

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.TotalCount)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
}

func TestProcessOneCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	emitter := &recordingEmitter{}
	controller, store := newTestController(db, emitter)

	sub := goodSubmission("Gibson")
	result := controller.ProcessOne(ctx, &sub)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"Manufacturer insert"}, result.ActionsTaken)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.committed)
	assert.Len(t, store.manufacturers, 1)
	assert.Equal(t, 1, emitter.submissions)
	assert.Equal(t, 0, emitter.batches)
}

func TestProcessOneRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{}
	controller, _ := newTestController(db, nil)

	sub := badSubmission()
	result := controller.ProcessOne(ctx, &sub)

	assert.False(t, result.Success)
	require.NotNil(t, db.tx)
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
}
