package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/fretbase/registry/pkg/database"
	"github.com/fretbase/registry/pkg/models"
	"github.com/fretbase/registry/pkg/tracing"
)

// Batches where more than this share of submissions fail are rolled back
// wholesale instead of committing the survivors.
const rollbackFailureRate = 0.5

// StackBuilder constructs a SubmissionProcessor whose stores all write
// through the given session. The controller calls it once per transaction.
type StackBuilder func(sess database.Session) *SubmissionProcessor

// OutcomeEmitter publishes processing outcomes. Implementations must
// tolerate being nil-checked by the caller; emission failures are
// fire-and-forget.
type OutcomeEmitter interface {
	SubmissionProcessed(ctx context.Context, result *models.SubmissionResult)
	BatchCompleted(ctx context.Context, result *models.BatchResult)
}

// Controller runs whole batches of submissions inside a single database
// transaction and decides, from the failure rate, whether the batch commits
// or rolls back.
type Controller struct {
	db      database.DB
	build   StackBuilder
	emitter OutcomeEmitter
	logger  ectologger.Logger
}

// NewController creates a Controller. emitter may be nil when outcome events
// are disabled.
func NewController(db database.DB, build StackBuilder, emitter OutcomeEmitter, logger ectologger.Logger) *Controller {
	return &Controller{
		db:      db,
		build:   build,
		emitter: emitter,
		logger:  logger,
	}
}

// ProcessBatch applies every submission in order within one transaction.
// All successful: commit. Failure rate above rollbackFailureRate: roll the
// whole batch back. Otherwise: commit the partial result.
func (c *Controller) ProcessBatch(ctx context.Context, submissions []models.Submission) *models.BatchResult {
	ctx, span := tracing.StartSpan(ctx, "processor.Controller.ProcessBatch")
	defer span.End()

	result := &models.BatchResult{
		Success:    true,
		TotalCount: len(submissions),
		Results:    []models.SubmissionResult{},
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return c.fault(ctx, result, err)
	}
	// Safe after commit: close-once semantics make this a no-op then.
	defer tx.Rollback()

	proc := c.build(tx)
	for idx := range submissions {
		res := proc.Process(ctx, idx, &submissions[idx])
		result.Results = append(result.Results, res)
		result.ProcessedCount++

		if res.Success {
			result.Summary.Successful++
			for _, action := range res.Actions {
				result.Summary.ActionsTaken.Add(action)
			}
		} else {
			result.Summary.Failed++
			result.Success = false
		}
		if res.ManualReviewNeeded {
			result.Summary.ManualReviewNeeded++
		}
	}

	if !result.Success {
		failureRate := float64(result.Summary.Failed) / float64(result.TotalCount)
		if failureRate > rollbackFailureRate {
			if err := tx.Rollback(); err != nil {
				return c.fault(ctx, result, err)
			}
			result.RolledBack = true
			result.RollbackReason = fmt.Sprintf("High failure rate: %d/%d submissions failed",
				result.Summary.Failed, result.TotalCount)
		} else {
			if err := tx.Commit(); err != nil {
				return c.fault(ctx, result, err)
			}
			result.PartialSuccess = true
		}
	} else {
		if err := tx.Commit(); err != nil {
			return c.fault(ctx, result, err)
		}
	}

	if c.emitter != nil {
		// Per-submission outcomes are only published once their writes have
		// actually persisted; a rolled-back batch publishes nothing but the
		// batch outcome itself.
		if !result.RolledBack {
			for i := range result.Results {
				c.emitter.SubmissionProcessed(ctx, &result.Results[i])
			}
		}
		c.emitter.BatchCompleted(ctx, result)
	}
	return result
}

// ProcessOne applies a single submission in its own transaction and returns
// the unwrapped per-submission result. A failed submission rolls back, so a
// half-applied submission never leaves orphaned rows behind.
func (c *Controller) ProcessOne(ctx context.Context, submission *models.Submission) models.SubmissionResult {
	ctx, span := tracing.StartSpan(ctx, "processor.Controller.ProcessOne")
	defer span.End()

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return failedResult(err)
	}
	defer tx.Rollback()

	proc := c.build(tx)
	result := proc.Process(ctx, 0, submission)

	if result.Success {
		if err := tx.Commit(); err != nil {
			return failedResult(err)
		}
	} else {
		if err := tx.Rollback(); err != nil {
			c.logger.WithContext(ctx).WithError(err).Error("Failed to roll back submission transaction")
		}
	}

	if c.emitter != nil {
		c.emitter.SubmissionProcessed(ctx, &result)
	}
	return result
}

// fault records a transaction-level error: the whole batch is reported
// failed and rolled back regardless of per-submission outcomes.
func (c *Controller) fault(ctx context.Context, result *models.BatchResult, err error) *models.BatchResult {
	c.logger.WithContext(ctx).WithError(err).Error("Batch processing fault")
	result.Success = false
	result.RolledBack = true
	result.Error = fmt.Sprintf("Batch processing error: %s", err.Error())
	return result
}

func failedResult(err error) models.SubmissionResult {
	return models.SubmissionResult{
		Success: false,
		Error:   fmt.Sprintf("Processing error: %s", err.Error()),
	}
}
