package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/fretbase/registry/pkg/models"
)

// Event types emitted by the registry.
const (
	EventSubmissionProcessed = "submission.processed"
	EventBatchCompleted      = "batch.completed"
)

// Emitter publishes processing outcomes. Emission is fire-and-forget:
// a broker outage must never fail a committed batch.
type Emitter struct {
	producer *Producer
	logger   ectologger.Logger
}

// NewEmitter creates an Emitter over the given producer.
func NewEmitter(producer *Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// SubmissionProcessed publishes a per-submission outcome.
func (e *Emitter) SubmissionProcessed(ctx context.Context, result *models.SubmissionResult) {
	e.publish(ctx, EventSubmissionProcessed, result)
}

// BatchCompleted publishes a whole batch's outcome.
func (e *Emitter) BatchCompleted(ctx context.Context, result *models.BatchResult) {
	e.publish(ctx, EventBatchCompleted, result)
}

func (e *Emitter) publish(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"event_type": eventType}).Error("Failed to marshal outcome event")
		return
	}

	if err := e.producer.Publish(ctx, &OutcomeEvent{EventType: eventType, Payload: data}); err != nil {
		// Logged by the producer; outcomes are best-effort.
		return
	}
}
