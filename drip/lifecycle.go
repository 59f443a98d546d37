package drip

import (
	"context"
	"fmt"
	"log"
	"time"

	"dealdrip/models"
)

// Lifecycle owns the job state machine: claiming, completion and
// cancellation. All transitions go through the store's conditional
// updates, so any number of dispatcher instances can call in concurrently.
type Lifecycle struct {
	store  Store
	Logger *log.Logger
	now    func() time.Time
}

func NewLifecycle(store Store, logger *log.Logger) *Lifecycle {
	return &Lifecycle{
		store:  store,
		Logger: logger,
		now:    time.Now,
	}
}

// CancelFilter targets a deal's jobs or an appointment's jobs. Exactly
// one of DealID or AppointmentID should be set; JobType optionally
// narrows a deal-wide cancel so a stage change does not sweep up
// appointment reminders.
type CancelFilter struct {
	DealID        uint
	AppointmentID uint
	JobType       models.JobType
}

// CancelPending moves every matching pending job to cancelled, recording
// the reason in last_error. Jobs already processing, sent or failed are
// untouched; cancellation never preempts an in-flight or completed
// attempt. Returns the number of jobs cancelled; zero matches is not an
// error.
func (l *Lifecycle) CancelPending(ctx context.Context, filter CancelFilter, reason string) (int64, error) {
	if filter.DealID == 0 && filter.AppointmentID == 0 {
		return 0, fmt.Errorf("%w: cancel filter needs a deal or appointment id", ErrInvalidInput)
	}

	count, err := l.store.UpdateJobsWhere(ctx,
		JobFilter{
			DealID:        filter.DealID,
			AppointmentID: filter.AppointmentID,
			Status:        models.JobStatusPending,
			JobType:       filter.JobType,
		},
		models.JobStatusCancelled,
		map[string]interface{}{"last_error": reason},
	)
	if err != nil {
		return 0, fmt.Errorf("cancel pending jobs: %w", err)
	}
	if count > 0 {
		l.Logger.Printf("Cancelled %d pending jobs (%s)", count, reason)
	}
	return count, nil
}

// MarkProcessing attempts the pending -> processing transition. It
// returns false, writing nothing, when the job is not currently pending.
// This compare-and-set is the exclusivity guard that stops two
// dispatchers from delivering the same job.
func (l *Lifecycle) MarkProcessing(ctx context.Context, jobID uint) (bool, error) {
	claimed, err := l.store.UpdateJobStatus(ctx, jobID, models.JobStatusPending, models.JobStatusProcessing, nil)
	if err != nil {
		return false, fmt.Errorf("mark processing: %w", err)
	}
	return claimed, nil
}

// MarkResult records the outcome of a delivery attempt: processing ->
// sent stamps sent_at, processing -> failed stamps last_error. A job that
// is not currently processing fails with ErrInvalidTransition, which
// guards against late or duplicate completion callbacks. A failed job is
// terminal; retrying means creating a new job through the factory.
func (l *Lifecycle) MarkResult(ctx context.Context, jobID uint, outcome models.JobStatus, errMsg string) error {
	var fields map[string]interface{}
	switch outcome {
	case models.JobStatusSent:
		fields = map[string]interface{}{"sent_at": l.now()}
	case models.JobStatusFailed:
		fields = map[string]interface{}{"last_error": errMsg}
	default:
		return fmt.Errorf("%w: outcome must be sent or failed, got %q", ErrInvalidInput, outcome)
	}

	ok, err := l.store.UpdateJobStatus(ctx, jobID, models.JobStatusProcessing, outcome, fields)
	if err != nil {
		return fmt.Errorf("mark result: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: job %d is not processing", ErrInvalidTransition, jobID)
	}
	return nil
}
