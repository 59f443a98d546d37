package drip

import (
	"context"
	"time"

	"dealdrip/models"
)

// JobFilter selects jobs for batch updates. At least one of DealID or
// AppointmentID must be set; Status and JobType narrow the match when
// non-empty.
type JobFilter struct {
	DealID        uint
	AppointmentID uint
	Status        models.JobStatus
	JobType       models.JobType
}

// Store is the persistence boundary the engine depends on. The engine
// never reaches past it; every operation is a single bounded storage call.
type Store interface {
	// InsertSequencesWithSteps creates all sequences and all their steps in
	// one transaction. Either everything commits or nothing does; readers
	// never observe a partially-seeded company.
	InsertSequencesWithSteps(ctx context.Context, sequences []models.Sequence) error
	CountSequences(ctx context.Context, companyID uint) (int64, error)

	// GetSequenceWithSteps returns the sequence with steps ordered by
	// position, or nil when it does not exist.
	GetSequenceWithSteps(ctx context.Context, sequenceID uint) (*models.Sequence, error)
	// GetSequenceForStage returns the company's sequence for a pipeline
	// stage with steps ordered by position, or nil when none exists.
	GetSequenceForStage(ctx context.Context, companyID uint, pipelineID models.PipelineID, stageID string) (*models.Sequence, error)

	InsertJob(ctx context.Context, job *models.Job) error
	// BatchInsertJobs inserts the jobs in slice order and returns their
	// assigned IDs. Insertion order is what gives equal-send_at jobs their
	// stable dispatch order.
	BatchInsertJobs(ctx context.Context, jobs []models.Job) ([]uint, error)

	// UpdateJobStatus is a conditional single-row update: the write lands
	// only if the job's current status equals expected (atomic
	// compare-and-set, never read-then-write). Returns false on mismatch.
	UpdateJobStatus(ctx context.Context, jobID uint, expected, next models.JobStatus, fields map[string]interface{}) (bool, error)
	// UpdateJobsWhere moves every job matching the filter to next, applying
	// fields, and returns the number of rows affected.
	UpdateJobsWhere(ctx context.Context, filter JobFilter, next models.JobStatus, fields map[string]interface{}) (int64, error)

	// HasPendingReminder reports whether a pending appointment-reminder job
	// exists for the appointment.
	HasPendingReminder(ctx context.Context, appointmentID uint) (bool, error)

	// DueJobs returns pending jobs with send_at <= now, ordered by send_at
	// then insertion order, up to limit.
	DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error)
	GetJob(ctx context.Context, jobID uint) (*models.Job, error)

	GetDeal(ctx context.Context, dealID uint) (*models.Deal, error)
}
