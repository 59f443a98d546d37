package drip

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"dealdrip/models"
)

// DefaultReminderLead is how far ahead of an appointment its reminder
// fires when the caller does not override the lead time.
const DefaultReminderLead = 24 * time.Hour

// Factory builds concrete delivery jobs from sequence steps and from
// appointment-reminder requests.
type Factory struct {
	store  Store
	Logger *log.Logger
	now    func() time.Time
}

func NewFactory(store Store, logger *log.Logger) *Factory {
	return &Factory{
		store:  store,
		Logger: logger,
		now:    time.Now,
	}
}

// MaterializeJobs turns every step of the sequence into a pending job
// anchored at the given instant. A disabled sequence yields no jobs.
//
// Jobs come back in ascending step position order; when two steps resolve
// to the same send time their relative order still follows position. A
// step with channel "both" produces one job carrying both payloads: the
// dispatcher decides how to fan out, the job stays one lifecycle unit.
func MaterializeJobs(sequence *models.Sequence, anchor time.Time) ([]models.Job, error) {
	if sequence == nil {
		return nil, fmt.Errorf("%w: sequence is required", ErrInvalidInput)
	}
	if !sequence.IsEnabled {
		return nil, nil
	}

	steps := make([]models.SequenceStep, len(sequence.Steps))
	copy(steps, sequence.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Position < steps[j].Position
	})

	jobs := make([]models.Job, 0, len(steps))
	for _, step := range steps {
		sendAt, err := ResolveSendAt(anchor, step.DelayType, step.DelayValue, step.DelayUnit)
		if err != nil {
			return nil, fmt.Errorf("step at position %d: %w", step.Position, err)
		}

		jobs = append(jobs, models.Job{
			CompanyID:      sequence.CompanyID,
			JobType:        models.JobTypeDripStep,
			Channel:        step.Channel,
			SendAt:         sendAt,
			Status:         models.JobStatusPending,
			MessageSubject: step.EmailSubject,
			MessageBody:    step.EmailBody,
			SMSBody:        step.SMSBody,
		})
	}
	return jobs, nil
}

// ScheduleStageJobs materializes and persists the drip jobs for a deal
// entering its current stage. Returns the created jobs, or none when the
// stage has no sequence or the sequence is disabled.
func (f *Factory) ScheduleStageJobs(ctx context.Context, deal *models.Deal, anchor time.Time) ([]models.Job, error) {
	if deal == nil || deal.ID == 0 {
		return nil, fmt.Errorf("%w: deal is required", ErrInvalidInput)
	}

	sequence, err := f.store.GetSequenceForStage(ctx, deal.CompanyID, deal.PipelineID, deal.StageID)
	if err != nil {
		return nil, fmt.Errorf("schedule stage jobs: %w", err)
	}
	if sequence == nil {
		return nil, nil
	}

	jobs, err := MaterializeJobs(sequence, anchor)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	for i := range jobs {
		jobs[i].DealID = deal.ID
	}

	ids, err := f.store.BatchInsertJobs(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("schedule stage jobs: %w", err)
	}
	for i := range jobs {
		jobs[i].ID = ids[i]
	}

	f.Logger.Printf("Scheduled %d drip jobs for deal %d entering %s/%s", len(jobs), deal.ID, deal.PipelineID, deal.StageID)
	return jobs, nil
}

// BuildReminder computes an appointment-reminder job without persisting
// it. Returns nil when the reminder time is not strictly in the future;
// reminders are never scheduled into the past.
func (f *Factory) BuildReminder(deal *models.Deal, appointment *models.Appointment, channel models.Channel, leadTime time.Duration) (*models.Job, error) {
	switch channel {
	case models.ChannelEmail, models.ChannelSMS, models.ChannelBoth:
		// ok
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
	if deal == nil || appointment == nil {
		return nil, fmt.Errorf("%w: deal and appointment are required", ErrInvalidInput)
	}
	if leadTime <= 0 {
		leadTime = DefaultReminderLead
	}

	sendAt := appointment.StartsAt.Add(-leadTime)
	if !sendAt.After(f.now()) {
		return nil, nil
	}

	when := appointment.StartsAt.Format("Monday, Jan 2 at 3:04 PM")
	job := &models.Job{
		CompanyID:      deal.CompanyID,
		DealID:         deal.ID,
		AppointmentID:  &appointment.ID,
		JobType:        models.JobTypeAppointmentReminder,
		Channel:        channel,
		SendAt:         sendAt,
		Status:         models.JobStatusPending,
		MessageSubject: fmt.Sprintf("Reminder: %s", appointment.Title),
		MessageBody: fmt.Sprintf("<p>Hi %s,</p><p>This is a reminder about your upcoming appointment \"%s\" on %s.</p>",
			deal.ContactName, appointment.Title, when),
		SMSBody: fmt.Sprintf("Reminder: %s on %s. Reply if you need to reschedule.", appointment.Title, when),
	}
	return job, nil
}

// ReminderResult is the typed outcome of a best-effort reminder
// scheduling. Callers around appointment mutations inspect it and decide
// whether to log-and-continue; the engine never swallows the failure
// itself.
type ReminderResult struct {
	JobID   uint
	Skipped bool // reminder time already passed, nothing was created
	Err     error
}

// ScheduleReminder builds and persists a reminder for the appointment.
// An existing pending reminder is rejected, not replaced: callers cancel
// it explicitly before re-creating (see Lifecycle.CancelPending).
func (f *Factory) ScheduleReminder(ctx context.Context, deal *models.Deal, appointment *models.Appointment, channel models.Channel, leadTime time.Duration) ReminderResult {
	job, err := f.BuildReminder(deal, appointment, channel, leadTime)
	if err != nil {
		return ReminderResult{Err: err}
	}
	if job == nil {
		return ReminderResult{Skipped: true}
	}

	exists, err := f.store.HasPendingReminder(ctx, appointment.ID)
	if err != nil {
		return ReminderResult{Err: fmt.Errorf("schedule reminder: %w", err)}
	}
	if exists {
		return ReminderResult{Err: fmt.Errorf("%w: appointment %d already has a pending reminder", ErrInvalidInput, appointment.ID)}
	}

	if err := f.store.InsertJob(ctx, job); err != nil {
		return ReminderResult{Err: fmt.Errorf("schedule reminder: %w", err)}
	}

	f.Logger.Printf("Scheduled %s reminder job %d for appointment %d", channel, job.ID, appointment.ID)
	return ReminderResult{JobID: job.ID}
}
