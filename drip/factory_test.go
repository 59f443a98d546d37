package drip

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdrip/models"
)

func testLogger() *log.Logger {
	return log.New(os.Stdout, "TEST: ", log.LstdFlags)
}

func testSequence(companyID uint) *models.Sequence {
	return &models.Sequence{
		CompanyID:  companyID,
		PipelineID: models.PipelineSales,
		StageID:    "new_lead",
		Name:       "New Lead Welcome",
		IsEnabled:  true,
		Steps: []models.SequenceStep{
			{
				Position:  2,
				DelayType: models.DelayAfter, DelayValue: 1, DelayUnit: models.UnitDays,
				Channel: models.ChannelSMS,
				SMSBody: "Quick follow up",
			},
			{
				Position:     1,
				DelayType:    models.DelayImmediate,
				Channel:      models.ChannelEmail,
				EmailSubject: "Welcome",
				EmailBody:    "<p>Thanks for reaching out</p>",
			},
			{
				Position:  3,
				DelayType: models.DelayAfter, DelayValue: 1, DelayUnit: models.UnitDays,
				Channel:      models.ChannelBoth,
				EmailSubject: "Still here",
				EmailBody:    "<p>Checking in</p>",
				SMSBody:      "Checking in",
			},
		},
	}
}

func TestMaterializeJobs_OrderAndContent(t *testing.T) {
	anchor := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	seq := testSequence(7)

	jobs, err := MaterializeJobs(seq, anchor)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	// Steps come back in position order even though the slice was shuffled
	assert.Equal(t, "Welcome", jobs[0].MessageSubject)
	assert.Equal(t, anchor, jobs[0].SendAt)

	assert.Equal(t, models.ChannelSMS, jobs[1].Channel)
	assert.Equal(t, anchor.Add(24*time.Hour), jobs[1].SendAt)

	// Positions 2 and 3 resolve to the same instant; position order holds
	assert.Equal(t, models.ChannelBoth, jobs[2].Channel)
	assert.Equal(t, jobs[1].SendAt, jobs[2].SendAt)

	for _, job := range jobs {
		assert.Equal(t, uint(7), job.CompanyID)
		assert.Equal(t, models.JobTypeDripStep, job.JobType)
		assert.Equal(t, models.JobStatusPending, job.Status)
	}

	// A "both" step stays one job carrying both payloads
	assert.Equal(t, "Still here", jobs[2].MessageSubject)
	assert.Equal(t, "Checking in", jobs[2].SMSBody)
}

func TestMaterializeJobs_DisabledSequence(t *testing.T) {
	seq := testSequence(7)
	seq.IsEnabled = false

	jobs, err := MaterializeJobs(seq, time.Now())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMaterializeJobs_NilSequence(t *testing.T) {
	_, err := MaterializeJobs(nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMaterializeJobs_BadStepSpec(t *testing.T) {
	seq := testSequence(7)
	seq.Steps[0].DelayUnit = "fortnights"

	_, err := MaterializeJobs(seq, time.Now())
	assert.ErrorIs(t, err, ErrInvalidDelaySpec)
}

func TestScheduleStageJobs_Persists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	seq := testSequence(7)
	require.NoError(t, store.InsertSequencesWithSteps(ctx, []models.Sequence{*seq}))

	dealID := store.PutDeal(models.Deal{
		CompanyID:  7,
		Name:       "Kitchen remodel",
		PipelineID: models.PipelineSales,
		StageID:    "new_lead",
	})
	deal, err := store.GetDeal(ctx, dealID)
	require.NoError(t, err)

	anchor := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	jobs, err := factory.ScheduleStageJobs(ctx, deal, anchor)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	for _, job := range jobs {
		assert.NotZero(t, job.ID)
		assert.Equal(t, dealID, job.DealID)

		stored, err := store.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.JobStatusPending, stored.Status)
	}
}

func TestScheduleStageJobs_NoSequenceForStage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	dealID := store.PutDeal(models.Deal{
		CompanyID:  7,
		PipelineID: models.PipelineSales,
		StageID:    "no_such_stage",
	})
	deal, err := store.GetDeal(ctx, dealID)
	require.NoError(t, err)

	jobs, err := factory.ScheduleStageJobs(ctx, deal, time.Now())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestBuildReminder_Defaults(t *testing.T) {
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	factory.now = func() time.Time { return now }

	deal := &models.Deal{CompanyID: 7, ContactName: "Sam"}
	deal.ID = 3
	appointment := &models.Appointment{
		Title:    "Site visit",
		StartsAt: now.Add(72 * time.Hour),
	}
	appointment.ID = 9

	job, err := factory.BuildReminder(deal, appointment, models.ChannelBoth, 0)
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, appointment.StartsAt.Add(-DefaultReminderLead), job.SendAt)
	assert.Equal(t, models.JobTypeAppointmentReminder, job.JobType)
	assert.Equal(t, uint(3), job.DealID)
	require.NotNil(t, job.AppointmentID)
	assert.Equal(t, uint(9), *job.AppointmentID)
	assert.Contains(t, job.MessageSubject, "Site visit")
	assert.NotEmpty(t, job.SMSBody)
}

func TestBuildReminder_PastSendTimeSkipped(t *testing.T) {
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	factory.now = func() time.Time { return now }

	deal := &models.Deal{CompanyID: 7}
	appointment := &models.Appointment{
		Title:    "Site visit",
		StartsAt: now.Add(2 * time.Hour), // reminder would land 22h in the past
	}

	job, err := factory.BuildReminder(deal, appointment, models.ChannelEmail, 0)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestBuildReminder_InvalidChannel(t *testing.T) {
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	deal := &models.Deal{CompanyID: 7}
	appointment := &models.Appointment{StartsAt: time.Now().Add(72 * time.Hour)}

	_, err := factory.BuildReminder(deal, appointment, models.ChannelNone, 0)
	assert.ErrorIs(t, err, ErrInvalidChannel)

	_, err = factory.BuildReminder(deal, appointment, "carrier_pigeon", 0)
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestScheduleReminder_RejectsDuplicatePending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	factory.now = func() time.Time { return now }

	deal := &models.Deal{CompanyID: 7, ContactName: "Sam"}
	deal.ID = 3
	appointment := &models.Appointment{
		Title:    "Site visit",
		StartsAt: now.Add(72 * time.Hour),
	}
	appointment.ID = 9

	first := factory.ScheduleReminder(ctx, deal, appointment, models.ChannelEmail, 0)
	require.NoError(t, first.Err)
	assert.NotZero(t, first.JobID)
	assert.False(t, first.Skipped)

	second := factory.ScheduleReminder(ctx, deal, appointment, models.ChannelEmail, 0)
	assert.ErrorIs(t, second.Err, ErrInvalidInput)
	assert.Zero(t, second.JobID)
}

func TestScheduleReminder_SkippedResult(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	factory := NewFactory(store, testLogger())

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	factory.now = func() time.Time { return now }

	deal := &models.Deal{CompanyID: 7}
	appointment := &models.Appointment{StartsAt: now.Add(time.Hour)}
	appointment.ID = 9

	result := factory.ScheduleReminder(ctx, deal, appointment, models.ChannelSMS, 0)
	require.NoError(t, result.Err)
	assert.True(t, result.Skipped)
	assert.Zero(t, result.JobID)

	// Nothing was persisted
	exists, err := store.HasPendingReminder(ctx, appointment.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
