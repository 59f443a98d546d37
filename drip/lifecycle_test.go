package drip

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdrip/models"
	"dealdrip/utils"
)

func insertPendingJob(t *testing.T, store *MemoryStore, dealID uint) *models.Job {
	t.Helper()

	job := &models.Job{
		CompanyID: 7,
		DealID:    dealID,
		JobType:   models.JobTypeDripStep,
		Channel:   models.ChannelEmail,
		SendAt:    time.Now(),
		Status:    models.JobStatusPending,
	}
	require.NoError(t, store.InsertJob(context.Background(), job))
	return job
}

func TestMarkProcessing_ClaimsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	job := insertPendingJob(t, store, 1)

	claimed, err := lifecycle.MarkProcessing(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim loses without error
	claimed, err = lifecycle.MarkProcessing(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestMarkProcessing_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	job := insertPendingJob(t, store, 1)

	const attempts = 20
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := lifecycle.MarkProcessing(ctx, job.ID)
			if err == nil && claimed {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1, "exactly one goroutine should win the claim")
}

func TestMarkResult_Sent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	sentAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	lifecycle.now = func() time.Time { return sentAt }

	job := insertPendingJob(t, store, 1)
	claimed, err := lifecycle.MarkProcessing(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, lifecycle.MarkResult(ctx, job.ID, models.JobStatusSent, ""))

	stored, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSent, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, sentAt, *stored.SentAt)
	assert.Empty(t, stored.LastError)
}

func TestMarkResult_Failed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	job := insertPendingJob(t, store, 1)
	claimed, err := lifecycle.MarkProcessing(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, lifecycle.MarkResult(ctx, job.ID, models.JobStatusFailed, "smtp timeout"))

	stored, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, stored.Status)
	assert.Equal(t, "smtp timeout", stored.LastError)
	assert.Nil(t, stored.SentAt)
}

func TestMarkResult_RequiresProcessing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	job := insertPendingJob(t, store, 1)

	// Still pending, never claimed
	err := lifecycle.MarkResult(ctx, job.ID, models.JobStatusSent, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Sent is terminal
	claimed, err := lifecycle.MarkProcessing(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, lifecycle.MarkResult(ctx, job.ID, models.JobStatusSent, ""))

	err = lifecycle.MarkResult(ctx, job.ID, models.JobStatusFailed, "late callback")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSent, stored.Status)
}

func TestMarkResult_RejectsOtherOutcomes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	job := insertPendingJob(t, store, 1)

	err := lifecycle.MarkResult(ctx, job.ID, models.JobStatusCancelled, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelPending_ByDeal(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	first := insertPendingJob(t, store, 1)
	second := insertPendingJob(t, store, 1)
	other := insertPendingJob(t, store, 2)

	// One of the deal's jobs already went out
	claimed, err := lifecycle.MarkProcessing(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, lifecycle.MarkResult(ctx, second.ID, models.JobStatusSent, ""))

	count, err := lifecycle.CancelPending(ctx, CancelFilter{DealID: 1}, "deal closed")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	cancelled, err := store.GetJob(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)
	assert.Equal(t, "deal closed", cancelled.LastError)

	sent, err := store.GetJob(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSent, sent.Status)

	untouched, err := store.GetJob(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, untouched.Status)
}

func TestCancelPending_ByAppointment(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	appointmentID := uint(5)
	reminder := &models.Job{
		CompanyID:     7,
		DealID:        1,
		AppointmentID: utils.Pointer(appointmentID),
		JobType:       models.JobTypeAppointmentReminder,
		Channel:       models.ChannelSMS,
		SendAt:        time.Now().Add(time.Hour),
		Status:        models.JobStatusPending,
	}
	require.NoError(t, store.InsertJob(ctx, reminder))
	dripJob := insertPendingJob(t, store, 1)

	count, err := lifecycle.CancelPending(ctx, CancelFilter{AppointmentID: appointmentID}, "appointment cancelled")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	stored, err := store.GetJob(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, stored.Status)

	// The deal's drip job is not an appointment job and stays pending
	kept, err := store.GetJob(ctx, dripJob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, kept.Status)
}

func TestCancelPending_DripTypeLeavesRemindersAlone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lifecycle := NewLifecycle(store, testLogger())

	dripJob := insertPendingJob(t, store, 1)
	reminder := &models.Job{
		CompanyID:     7,
		DealID:        1,
		AppointmentID: utils.Pointer(uint(5)),
		JobType:       models.JobTypeAppointmentReminder,
		Channel:       models.ChannelEmail,
		SendAt:        time.Now().Add(time.Hour),
		Status:        models.JobStatusPending,
	}
	require.NoError(t, store.InsertJob(ctx, reminder))

	// A stage change cancels only the outgoing stage's drip jobs
	count, err := lifecycle.CancelPending(ctx,
		CancelFilter{DealID: 1, JobType: models.JobTypeDripStep},
		"deal moved to stage contacted")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	cancelled, err := store.GetJob(ctx, dripJob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, cancelled.Status)

	kept, err := store.GetJob(ctx, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, kept.Status)
	assert.Empty(t, kept.LastError)
}

func TestCancelPending_NoMatchesIsNotAnError(t *testing.T) {
	lifecycle := NewLifecycle(NewMemoryStore(), testLogger())

	count, err := lifecycle.CancelPending(context.Background(), CancelFilter{DealID: 99}, "nothing here")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCancelPending_RequiresFilter(t *testing.T) {
	lifecycle := NewLifecycle(NewMemoryStore(), testLogger())

	_, err := lifecycle.CancelPending(context.Background(), CancelFilter{}, "no filter")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
