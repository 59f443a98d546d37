package drip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdrip/models"
)

// Full flow: seed the catalog, move a deal into proposals_sent, and check
// the materialized schedule end to end.
func TestProposalFollowUpSchedule(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seeder := NewSeeder(store, models.DefaultCatalog(), testLogger())
	factory := NewFactory(store, testLogger())
	lifecycle := NewLifecycle(store, testLogger())

	_, err := seeder.SeedDefaultSequences(ctx, 7)
	require.NoError(t, err)

	dealID := store.PutDeal(models.Deal{
		CompanyID:    7,
		Name:         "Bathroom remodel",
		PipelineID:   models.PipelineSales,
		StageID:      "proposals_sent",
		ContactName:  "Sam",
		ContactEmail: "sam@example.com",
	})
	deal, err := store.GetDeal(ctx, dealID)
	require.NoError(t, err)

	anchor := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	jobs, err := factory.ScheduleStageJobs(ctx, deal, anchor)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	wantOffsets := []time.Duration{
		2 * time.Hour,
		24 * time.Hour,
		48 * time.Hour,
		96 * time.Hour,
	}
	for i, job := range jobs {
		assert.Equal(t, anchor.Add(wantOffsets[i]), job.SendAt, "job %d", i)
		assert.Equal(t, dealID, job.DealID)
		assert.Equal(t, models.JobStatusPending, job.Status)
	}

	// Only the first job is due two hours in
	due, err := store.DueJobs(ctx, anchor.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, jobs[0].ID, due[0].ID)

	// Deliver it
	claimed, err := lifecycle.MarkProcessing(ctx, due[0].ID)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, lifecycle.MarkResult(ctx, due[0].ID, models.JobStatusSent, ""))

	// The deal closes; the remaining three follow-ups are cancelled, the
	// sent one is untouched
	count, err := lifecycle.CancelPending(ctx, CancelFilter{DealID: dealID}, "deal won")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	sent, err := store.GetJob(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSent, sent.Status)

	for _, job := range jobs[1:] {
		stored, err := store.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusCancelled, stored.Status)
		assert.Equal(t, "deal won", stored.LastError)
	}

	// Nothing is left to dispatch even far in the future
	due, err = store.DueJobs(ctx, anchor.Add(1000*time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDueJobs_StableOrderOnEqualSendAt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	batch := []models.Job{
		{CompanyID: 7, DealID: 1, JobType: models.JobTypeDripStep, Channel: models.ChannelEmail, SendAt: at, Status: models.JobStatusPending, MessageSubject: "first"},
		{CompanyID: 7, DealID: 1, JobType: models.JobTypeDripStep, Channel: models.ChannelEmail, SendAt: at, Status: models.JobStatusPending, MessageSubject: "second"},
		{CompanyID: 7, DealID: 1, JobType: models.JobTypeDripStep, Channel: models.ChannelEmail, SendAt: at.Add(-time.Minute), Status: models.JobStatusPending, MessageSubject: "earlier"},
	}
	_, err := store.BatchInsertJobs(ctx, batch)
	require.NoError(t, err)

	due, err := store.DueJobs(ctx, at, 10)
	require.NoError(t, err)
	require.Len(t, due, 3)

	assert.Equal(t, "earlier", due[0].MessageSubject)
	assert.Equal(t, "first", due[1].MessageSubject)
	assert.Equal(t, "second", due[2].MessageSubject)
}
