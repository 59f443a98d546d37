package drip

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dealdrip/models"
)

// MemoryStore is an in-memory Store with the same semantics as the
// Postgres one, including the conditional-update claim. Used by tests and
// by local development without a database.
type MemoryStore struct {
	mu sync.Mutex

	sequences map[uint]*models.Sequence
	jobs      map[uint]*models.Job
	deals     map[uint]*models.Deal

	nextSequenceID uint
	nextStepID     uint
	nextJobID      uint
	nextDealID     uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sequences: make(map[uint]*models.Sequence),
		jobs:      make(map[uint]*models.Job),
		deals:     make(map[uint]*models.Deal),
	}
}

// PutDeal stores a deal and returns its assigned ID.
func (s *MemoryStore) PutDeal(deal models.Deal) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDealID++
	deal.ID = s.nextDealID
	s.deals[deal.ID] = &deal
	return deal.ID
}

func (s *MemoryStore) InsertSequencesWithSteps(ctx context.Context, sequences []models.Sequence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirrors the unique (company, pipeline, stage) index: the whole batch
	// is rejected before anything lands, so a failed insert has no effect
	incoming := make(map[string]bool)
	for _, seq := range sequences {
		key := stageKey(seq.CompanyID, seq.PipelineID, seq.StageID)
		if incoming[key] {
			return fmt.Errorf("duplicate sequence for %s", key)
		}
		incoming[key] = true
	}
	for _, existing := range s.sequences {
		if incoming[stageKey(existing.CompanyID, existing.PipelineID, existing.StageID)] {
			return fmt.Errorf("sequence already exists for company %d stage %s/%s",
				existing.CompanyID, existing.PipelineID, existing.StageID)
		}
	}

	// Single lock section stands in for the transaction boundary
	for i := range sequences {
		seq := sequences[i]
		s.nextSequenceID++
		seq.ID = s.nextSequenceID
		steps := make([]models.SequenceStep, len(seq.Steps))
		copy(steps, seq.Steps)
		for j := range steps {
			s.nextStepID++
			steps[j].ID = s.nextStepID
			steps[j].SequenceID = seq.ID
		}
		seq.Steps = steps
		s.sequences[seq.ID] = &seq
	}
	return nil
}

func (s *MemoryStore) CountSequences(ctx context.Context, companyID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, seq := range s.sequences {
		if seq.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) GetSequenceWithSteps(ctx context.Context, sequenceID uint) (*models.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.sequences[sequenceID]
	if !ok {
		return nil, nil
	}
	return copySequence(seq), nil
}

func (s *MemoryStore) GetSequenceForStage(ctx context.Context, companyID uint, pipelineID models.PipelineID, stageID string) (*models.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seq := range s.sequences {
		if seq.CompanyID == companyID && seq.PipelineID == pipelineID && seq.StageID == stageID {
			return copySequence(seq), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertJob(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextJobID++
	job.ID = s.nextJobID
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

func (s *MemoryStore) BatchInsertJobs(ctx context.Context, jobs []models.Job) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint, len(jobs))
	for i := range jobs {
		s.nextJobID++
		jobs[i].ID = s.nextJobID
		jobs[i].CreatedAt = time.Now()
		jobs[i].UpdatedAt = jobs[i].CreatedAt
		stored := jobs[i]
		s.jobs[jobs[i].ID] = &stored
		ids[i] = jobs[i].ID
	}
	return ids, nil
}

func (s *MemoryStore) UpdateJobStatus(ctx context.Context, jobID uint, expected, next models.JobStatus, fields map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status != expected {
		return false, nil
	}
	job.Status = next
	applyJobFields(job, fields)
	job.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) UpdateJobsWhere(ctx context.Context, filter JobFilter, next models.JobStatus, fields map[string]interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, job := range s.jobs {
		if filter.DealID != 0 && job.DealID != filter.DealID {
			continue
		}
		if filter.AppointmentID != 0 && (job.AppointmentID == nil || *job.AppointmentID != filter.AppointmentID) {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		if filter.JobType != "" && job.JobType != filter.JobType {
			continue
		}
		job.Status = next
		applyJobFields(job, fields)
		job.UpdatedAt = time.Now()
		affected++
	}
	return affected, nil
}

func (s *MemoryStore) HasPendingReminder(ctx context.Context, appointmentID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.JobType == models.JobTypeAppointmentReminder &&
			job.Status == models.JobStatusPending &&
			job.AppointmentID != nil && *job.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Job
	for _, job := range s.jobs {
		if job.Status == models.JobStatusPending && !job.SendAt.After(now) {
			due = append(due, *job)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].SendAt.Equal(due[j].SendAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].SendAt.Before(due[j].SendAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, nil
	}
	out := *job
	return &out, nil
}

func (s *MemoryStore) GetDeal(ctx context.Context, dealID uint) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deal, ok := s.deals[dealID]
	if !ok {
		return nil, nil
	}
	out := *deal
	return &out, nil
}

func stageKey(companyID uint, pipelineID models.PipelineID, stageID string) string {
	return fmt.Sprintf("%d/%s/%s", companyID, pipelineID, stageID)
}

func applyJobFields(job *models.Job, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "last_error":
			if msg, ok := v.(string); ok {
				job.LastError = msg
			}
		case "sent_at":
			if ts, ok := v.(time.Time); ok {
				job.SentAt = &ts
			}
		}
	}
}

func copySequence(seq *models.Sequence) *models.Sequence {
	out := *seq
	out.Steps = make([]models.SequenceStep, len(seq.Steps))
	copy(out.Steps, seq.Steps)
	sort.Slice(out.Steps, func(i, j int) bool {
		return out.Steps[i].Position < out.Steps[j].Position
	})
	return &out
}
