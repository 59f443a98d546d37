package drip

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dealdrip/models"
)

// GormStore is the Postgres-backed Store used in production.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertSequencesWithSteps(ctx context.Context, sequences []models.Sequence) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for i := range sequences {
		// Create cascades into the Steps association inside the transaction
		if err := tx.Create(&sequences[i]).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (s *GormStore) CountSequences(ctx context.Context, companyID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Sequence{}).
		Where("company_id = ?", companyID).
		Count(&count).Error
	return count, err
}

func (s *GormStore) GetSequenceWithSteps(ctx context.Context, sequenceID uint) (*models.Sequence, error) {
	var sequence models.Sequence
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&sequence, sequenceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sequence, nil
}

func (s *GormStore) GetSequenceForStage(ctx context.Context, companyID uint, pipelineID models.PipelineID, stageID string) (*models.Sequence, error) {
	var sequence models.Sequence
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND pipeline_id = ? AND stage_id = ?", companyID, pipelineID, stageID).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&sequence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sequence, nil
}

func (s *GormStore) InsertJob(ctx context.Context, job *models.Job) error {
	return s.db.WithContext(ctx).Create(job).Error
}

func (s *GormStore) BatchInsertJobs(ctx context.Context, jobs []models.Job) ([]uint, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	return ids, nil
}

func (s *GormStore) UpdateJobStatus(ctx context.Context, jobID uint, expected, next models.JobStatus, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": next}
	for k, v := range fields {
		updates[k] = v
	}

	// Single conditional UPDATE; the WHERE on status is what makes the
	// claim atomic across concurrent dispatchers.
	res := s.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) UpdateJobsWhere(ctx context.Context, filter JobFilter, next models.JobStatus, fields map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{"status": next}
	for k, v := range fields {
		updates[k] = v
	}

	q := s.db.WithContext(ctx).Model(&models.Job{})
	if filter.DealID != 0 {
		q = q.Where("deal_id = ?", filter.DealID)
	}
	if filter.AppointmentID != 0 {
		q = q.Where("appointment_id = ?", filter.AppointmentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.JobType != "" {
		q = q.Where("job_type = ?", filter.JobType)
	}

	res := q.Updates(updates)
	return res.RowsAffected, res.Error
}

func (s *GormStore) HasPendingReminder(ctx context.Context, appointmentID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("appointment_id = ? AND job_type = ? AND status = ?",
			appointmentID, models.JobTypeAppointmentReminder, models.JobStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) DueJobs(ctx context.Context, now time.Time, limit int) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Where("status = ? AND send_at <= ?", models.JobStatusPending, now).
		Order("send_at ASC, id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (s *GormStore) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *GormStore) GetDeal(ctx context.Context, dealID uint) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.WithContext(ctx).First(&deal, dealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deal, nil
}
