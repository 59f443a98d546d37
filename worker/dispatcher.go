package worker

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealdrip/drip"
	"dealdrip/models"
	"dealdrip/utils"
)

// Dispatcher periodically scans for due jobs and delivers them through
// the configured transports. Multiple instances can run against the same
// database; the pending -> processing claim keeps them from double-sending.
type Dispatcher struct {
	Store     drip.Store
	Lifecycle *drip.Lifecycle
	Mailer    utils.EmailSender
	Texter    utils.SMSSender
	Logger    *log.Logger

	Interval  time.Duration
	BatchSize int
	FromEmail string

	now func() time.Time
}

func NewDispatcher(store drip.Store, lifecycle *drip.Lifecycle, mailer utils.EmailSender, texter utils.SMSSender, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		Store:     store,
		Lifecycle: lifecycle,
		Mailer:    mailer,
		Texter:    texter,
		Logger:    logger,
		Interval:  30 * time.Second,
		BatchSize: 50,
		now:       time.Now,
	}
}

// Start runs the dispatch loop until the context is cancelled
func (d *Dispatcher) Start(ctx context.Context) {
	d.Logger.Printf("Starting job dispatcher (interval %s, batch %d)", d.Interval, d.BatchSize)

	ticker := time.NewTicker(d.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Logger.Println("Job dispatcher stopped")
			return
		case <-ticker.C:
			d.ProcessDueJobs(ctx)
		}
	}
}

// ProcessDueJobs claims and delivers one batch of due jobs
func (d *Dispatcher) ProcessDueJobs(ctx context.Context) {
	jobs, err := d.Store.DueJobs(ctx, d.now(), d.BatchSize)
	if err != nil {
		d.Logger.Printf("Failed to fetch due jobs: %v", err)
		utils.ReportError(err, "dispatch_scan", nil)
		return
	}
	if len(jobs) == 0 {
		return
	}

	for _, job := range jobs {
		claimed, err := d.Lifecycle.MarkProcessing(ctx, job.ID)
		if err != nil {
			d.Logger.Printf("Failed to claim job %d: %v", job.ID, err)
			continue
		}
		if !claimed {
			// Another dispatcher got it, or it was cancelled under us
			continue
		}
		d.deliver(ctx, job)
	}
}

// deliver attempts every channel the job carries. A "both" job succeeds
// only when both channels succeed; any channel failure marks the whole
// job failed with each channel's error recorded.
func (d *Dispatcher) deliver(ctx context.Context, job models.Job) {
	attemptID := uuid.New().String()

	deal, err := d.Store.GetDeal(ctx, job.DealID)
	if err != nil || deal == nil {
		d.fail(ctx, job, attemptID, "deal lookup failed")
		return
	}

	var failures []string

	if job.Channel == models.ChannelEmail || job.Channel == models.ChannelBoth {
		if deal.ContactEmail == "" {
			failures = append(failures, "email: deal has no contact email")
		} else if _, err := d.Mailer.Send(utils.Email{
			From:    d.FromEmail,
			To:      deal.ContactEmail,
			Subject: job.MessageSubject,
			Body:    job.MessageBody,
		}); err != nil {
			failures = append(failures, "email: "+err.Error())
		}
	}

	if job.Channel == models.ChannelSMS || job.Channel == models.ChannelBoth {
		if deal.ContactPhone == "" {
			failures = append(failures, "sms: deal has no contact phone")
		} else if _, err := d.Texter.SendSMS(ctx, deal.ContactPhone, job.SMSBody); err != nil {
			failures = append(failures, "sms: "+err.Error())
		}
	}

	if len(failures) > 0 {
		d.fail(ctx, job, attemptID, strings.Join(failures, "; "))
		return
	}

	if err := d.Lifecycle.MarkResult(ctx, job.ID, models.JobStatusSent, ""); err != nil {
		d.Logger.Printf("Failed to mark job %d sent: %v", job.ID, err)
		utils.ReportError(err, "dispatch_complete", map[string]interface{}{
			"job_id":     job.ID,
			"attempt_id": attemptID,
		})
		return
	}

	utils.LogEvent("job_sent", map[string]interface{}{
		"job_id":     job.ID,
		"deal_id":    job.DealID,
		"job_type":   job.JobType,
		"channel":    job.Channel,
		"attempt_id": attemptID,
	})
}

func (d *Dispatcher) fail(ctx context.Context, job models.Job, attemptID, reason string) {
	d.Logger.Printf("Job %d delivery failed: %s", job.ID, reason)

	if err := d.Lifecycle.MarkResult(ctx, job.ID, models.JobStatusFailed, reason); err != nil {
		d.Logger.Printf("Failed to mark job %d failed: %v", job.ID, err)
		utils.ReportError(err, "dispatch_complete", map[string]interface{}{
			"job_id":     job.ID,
			"attempt_id": attemptID,
		})
		return
	}

	utils.LogEvent("job_failed", map[string]interface{}{
		"job_id":     job.ID,
		"deal_id":    job.DealID,
		"channel":    job.Channel,
		"attempt_id": attemptID,
		"reason":     reason,
	})
}
