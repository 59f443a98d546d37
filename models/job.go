package models

import (
	"time"

	"gorm.io/gorm"
)

// JobStatus is the delivery state of a job.
//
// pending -> processing -> sent | failed
// pending -> cancelled
//
// processing is an exclusive claim held by one dispatcher; sent, failed
// and cancelled are terminal. Failed jobs are never retried in place; a
// retry is a new job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusSent       JobStatus = "sent"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobType distinguishes drip-step messages from appointment reminders
type JobType string

const (
	JobTypeDripStep            JobType = "drip_step"
	JobTypeAppointmentReminder JobType = "appointment_reminder"
)

// Channel selects the delivery channel(s) for a message
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelBoth  Channel = "both"
	ChannelNone  Channel = "none"
)

// Job is a concrete, time-stamped unit of scheduled delivery. Content is
// snapshotted at creation time so later template edits never alter
// already-scheduled jobs; a job keeps no reference to its originating step.
type Job struct {
	gorm.Model
	CompanyID     uint  `gorm:"not null;index" json:"company_id"`
	DealID        uint  `gorm:"not null;index" json:"deal_id"`
	AppointmentID *uint `gorm:"index" json:"appointment_id,omitempty"`

	JobType JobType   `gorm:"not null" json:"job_type"`
	Channel Channel   `gorm:"not null" json:"channel"`
	SendAt  time.Time `gorm:"not null;index" json:"send_at"`
	Status  JobStatus `gorm:"not null;default:'pending';index" json:"status"`

	MessageSubject string `json:"message_subject"`
	MessageBody    string `json:"message_body"`
	SMSBody        string `json:"sms_body"`

	LastError string     `json:"last_error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
