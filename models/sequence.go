package models

import "gorm.io/gorm"

// DelayType describes how a step's send time relates to its anchor
type DelayType string

const (
	DelayImmediate DelayType = "immediate"
	DelayAfter     DelayType = "after"
)

// DelayUnit is the unit a step's delay value is expressed in
type DelayUnit string

const (
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
	UnitDays    DelayUnit = "days"
	UnitWeeks   DelayUnit = "weeks"
	UnitMonths  DelayUnit = "months"
)

// Sequence is a company's drip campaign for one pipeline stage. When
// IsEnabled is false, deals entering the stage produce no jobs.
//
// The unique index backs the one-sequence-per-stage rule: concurrent
// seed attempts race past the count check, but only one insert commits.
type Sequence struct {
	gorm.Model
	CompanyID  uint       `gorm:"not null;uniqueIndex:idx_sequences_company_stage" json:"company_id"`
	PipelineID PipelineID `gorm:"not null;uniqueIndex:idx_sequences_company_stage" json:"pipeline_id"`
	StageID    string     `gorm:"not null;uniqueIndex:idx_sequences_company_stage" json:"stage_id"`

	Name      string `gorm:"not null" json:"name"`
	IsEnabled bool   `gorm:"default:true" json:"is_enabled"`

	// Relations
	Steps []SequenceStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// SequenceStep is one timed message within a sequence. Positions are
// 1-based and define send order; they stay unique within a sequence but
// need not be contiguous after reordering.
type SequenceStep struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	Position   int       `gorm:"not null" json:"position"`
	DelayType  DelayType `gorm:"not null" json:"delay_type"` // immediate, after
	DelayValue int       `gorm:"not null;default:0" json:"delay_value"`
	DelayUnit  DelayUnit `json:"delay_unit"` // minutes, hours, days, weeks, months
	Channel    Channel   `gorm:"not null" json:"channel"`

	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
	SMSBody      string `json:"sms_body"`
}
