package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment represents a scheduled meeting or site visit on a deal
type Appointment struct {
	gorm.Model
	CompanyID uint `gorm:"not null;index" json:"company_id"`
	DealID    uint `gorm:"not null;index" json:"deal_id"`

	Title    string     `gorm:"not null" json:"title"`
	Location string     `json:"location"`
	StartsAt time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	// GoogleEventID links the appointment to a synced calendar event;
	// empty when the appointment was never synced
	GoogleEventID string `json:"google_event_id,omitempty"`
}
