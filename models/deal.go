package models

import "gorm.io/gorm"

// PipelineID identifies one of the two built-in pipelines
type PipelineID string

const (
	PipelineSales PipelineID = "sales"
	PipelineJobs  PipelineID = "jobs"
)

// Deal represents a customer deal moving through a pipeline
type Deal struct {
	gorm.Model
	CompanyID uint `gorm:"not null;index" json:"company_id"`

	Name       string     `gorm:"not null" json:"name"`
	PipelineID PipelineID `gorm:"not null;index" json:"pipeline_id"`
	StageID    string     `gorm:"not null;index" json:"stage_id"`

	// Contact details used when delivering outbound messages
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}
