package controller

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/models"
	"dealdrip/utils"
)

type DealController struct {
	DB        *gorm.DB
	Factory   *drip.Factory
	Lifecycle *drip.Lifecycle
	Logger    *log.Logger
}

func NewDealController(db *gorm.DB, factory *drip.Factory, lifecycle *drip.Lifecycle, logger *log.Logger) *DealController {
	return &DealController{
		DB:        db,
		Factory:   factory,
		Lifecycle: lifecycle,
		Logger:    logger,
	}
}

// CreateDeal creates a deal and schedules the drip jobs for its initial stage
func (dc *DealController) CreateDeal(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	var input struct {
		Name         string `json:"name" validate:"required,max=200"`
		PipelineID   string `json:"pipeline_id" validate:"required,oneof=sales jobs"`
		StageID      string `json:"stage_id" validate:"required,max=100"`
		ContactName  string `json:"contact_name" validate:"omitempty,max=200"`
		ContactEmail string `json:"contact_email" validate:"omitempty,email"`
		ContactPhone string `json:"contact_phone" validate:"omitempty,e164"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	deal := models.Deal{
		CompanyID:    companyID,
		Name:         input.Name,
		PipelineID:   models.PipelineID(input.PipelineID),
		StageID:      input.StageID,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	}

	if err := dc.DB.Create(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create deal", err)
	}

	jobs, err := dc.Factory.ScheduleStageJobs(c.Context(), &deal, time.Now())
	if err != nil {
		// The deal exists; scheduling failure is surfaced but not fatal
		dc.Logger.Printf("Failed to schedule stage jobs for new deal %d: %v", deal.ID, err)
		utils.ReportError(err, "stage_scheduling", map[string]interface{}{
			"deal_id":  deal.ID,
			"stage_id": deal.StageID,
		})
	}

	utils.LogEvent("deal_created", map[string]interface{}{
		"company_id":     companyID,
		"deal_id":        deal.ID,
		"pipeline_id":    deal.PipelineID,
		"stage_id":       deal.StageID,
		"jobs_scheduled": len(jobs),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"data":           deal,
		"jobs_scheduled": len(jobs),
	})
}

// UpdateDealStage moves a deal to a new stage: pending jobs from the old
// stage are cancelled, then the new stage's sequence is materialized
func (dc *DealController) UpdateDealStage(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	dealID := utils.ParseUint(c.Params("id"))
	if dealID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deal ID", nil)
	}

	var input struct {
		PipelineID string `json:"pipeline_id" validate:"omitempty,oneof=sales jobs"`
		StageID    string `json:"stage_id" validate:"required,max=100"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var deal models.Deal
	if err := dc.DB.Where("id = ? AND company_id = ?", dealID, companyID).First(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", nil)
	}

	if input.StageID == deal.StageID && (input.PipelineID == "" || models.PipelineID(input.PipelineID) == deal.PipelineID) {
		return c.JSON(utils.SuccessResponse(deal))
	}

	// Only drip jobs belong to the outgoing stage; appointment reminders
	// survive the move
	cancelled, err := dc.Lifecycle.CancelPending(c.Context(),
		drip.CancelFilter{DealID: deal.ID, JobType: models.JobTypeDripStep},
		fmt.Sprintf("deal moved to stage %s", input.StageID))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel scheduled jobs", err)
	}

	if input.PipelineID != "" {
		deal.PipelineID = models.PipelineID(input.PipelineID)
	}
	deal.StageID = input.StageID

	if err := dc.DB.Save(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update deal", err)
	}

	jobs, err := dc.Factory.ScheduleStageJobs(c.Context(), &deal, time.Now())
	if err != nil {
		dc.Logger.Printf("Failed to schedule stage jobs for deal %d: %v", deal.ID, err)
		utils.ReportError(err, "stage_scheduling", map[string]interface{}{
			"deal_id":  deal.ID,
			"stage_id": deal.StageID,
		})
	}

	utils.LogEvent("deal_stage_changed", map[string]interface{}{
		"company_id":     companyID,
		"deal_id":        deal.ID,
		"stage_id":       deal.StageID,
		"jobs_cancelled": cancelled,
		"jobs_scheduled": len(jobs),
	})

	return c.JSON(fiber.Map{
		"success":        true,
		"data":           deal,
		"jobs_cancelled": cancelled,
		"jobs_scheduled": len(jobs),
	})
}

// GetDeal returns a single deal
func (dc *DealController) GetDeal(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	dealID := utils.ParseUint(c.Params("id"))
	if dealID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deal ID", nil)
	}

	var deal models.Deal
	if err := dc.DB.Where("id = ? AND company_id = ?", dealID, companyID).First(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", nil)
	}

	return c.JSON(utils.SuccessResponse(deal))
}

// GetDeals returns a paginated list of deals with optional filters
func (dc *DealController) GetDeals(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit > 100 {
		limit = 100
	}

	query := dc.DB.Where("company_id = ?", companyID)
	if pipeline := c.Query("pipeline_id"); pipeline != "" {
		query = query.Where("pipeline_id = ?", pipeline)
	}
	if stage := c.Query("stage_id"); stage != "" {
		query = query.Where("stage_id = ?", stage)
	}

	var total int64
	query.Model(&models.Deal{}).Count(&total)

	var deals []models.Deal
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&deals).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch deals", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    deals,
		"meta": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
