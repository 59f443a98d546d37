package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/models"
	"dealdrip/utils"
)

type JobController struct {
	DB        *gorm.DB
	Lifecycle *drip.Lifecycle
	Logger    *log.Logger
}

func NewJobController(db *gorm.DB, lifecycle *drip.Lifecycle, logger *log.Logger) *JobController {
	return &JobController{
		DB:        db,
		Lifecycle: lifecycle,
		Logger:    logger,
	}
}

// GetJobs lists scheduled jobs for the company, filterable by deal and status
func (jc *JobController) GetJobs(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit > 100 {
		limit = 100
	}

	query := jc.DB.Where("company_id = ?", companyID)
	if dealID := utils.ParseUint(c.Query("deal_id")); dealID != 0 {
		query = query.Where("deal_id = ?", dealID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if jobType := c.Query("job_type"); jobType != "" {
		query = query.Where("job_type = ?", jobType)
	}

	var total int64
	query.Model(&models.Job{}).Count(&total)

	var jobs []models.Job
	if err := query.Order("send_at ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch jobs", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    jobs,
		"meta": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetJob returns a single job
func (jc *JobController) GetJob(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	jobID := utils.ParseUint(c.Params("id"))
	if jobID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job ID", nil)
	}

	var job models.Job
	if err := jc.DB.Where("id = ? AND company_id = ?", jobID, companyID).First(&job).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Job not found", nil)
	}

	return c.JSON(utils.SuccessResponse(job))
}

// CancelDealJobs cancels every pending job on a deal
func (jc *JobController) CancelDealJobs(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	dealID := utils.ParseUint(c.Params("id"))
	if dealID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid deal ID", nil)
	}

	var input struct {
		Reason string `json:"reason" validate:"omitempty,max=300"`
	}
	// Body is optional here
	_ = c.BodyParser(&input)
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Reason == "" {
		input.Reason = "cancelled by user"
	}

	var deal models.Deal
	if err := jc.DB.Where("id = ? AND company_id = ?", dealID, companyID).First(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", nil)
	}

	cancelled, err := jc.Lifecycle.CancelPending(c.Context(), drip.CancelFilter{DealID: deal.ID}, input.Reason)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel jobs", err)
	}

	utils.LogEvent("deal_jobs_cancelled", map[string]interface{}{
		"company_id": companyID,
		"deal_id":    deal.ID,
		"cancelled":  cancelled,
		"reason":     input.Reason,
	})

	return c.JSON(fiber.Map{
		"success":   true,
		"cancelled": cancelled,
	})
}
