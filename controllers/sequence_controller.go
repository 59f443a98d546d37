package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/models"
	"dealdrip/utils"
)

type SequenceController struct {
	DB     *gorm.DB
	Seeder *drip.Seeder
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, seeder *drip.Seeder, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Seeder: seeder,
		Logger: logger,
	}
}

// SeedDefaults instantiates the built-in sequence catalog for the company
func (sc *SequenceController) SeedDefaults(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	result, err := sc.Seeder.SeedDefaultSequences(c.Context(), companyID)
	if err != nil {
		switch {
		case errors.Is(err, drip.ErrAlreadySeeded):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Company already has sequences", nil)
		case errors.Is(err, drip.ErrInvalidInput):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid seed request", err)
		default:
			utils.ReportError(err, "sequence_seeding", map[string]interface{}{
				"company_id": companyID,
			})
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to seed sequences", err)
		}
	}

	utils.LogEvent("sequences_seeded", map[string]interface{}{
		"company_id": companyID,
		"sequences":  result.Sequences,
		"steps":      result.Steps,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(result))
}

// GetSequences lists the company's sequences, optionally filtered by pipeline
func (sc *SequenceController) GetSequences(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	query := sc.DB.Where("company_id = ?", companyID)
	if pipeline := c.Query("pipeline_id"); pipeline != "" {
		query = query.Where("pipeline_id = ?", pipeline)
	}

	var sequences []models.Sequence
	if err := query.Order("pipeline_id, stage_id").Find(&sequences).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}

	return c.JSON(utils.SuccessResponse(sequences))
}

// GetSequence returns one sequence with its steps in position order
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	sequenceID := utils.ParseUint(c.Params("id"))
	if sequenceID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence ID", nil)
	}

	var sequence models.Sequence
	err := sc.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND company_id = ?", sequenceID, companyID).First(&sequence).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// UpdateSequence applies a partial update to a sequence's name and enabled
// flag. Disabling takes effect for future stage entries only; jobs already
// scheduled are not touched.
func (sc *SequenceController) UpdateSequence(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	sequenceID := utils.ParseUint(c.Params("id"))
	if sequenceID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence ID", nil)
	}

	var input struct {
		Name      *string `json:"name" validate:"omitempty,max=200"`
		IsEnabled *bool   `json:"is_enabled"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var sequence models.Sequence
	if err := sc.DB.Where("id = ? AND company_id = ?", sequenceID, companyID).First(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	if input.Name != nil {
		sequence.Name = *input.Name
	}
	if input.IsEnabled != nil {
		sequence.IsEnabled = *input.IsEnabled
	}

	if err := sc.DB.Save(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update sequence", err)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// UpdateStep edits one step's timing, channel or content. Edits only
// affect jobs created afterwards; scheduled jobs keep their snapshotted
// content and send time.
func (sc *SequenceController) UpdateStep(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	sequenceID := utils.ParseUint(c.Params("id"))
	stepID := utils.ParseUint(c.Params("stepId"))
	if sequenceID == 0 || stepID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sequence or step ID", nil)
	}

	var input struct {
		Position     *int    `json:"position" validate:"omitempty,min=1"`
		DelayType    *string `json:"delay_type" validate:"omitempty,oneof=immediate after"`
		DelayValue   *int    `json:"delay_value" validate:"omitempty,min=0"`
		DelayUnit    *string `json:"delay_unit" validate:"omitempty,oneof=minutes hours days weeks months"`
		Channel      *string `json:"channel" validate:"omitempty,oneof=email sms both"`
		EmailSubject *string `json:"email_subject" validate:"omitempty,max=300"`
		EmailBody    *string `json:"email_body"`
		SMSBody      *string `json:"sms_body" validate:"omitempty,max=1600"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var sequence models.Sequence
	if err := sc.DB.Where("id = ? AND company_id = ?", sequenceID, companyID).First(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	var step models.SequenceStep
	if err := sc.DB.Where("id = ? AND sequence_id = ?", stepID, sequenceID).First(&step).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Step not found", nil)
	}

	if input.Position != nil && *input.Position != step.Position {
		var clash int64
		sc.DB.Model(&models.SequenceStep{}).
			Where("sequence_id = ? AND position = ? AND id <> ?", sequenceID, *input.Position, step.ID).
			Count(&clash)
		if clash > 0 {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Another step already uses that position", nil)
		}
		step.Position = *input.Position
	}

	if input.DelayType != nil {
		step.DelayType = models.DelayType(*input.DelayType)
	}
	if input.DelayValue != nil {
		step.DelayValue = *input.DelayValue
	}
	if input.DelayUnit != nil {
		step.DelayUnit = models.DelayUnit(*input.DelayUnit)
	}
	if input.Channel != nil {
		step.Channel = models.Channel(*input.Channel)
	}
	if input.EmailSubject != nil {
		step.EmailSubject = *input.EmailSubject
	}
	if input.EmailBody != nil {
		step.EmailBody = *input.EmailBody
	}
	if input.SMSBody != nil {
		step.SMSBody = *input.SMSBody
	}

	// Timed steps need a positive delay and a unit; immediate steps carry none
	switch step.DelayType {
	case models.DelayAfter:
		if step.DelayValue < 1 || step.DelayUnit == "" {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Timed steps require a positive delay_value and a delay_unit", nil)
		}
	case models.DelayImmediate:
		step.DelayValue = 0
	}

	if err := sc.DB.Save(&step).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update step", err)
	}

	return c.JSON(utils.SuccessResponse(step))
}
