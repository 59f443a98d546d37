package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/models"
	"dealdrip/utils"
)

type AppointmentController struct {
	DB        *gorm.DB
	Factory   *drip.Factory
	Lifecycle *drip.Lifecycle
	Calendar  utils.CalendarClient
	Logger    *log.Logger
}

func NewAppointmentController(db *gorm.DB, factory *drip.Factory, lifecycle *drip.Lifecycle, calendar utils.CalendarClient, logger *log.Logger) *AppointmentController {
	return &AppointmentController{
		DB:        db,
		Factory:   factory,
		Lifecycle: lifecycle,
		Calendar:  calendar,
		Logger:    logger,
	}
}

// reminderPayload is the best-effort reminder outcome attached to
// appointment responses. The appointment mutation itself never fails
// because of it.
type reminderPayload struct {
	JobID   uint   `json:"job_id,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toReminderPayload(res drip.ReminderResult) reminderPayload {
	payload := reminderPayload{JobID: res.JobID, Skipped: res.Skipped}
	if res.Err != nil {
		payload.Error = res.Err.Error()
	}
	return payload
}

// CreateAppointment creates an appointment and schedules its reminder
func (ac *AppointmentController) CreateAppointment(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)

	var input struct {
		DealID            uint       `json:"deal_id" validate:"required"`
		Title             string     `json:"title" validate:"required,max=200"`
		Location          string     `json:"location" validate:"omitempty,max=300"`
		StartsAt          time.Time  `json:"starts_at" validate:"required"`
		EndsAt            *time.Time `json:"ends_at"`
		ReminderChannel   string     `json:"reminder_channel" validate:"omitempty,oneof=email sms both none"`
		ReminderLeadHours int        `json:"reminder_lead_hours" validate:"omitempty,min=1,max=168"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var deal models.Deal
	if err := ac.DB.Where("id = ? AND company_id = ?", input.DealID, companyID).First(&deal).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", nil)
	}

	appointment := models.Appointment{
		CompanyID: companyID,
		DealID:    deal.ID,
		Title:     input.Title,
		Location:  input.Location,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
	}

	if err := ac.DB.Create(&appointment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create appointment", err)
	}

	response := fiber.Map{
		"success": true,
		"data":    appointment,
	}

	if input.ReminderChannel != "none" {
		channel := models.Channel(input.ReminderChannel)
		if channel == "" {
			channel = models.ChannelEmail
		}
		lead := time.Duration(input.ReminderLeadHours) * time.Hour

		result := ac.Factory.ScheduleReminder(c.Context(), &deal, &appointment, channel, lead)
		if result.Err != nil {
			ac.Logger.Printf("Reminder scheduling failed for appointment %d: %v", appointment.ID, result.Err)
		}
		response["reminder"] = toReminderPayload(result)
	}

	utils.LogEvent("appointment_created", map[string]interface{}{
		"company_id":     companyID,
		"deal_id":        deal.ID,
		"appointment_id": appointment.ID,
		"starts_at":      appointment.StartsAt,
	})

	return c.Status(fiber.StatusCreated).JSON(response)
}

// UpdateAppointment reschedules an appointment. Any pending reminder is
// cancelled and a fresh one scheduled against the new start time.
func (ac *AppointmentController) UpdateAppointment(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	appointmentID := utils.ParseUint(c.Params("id"))
	if appointmentID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment ID", nil)
	}

	var input struct {
		Title             *string    `json:"title" validate:"omitempty,max=200"`
		Location          *string    `json:"location" validate:"omitempty,max=300"`
		StartsAt          *time.Time `json:"starts_at"`
		EndsAt            *time.Time `json:"ends_at"`
		ReminderChannel   string     `json:"reminder_channel" validate:"omitempty,oneof=email sms both none"`
		ReminderLeadHours int        `json:"reminder_lead_hours" validate:"omitempty,min=1,max=168"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var appointment models.Appointment
	if err := ac.DB.Where("id = ? AND company_id = ?", appointmentID, companyID).First(&appointment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", nil)
	}

	if input.Title != nil {
		appointment.Title = *input.Title
	}
	if input.Location != nil {
		appointment.Location = *input.Location
	}
	if input.StartsAt != nil {
		appointment.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		appointment.EndsAt = input.EndsAt
	}

	if err := ac.DB.Save(&appointment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update appointment", err)
	}

	response := fiber.Map{
		"success": true,
		"data":    appointment,
	}

	// Reminder follows the appointment: drop the pending one, then
	// schedule against the current start time unless opted out
	cancelled, err := ac.Lifecycle.CancelPending(c.Context(),
		drip.CancelFilter{AppointmentID: appointment.ID},
		"appointment rescheduled")
	if err != nil {
		ac.Logger.Printf("Reminder cancellation failed for appointment %d: %v", appointment.ID, err)
		response["reminder"] = reminderPayload{Error: err.Error()}
		return c.JSON(response)
	}
	response["reminders_cancelled"] = cancelled

	if input.ReminderChannel != "none" {
		var deal models.Deal
		if err := ac.DB.First(&deal, appointment.DealID).Error; err != nil {
			ac.Logger.Printf("Deal lookup failed for appointment %d: %v", appointment.ID, err)
			response["reminder"] = reminderPayload{Error: err.Error()}
			return c.JSON(response)
		}

		channel := models.Channel(input.ReminderChannel)
		if channel == "" {
			channel = models.ChannelEmail
		}
		lead := time.Duration(input.ReminderLeadHours) * time.Hour

		result := ac.Factory.ScheduleReminder(c.Context(), &deal, &appointment, channel, lead)
		if result.Err != nil {
			ac.Logger.Printf("Reminder scheduling failed for appointment %d: %v", appointment.ID, result.Err)
		}
		response["reminder"] = toReminderPayload(result)
	}

	return c.JSON(response)
}

// DeleteAppointment removes an appointment, cancelling its pending
// reminder and the synced calendar event when one exists
func (ac *AppointmentController) DeleteAppointment(c *fiber.Ctx) error {
	companyID := middleware.CompanyID(c)
	appointmentID := utils.ParseUint(c.Params("id"))
	if appointmentID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment ID", nil)
	}

	var appointment models.Appointment
	if err := ac.DB.Where("id = ? AND company_id = ?", appointmentID, companyID).First(&appointment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", nil)
	}

	cancelled, err := ac.Lifecycle.CancelPending(c.Context(),
		drip.CancelFilter{AppointmentID: appointment.ID},
		"appointment cancelled")
	if err != nil {
		ac.Logger.Printf("Reminder cancellation failed for appointment %d: %v", appointment.ID, err)
		utils.ReportError(err, "reminder_cancellation", map[string]interface{}{
			"appointment_id": appointment.ID,
		})
	}

	if appointment.GoogleEventID != "" {
		if err := ac.Calendar.DeleteEvent(c.Context(), appointment.GoogleEventID); err != nil {
			// Calendar sync is best-effort; the appointment still goes away
			ac.Logger.Printf("Calendar event deletion failed for appointment %d: %v", appointment.ID, err)
		}
	}

	if err := ac.DB.Delete(&appointment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete appointment", err)
	}

	utils.LogEvent("appointment_deleted", map[string]interface{}{
		"company_id":          companyID,
		"appointment_id":      appointment.ID,
		"reminders_cancelled": cancelled,
	})

	return c.JSON(fiber.Map{
		"success":             true,
		"reminders_cancelled": cancelled,
	})
}
