package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "dealdrip/controllers"
	"dealdrip/drip"
	"dealdrip/middleware"
	"dealdrip/models"
	"dealdrip/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Shared engine components
	store := drip.NewGormStore(db)
	factory := drip.NewFactory(store, log.New(os.Stdout, "FACTORY: ", log.LstdFlags))
	lifecycle := drip.NewLifecycle(store, log.New(os.Stdout, "LIFECYCLE: ", log.LstdFlags))
	seeder := drip.NewSeeder(store, models.DefaultCatalog(), log.New(os.Stdout, "SEEDER: ", log.LstdFlags))
	calendar := &utils.NoopCalendar{Logger: log.New(os.Stdout, "CALENDAR: ", log.LstdFlags)}

	// Initialize controllers with their respective loggers
	dealController := controller.NewDealController(db, factory, lifecycle, log.New(os.Stdout, "DEAL: ", log.LstdFlags))
	sequenceController := controller.NewSequenceController(db, seeder, log.New(os.Stdout, "SEQUENCE: ", log.LstdFlags))
	appointmentController := controller.NewAppointmentController(db, factory, lifecycle, calendar, log.New(os.Stdout, "APPOINTMENT: ", log.LstdFlags))
	jobController := controller.NewJobController(db, lifecycle, log.New(os.Stdout, "JOB: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Deal routes
	deals := api.Group("/deals")
	deals.Post("/", dealController.CreateDeal)
	deals.Get("/", dealController.GetDeals)
	deals.Get("/:id", dealController.GetDeal)
	deals.Put("/:id/stage", dealController.UpdateDealStage)
	deals.Post("/:id/cancel-jobs", jobController.CancelDealJobs)

	// Sequence routes
	sequences := api.Group("/sequences")
	sequences.Post("/seed", middleware.SeedRateLimiter(), sequenceController.SeedDefaults)
	sequences.Get("/", sequenceController.GetSequences)
	sequences.Get("/:id", sequenceController.GetSequence)
	sequences.Put("/:id", sequenceController.UpdateSequence)
	sequences.Put("/:id/steps/:stepId", sequenceController.UpdateStep)

	// Appointment routes
	appointments := api.Group("/appointments")
	appointments.Post("/", appointmentController.CreateAppointment)
	appointments.Put("/:id", appointmentController.UpdateAppointment)
	appointments.Delete("/:id", appointmentController.DeleteAppointment)

	// Job routes
	jobs := api.Group("/jobs")
	jobs.Get("/", jobController.GetJobs)
	jobs.Get("/:id", jobController.GetJob)
}
