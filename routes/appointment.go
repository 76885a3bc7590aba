package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/controllers"
	"github.com/meinhoongagan/smart-clinic/middleware"
	"github.com/meinhoongagan/smart-clinic/models"
)

func SetupAppointmentRoutes(router fiber.Router, h *controllers.AppointmentController) {
	appointment := router.Group("/appointments", middleware.RequireRole(models.RoleDoctor, models.RolePatient))
	appointment.Post("/", h.Book)
	appointment.Get("/patient/:id", h.ForPatient)
	appointment.Get("/doctor/:id", h.ForDoctor)
	appointment.Put("/:id/status", h.UpdateStatus)
}
