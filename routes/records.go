package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/controllers"
	"github.com/meinhoongagan/smart-clinic/middleware"
	"github.com/meinhoongagan/smart-clinic/models"
)

var (
	doctorOnly      = middleware.RequireRole(models.RoleDoctor)
	doctorOrPatient = middleware.RequireRole(models.RoleDoctor, models.RolePatient)
)

func SetupPrescriptionRoutes(router fiber.Router, h *controllers.PrescriptionController) {
	rx := router.Group("/prescriptions")
	rx.Post("/", doctorOnly, h.Create)
	rx.Get("/patient/:id", doctorOrPatient, h.ForPatient)
	rx.Get("/doctor/:id", doctorOnly, h.ForDoctor)
	rx.Get("/:id", doctorOrPatient, h.Get)
	rx.Put("/:id", doctorOnly, h.Update)
	rx.Delete("/:id", doctorOnly, h.Delete)
}

func SetupMedicalHistoryRoutes(router fiber.Router, h *controllers.MedicalHistoryController) {
	mh := router.Group("/medical-history")
	mh.Post("/", doctorOnly, h.Add)
	mh.Get("/all", doctorOnly, h.All)
	mh.Get("/patient/:id", doctorOrPatient, h.ForPatient)
	mh.Get("/:id", doctorOrPatient, h.Get)
	mh.Put("/:id/record", doctorOnly, h.AppendRecord)
	mh.Delete("/:id/record/:index", doctorOnly, h.DeleteRecord)
	mh.Delete("/:id", doctorOnly, h.Delete)
}

func SetupFileRoutes(router fiber.Router, h *controllers.FileController) {
	router.Post("/files/upload", doctorOrPatient, h.Upload)
}
