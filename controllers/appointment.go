package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

type AppointmentController struct {
	appointments *services.AppointmentService
	loc          *time.Location
}

// NewAppointmentController reads offset-less dates in loc.
func NewAppointmentController(appointments *services.AppointmentService, loc *time.Location) *AppointmentController {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentController{appointments: appointments, loc: loc}
}

type bookRequest struct {
	PatientID uint   `json:"patientId" validate:"required"`
	DoctorID  uint   `json:"doctorId" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

func (h *AppointmentController) Book(c *fiber.Ctx) error {
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	if err := services.Validate(&req); err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	at, err := utils.ParseDateTime(req.Date, h.loc)
	if err != nil {
		return respondError(c, services.ValidationFailed(map[string]string{
			"date": "Appointment date must be an ISO-8601 date-time",
		}), fiber.StatusBadRequest)
	}
	appt, err := h.appointments.Book(c.UserContext(), req.PatientID, req.DoctorID, at)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Appointment booked successfully", appt)
}

func (h *AppointmentController) ForPatient(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	list, err := h.appointments.ForPatient(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Patient appointments retrieved successfully", list)
}

func (h *AppointmentController) ForDoctor(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	list, err := h.appointments.ForDoctor(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Doctor appointments retrieved successfully", list)
}

// UpdateStatus handles PUT /:id/status?status=X.
func (h *AppointmentController) UpdateStatus(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	appt, err := h.appointments.UpdateStatus(c.UserContext(), id, c.Query("status"))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Appointment status updated successfully", appt)
}
