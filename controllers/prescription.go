package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

type PrescriptionController struct {
	prescriptions *services.PrescriptionService
}

func NewPrescriptionController(prescriptions *services.PrescriptionService) *PrescriptionController {
	return &PrescriptionController{prescriptions: prescriptions}
}

func (h *PrescriptionController) Create(c *fiber.Ctx) error {
	var p services.PrescriptionParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	rx, err := h.prescriptions.Create(c.UserContext(), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Prescription created successfully", rx)
}

func (h *PrescriptionController) Get(c *fiber.Ctx) error {
	rx, err := h.prescriptions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Prescription retrieved successfully", rx)
}

func (h *PrescriptionController) Update(c *fiber.Ctx) error {
	var p services.PrescriptionParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	rx, err := h.prescriptions.Update(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Prescription updated successfully", rx)
}

func (h *PrescriptionController) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.prescriptions.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Prescription deleted successfully", "Prescription with ID "+id+" has been deleted")
}

func (h *PrescriptionController) ForPatient(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	list, err := h.prescriptions.ForPatient(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Patient prescriptions retrieved successfully", list)
}

func (h *PrescriptionController) ForDoctor(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	list, err := h.prescriptions.ForDoctor(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Doctor prescriptions retrieved successfully", list)
}
