package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

type MedicalHistoryController struct {
	histories *services.MedicalHistoryService
}

func NewMedicalHistoryController(histories *services.MedicalHistoryService) *MedicalHistoryController {
	return &MedicalHistoryController{histories: histories}
}

// Add appends a record to the patient's history, creating it if needed.
func (h *MedicalHistoryController) Add(c *fiber.Ctx) error {
	var p services.MedicalHistoryParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	mh, err := h.histories.Add(c.UserContext(), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Medical record added successfully", mh)
}

func (h *MedicalHistoryController) Get(c *fiber.Ctx) error {
	mh, err := h.histories.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Medical history retrieved successfully", mh)
}

func (h *MedicalHistoryController) AppendRecord(c *fiber.Ctx) error {
	var p services.MedicalHistoryParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	mh, err := h.histories.AppendRecord(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Medical record updated successfully", mh)
}

func (h *MedicalHistoryController) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.histories.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Medical history deleted successfully", "Medical history with ID "+id+" has been deleted")
}

func (h *MedicalHistoryController) DeleteRecord(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return respondError(c, services.NotFound("Invalid record index"), fiber.StatusNotFound)
	}
	mh, err := h.histories.DeleteRecord(c.UserContext(), c.Params("id"), index)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Medical record deleted successfully", mh)
}

// ForPatient answers with null data when the patient has no history yet.
func (h *MedicalHistoryController) ForPatient(c *fiber.Ctx) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	mh, err := h.histories.ForPatient(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	if mh == nil {
		return utils.Success(c, "No medical history found for patient", nil)
	}
	return utils.Success(c, "Medical history retrieved successfully", mh)
}

func (h *MedicalHistoryController) All(c *fiber.Ctx) error {
	list, err := h.histories.All(c.UserContext())
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "All medical histories retrieved successfully", list)
}
