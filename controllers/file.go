package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

type FileController struct {
	files *services.FileService
}

func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

// Upload takes a multipart form with a "file" part and optional patientId,
// doctorId, fileType and description fields.
func (h *FileController) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, services.ValidationFailed(map[string]string{"file": "File is required"}), fiber.StatusBadRequest)
	}
	patientID, err := optionalID(c.FormValue("patientId"), "patientId")
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	doctorID, err := optionalID(c.FormValue("doctorId"), "doctorId")
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := h.files.Upload(c.UserContext(), services.FileUpload{
		Filename:    fh.Filename,
		Content:     f,
		PatientID:   patientID,
		DoctorID:    doctorID,
		FileType:    c.FormValue("fileType"),
		Description: c.FormValue("description"),
	})
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "File uploaded successfully", res)
}

func optionalID(v, field string) (uint, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, services.ValidationFailed(map[string]string{field: "Must be a positive number"})
	}
	return uint(id), nil
}
