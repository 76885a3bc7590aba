package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/middleware"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register creates a user and its doctor or patient profile.
func (h *AuthController) Register(c *fiber.Ctx) error {
	var p services.RegisterParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	res, err := h.auth.Register(c.UserContext(), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "User registered successfully", res)
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var p services.LoginParams
	if err := c.BodyParser(&p); err != nil {
		return respondError(c, errBadBody, fiber.StatusBadRequest)
	}
	res, err := h.auth.Login(c.UserContext(), p)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return utils.Success(c, "Login successful", res)
}

// Me returns the caller's identity and profile.
func (h *AuthController) Me(c *fiber.Ctx) error {
	sub, ok := middleware.SubjectFrom(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized: missing or malformed bearer token")
	}
	res, err := h.auth.Profile(c.UserContext(), sub.UserID)
	if err != nil {
		return respondError(c, err, fiber.StatusNotFound)
	}
	return utils.Success(c, "Profile retrieved successfully", res)
}
