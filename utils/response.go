package utils

import "github.com/gofiber/fiber/v2"

const InternalErrorMessage = "An unexpected error occurred. Please try again later."

// Envelope wraps every JSON response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// PathEnvelope is the 401 body, which also names the rejected path.
type PathEnvelope struct {
	Envelope
	Path string `json:"path"`
}

func Success(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Status: "success", Message: message, Data: data})
}

func Fail(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{Status: "error", Message: message, Data: data})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(PathEnvelope{
		Envelope: Envelope{Status: "error", Message: message},
		Path:     c.Path(),
	})
}
