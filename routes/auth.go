package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/controllers"
)

// SetupAuthRoutes mounts /auth. Register and login are on the guard's public list.
func SetupAuthRoutes(router fiber.Router, h *controllers.AuthController) {
	auth := router.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", h.Me)
}
