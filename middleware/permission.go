package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/utils"
)

// RequireRole lets the request through only when the caller holds one of
// roles. It must run after Guard.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		sub, ok := SubjectFrom(c)
		if !ok {
			return utils.Unauthorized(c, msgMissingToken)
		}
		if !allowed[sub.Role] {
			return utils.Fail(c, fiber.StatusForbidden, "Forbidden: insufficient role", nil)
		}
		return c.Next()
	}
}
