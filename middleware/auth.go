package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
)

const (
	localToken   = "token"
	localSubject = "subject"

	msgMissingToken = "Unauthorized: missing or malformed bearer token"
	msgInvalidToken = "Unauthorized: invalid or expired token"
)

var publicPaths = map[string]bool{
	"/api/auth/register": true,
	"/api/auth/login":    true,
	"/health":            true,
	"/health/ready":      true,
}

// IsPublicPath reports whether path may be reached without a token.
func IsPublicPath(path string) bool {
	return publicPaths[strings.TrimSuffix(path, "/")] || publicPaths[path]
}

// Guard authenticates every request outside the public allow-list. The
// caller's identity is available to later handlers through SubjectFrom.
func Guard(tokens *services.TokenService) fiber.Handler {
	verify := jwtware.New(jwtware.Config{
		Claims:       &services.Claims{},
		KeyFunc:      tokens.KeyFunc,
		ContextKey:   localToken,
		TokenLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme:   "Bearer",
		ErrorHandler: unauthorized,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(localToken).(*jwt.Token)
			if !ok {
				return utils.Unauthorized(c, msgInvalidToken)
			}
			// jwtware treats exp as optional; Validate does not.
			claims, err := tokens.Validate(token.Raw)
			if err != nil {
				return utils.Unauthorized(c, msgInvalidToken)
			}
			sub, err := tokens.Subject(claims)
			if err != nil {
				return utils.Unauthorized(c, msgInvalidToken)
			}
			c.Locals(localSubject, sub)
			c.Locals("userID", sub.UserID)
			c.Locals("role", sub.Role)
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions || IsPublicPath(c.Path()) {
			return c.Next()
		}
		if !hasBearer(c.Get(fiber.HeaderAuthorization)) {
			return utils.Unauthorized(c, msgMissingToken)
		}
		return verify(c)
	}
}

func unauthorized(c *fiber.Ctx, _ error) error {
	if !hasBearer(c.Get(fiber.HeaderAuthorization)) {
		return utils.Unauthorized(c, msgMissingToken)
	}
	return utils.Unauthorized(c, msgInvalidToken)
}

func hasBearer(header string) bool {
	scheme, token, ok := strings.Cut(header, " ")
	return ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != ""
}

// SubjectFrom returns the caller bound by Guard.
func SubjectFrom(c *fiber.Ctx) (services.Subject, bool) {
	sub, ok := c.Locals(localSubject).(services.Subject)
	return sub, ok
}
