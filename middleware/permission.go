package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// RequireRole lets the request through when the session holds one of roles.
// It must run after Protected.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return utils.Fail(c, utils.Unauthorized("Authentication required"))
		}
		for _, role := range roles {
			if sess.Role == role {
				return c.Next()
			}
		}
		return utils.Fail(c, utils.Forbidden("You don't have the required role to perform this action"))
	}
}
