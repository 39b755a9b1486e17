package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medops-hub/workorder-service/internal/domain"
	"github.com/medops-hub/workorder-service/pkg/util"
)

// RequireActor ensures the request passed through AuthMiddleware.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return util.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the actor holds at least one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	set := domain.NewRoleSet(allowed...)
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		if len(allowed) > 0 && !actor.Roles.HasAny(set.Roles()...) {
			return util.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
