package middleware

import (
	"log"
	"strings"

	"booknet/internal/config"
	"booknet/internal/core/domain"
	"booknet/internal/pkg/jwt"
	"booknet/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// AuthMiddleware resolves the bearer token into an authenticated identity.
// The rejection reason (malformed, bad signature, expired) is logged but
// never returned to the client.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := jwt.Validate(accessToken, cfg.Token.Secret)
		if err != nil {
			log.Printf("Token rejected from %s: %v", c.IP(), err)
			return response.Unauthorized(c, "Authentication required")
		}

		c.Locals(identityKey, domain.Identity{
			UserID:   claims.UserID,
			Email:    claims.Email,
			FullName: claims.FullName,
			Roles:    claims.Roles,
		})

		return c.Next()
	}
}

// IdentityFromCtx returns the identity set by AuthMiddleware
func IdentityFromCtx(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, role := range allowedRoles {
			if identity.HasRole(role) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}
