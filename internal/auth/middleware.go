package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/models"
	"garage-backend/internal/service"
)

const ctxSessionKey = "session"

// Session is the caller identity established by JWTMiddleware. It is
// passed to services explicitly as a service.Actor.
type Session struct {
	UserID   uint
	Username string
	Role     models.UserRole
}

func (s Session) Actor() service.Actor {
	return service.Actor{UserID: s.UserID, Username: s.Username, Role: s.Role}
}

// SessionFrom returns the session of an authenticated request.
func SessionFrom(c *fiber.Ctx) (Session, bool) {
	s, ok := c.Locals(ctxSessionKey).(Session)
	return s, ok
}

// ActorFrom is SessionFrom for handlers behind JWTMiddleware.
func ActorFrom(c *fiber.Ctx) service.Actor {
	s, _ := SessionFrom(c)
	return s.Actor()
}

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(ctxSessionKey, Session{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := SessionFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "no session role")
		}
		for _, r := range allowedRoles {
			if r == s.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed for this role")
	}
}
