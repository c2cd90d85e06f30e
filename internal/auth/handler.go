package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/models"
	"garage-backend/internal/service"
)

type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Pin      string `json:"pin"`
	Role     string `json:"role"`
}

func (r RegisterRequest) newUser() service.NewUser {
	return service.NewUser{
		Username: r.Username,
		FullName: r.FullName,
		Email:    r.Email,
		Phone:    r.Phone,
		Pin:      r.Pin,
		Role:     models.UserRole(r.Role),
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

type ChangePinRequest struct {
	CurrentPin string `json:"current_pin"`
	NewPin     string `json:"new_pin"`
}

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterAdminHandler bootstraps the first admin; it fails once one exists.
func RegisterAdminHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		user, err := svc.RegisterFirstAdmin(c.UserContext(), body.newUser())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToUserResponse(user))
	}
}

func CreateUserHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Role == "" {
			body.Role = string(models.RoleMechanic)
		}
		user, err := svc.CreateUser(c.UserContext(), ActorFrom(c), body.newUser())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToUserResponse(user))
	}
}

func LoginHandler(svc *service.Service, secret string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := svc.Authenticate(c.UserContext(), body.Username, body.Pin)
		if err != nil {
			return err
		}

		token, err := GenerateToken(secret, ttl, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  ToUserResponse(user),
		})
	}
}

func MeHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, _ := SessionFrom(c)
		user, err := svc.User(c.UserContext(), s.UserID)
		if err != nil {
			return err
		}
		return c.JSON(ToUserResponse(user))
	}
}

func ChangePinHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangePinRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := svc.ChangePin(c.UserContext(), ActorFrom(c), body.CurrentPin, body.NewPin); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type MechanicResponse struct {
	UserResponse
	PendingJobs int `json:"pending_jobs"`
}

func MechanicsHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.Mechanics(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]MechanicResponse, 0, len(list))
		for i := range list {
			resp = append(resp, MechanicResponse{
				UserResponse: ToUserResponse(&list[i].User),
				PendingJobs:  list[i].PendingJobs,
			})
		}
		return c.JSON(resp)
	}
}
