package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/workshop"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var statusByCode = map[string]int{
	"invalid_transition":     fiber.StatusConflict,
	"tasks_incomplete":       fiber.StatusConflict,
	"insufficient_stock":     fiber.StatusConflict,
	"part_in_use":            fiber.StatusConflict,
	"job_closed":             fiber.StatusConflict,
	"invoice_already_exists": fiber.StatusConflict,
	"admin_exists":           fiber.StatusConflict,
	"part_not_found":         fiber.StatusNotFound,
	"job_not_found":          fiber.StatusNotFound,
	"task_not_found":         fiber.StatusNotFound,
	"invoice_not_found":      fiber.StatusNotFound,
	"vehicle_not_found":      fiber.StatusNotFound,
	"mechanic_not_found":     fiber.StatusNotFound,
	"user_not_found":         fiber.StatusNotFound,
	"invalid_status":         fiber.StatusBadRequest,
	"invalid_quantity":       fiber.StatusBadRequest,
	"negative_input":         fiber.StatusBadRequest,
	"discount_exceeds_total": fiber.StatusBadRequest,
	"invalid_input":          fiber.StatusBadRequest,
	"invalid_credentials":    fiber.StatusUnauthorized,
	"forbidden":              fiber.StatusForbidden,
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "error"
	}
}

// errorHandler renders every failure as {"error", "code"}. Unexpected errors
// are logged and hidden behind a generic message.
func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message, Code: fiberCode(fe.Code)})
		}

		code := workshop.Code(err)
		status, ok := statusByCode[code]
		if !ok {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal server error",
				Code:  workshop.CodeInternal,
			})
		}
		return c.Status(status).JSON(ErrorResponse{Error: err.Error(), Code: code})
	}
}
