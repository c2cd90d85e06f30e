package jobs

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"garage-backend/internal/auth"
	"garage-backend/internal/service"
)

// CreateInvoiceRequest leaves labor_charge and discount to their defaults
// when omitted.
type CreateInvoiceRequest struct {
	LaborCharge *decimal.Decimal `json:"labor_charge"`
	Discount    *decimal.Decimal `json:"discount"`
}

// POST /api/jobcards/:id/create-invoice (admin)
func CreateInvoiceHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "job card")
		if err != nil {
			return err
		}
		var body CreateInvoiceRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}

		inv, err := svc.CreateInvoice(c.UserContext(), auth.ActorFrom(c), id, service.InvoiceInput{
			LaborCharge: body.LaborCharge,
			Discount:    body.Discount,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToInvoiceResponse(inv))
	}
}

// GET /api/jobcards/:id/invoice
func GetInvoiceHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "job card")
		if err != nil {
			return err
		}
		inv, err := svc.Invoice(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToInvoiceResponse(inv))
	}
}
