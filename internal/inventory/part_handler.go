package inventory

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"garage-backend/internal/auth"
	"garage-backend/internal/models"
	"garage-backend/internal/service"
	"garage-backend/internal/workshop"
)

type PartResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	UnitPrice     string    `json:"unit_price"`
	LowStock      bool      `json:"low_stock"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToPartResponse(p *models.Part) PartResponse {
	return PartResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		UnitPrice:     p.UnitPrice.StringFixed(workshop.MoneyPlaces),
		LowStock:      workshop.IsLowStock(*p),
		UpdatedAt:     p.UpdatedAt,
	}
}

func toPartList(parts []models.Part) []PartResponse {
	res := make([]PartResponse, 0, len(parts))
	for i := range parts {
		res = append(res, ToPartResponse(&parts[i]))
	}
	return res
}

type CreatePartRequest struct {
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	StockQuantity int              `json:"stock_quantity"`
	MinStockLevel int              `json:"min_stock_level"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

// UpdatePartRequest has no stock field; stock moves through restock and
// issuance only.
type UpdatePartRequest struct {
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	MinStockLevel *int             `json:"min_stock_level"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

func partID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid part id")
	}
	return uint(id), nil
}

// GET /api/parts
func ListPartsHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts, err := svc.Parts(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toPartList(parts))
	}
}

// GET /api/parts/low-stock
func LowStockHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts, err := svc.LowStock(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toPartList(parts))
	}
}

// GET /api/parts/:id
func GetPartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := partID(c)
		if err != nil {
			return err
		}
		p, err := svc.Part(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToPartResponse(p))
	}
}

// POST /api/parts (admin)
func CreatePartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.UnitPrice == nil {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price is required")
		}

		p, err := svc.CreatePart(c.UserContext(), auth.ActorFrom(c), service.PartInput{
			Name:          body.Name,
			Category:      body.Category,
			StockQuantity: body.StockQuantity,
			MinStockLevel: body.MinStockLevel,
			UnitPrice:     *body.UnitPrice,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToPartResponse(p))
	}
}

// PUT/PATCH /api/parts/:id (admin)
func UpdatePartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := partID(c)
		if err != nil {
			return err
		}
		var body UpdatePartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		p, err := svc.UpdatePart(c.UserContext(), auth.ActorFrom(c), id, service.PartUpdate{
			Name:          body.Name,
			Category:      body.Category,
			MinStockLevel: body.MinStockLevel,
			UnitPrice:     body.UnitPrice,
		})
		if err != nil {
			return err
		}
		return c.JSON(ToPartResponse(p))
	}
}

// DELETE /api/parts/:id (admin)
func DeletePartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := partID(c)
		if err != nil {
			return err
		}
		if err := svc.DeletePart(c.UserContext(), auth.ActorFrom(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/parts/:id/restock (admin)
func RestockHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := partID(c)
		if err != nil {
			return err
		}
		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		p, err := svc.Restock(c.UserContext(), auth.ActorFrom(c), id, body.Quantity)
		if err != nil {
			return err
		}
		return c.JSON(ToPartResponse(p))
	}
}
