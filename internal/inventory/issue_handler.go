package inventory

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/auth"
	"garage-backend/internal/service"
	"garage-backend/internal/workshop"
)

type IssuePartRequest struct {
	PartID       uint `json:"part_id"`
	QuantityUsed int  `json:"quantity_used"`
}

type IssuePartResponse struct {
	UsageID          uint         `json:"usage_id"`
	JobCardID        uint         `json:"job_card_id"`
	QuantityUsed     int          `json:"quantity_used"`
	PriceAtTimeOfUse string       `json:"price_at_time_of_use"`
	LineTotal        string       `json:"line_total"`
	CreatedAt        time.Time    `json:"created_at"`
	Part             PartResponse `json:"part"`
}

// POST /api/jobcards/:id/issue-part
func IssuePartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobID, err := c.ParamsInt("id")
		if err != nil || jobID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid job card id")
		}
		var body IssuePartRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.PartID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "part_id is required")
		}

		res, err := svc.IssuePart(c.UserContext(), auth.ActorFrom(c), uint(jobID), body.PartID, body.QuantityUsed)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(IssuePartResponse{
			UsageID:          res.Usage.ID,
			JobCardID:        res.Usage.JobCardID,
			QuantityUsed:     res.Usage.QuantityUsed,
			PriceAtTimeOfUse: res.Usage.PriceAtTimeOfUse.StringFixed(workshop.MoneyPlaces),
			LineTotal:        res.Usage.LineTotal().StringFixed(workshop.MoneyPlaces),
			CreatedAt:        res.Usage.CreatedAt,
			Part:             ToPartResponse(&res.Part),
		})
	}
}
