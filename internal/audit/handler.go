package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
)

type Lister interface {
	AuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error)
}

type LogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Before      json.RawMessage    `json:"before"`
	After       json.RawMessage    `json:"after"`
}

func rawJSON(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// GET /api/audit-logs?entity_type=&entity_id=&user_id= (admin)
func ListHandler(l Lister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := store.AuditFilter{EntityType: c.Query("entity_type")}
		if v := c.QueryInt("entity_id"); v > 0 {
			f.EntityID = uint(v)
		}
		if v := c.QueryInt("user_id"); v > 0 {
			f.UserID = uint(v)
		}

		logs, err := l.AuditLogs(c.UserContext(), f)
		if err != nil {
			return err
		}
		res := make([]LogResponse, 0, len(logs))
		for _, log := range logs {
			res = append(res, LogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt,
				UserID:      log.UserID,
				UserName:    log.UserName,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				Before:      rawJSON(log.BeforeData),
				After:       rawJSON(log.AfterData),
			})
		}
		return c.JSON(res)
	}
}
