package audit

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/pkg/errors"

	"garage-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Writer is satisfied by a store transaction, so the log entry commits or
// rolls back with the change it describes.
type Writer interface {
	WriteAudit(l *models.AuditLog) error
}

// maxDescription is the width of audit_logs.description.
const maxDescription = 255

// toJSON writes nil as the JSON null literal; jsonb rejects an empty string.
func toJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func WriteLog(w Writer, opts LogOptions) error {
	before, err := toJSON(opts.Before)
	if err != nil {
		return errors.Wrap(err, "encode audit before snapshot")
	}
	after, err := toJSON(opts.After)
	if err != nil {
		return errors.Wrap(err, "encode audit after snapshot")
	}
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, maxDescription),
		BeforeData:  before,
		AfterData:   after,
	}
	if err := w.WriteAudit(&entry); err != nil {
		return errors.Wrap(err, "write audit log")
	}
	return nil
}
