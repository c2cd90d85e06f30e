package audit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-backend/internal/models"
)

type recorder struct{ logs []models.AuditLog }

func (r *recorder) WriteAudit(l *models.AuditLog) error {
	r.logs = append(r.logs, *l)
	return nil
}

func TestWriteLog(t *testing.T) {
	rec := &recorder{}
	err := WriteLog(rec, LogOptions{
		UserID:      3,
		UserName:    "Asha",
		EntityType:  "job_card",
		EntityID:    12,
		Action:      models.AuditActionUpdate,
		Description: "status queue -> service",
		Before:      map[string]string{"status": "queue"},
		After:       map[string]string{"status": "service"},
	})
	require.NoError(t, err)
	require.Len(t, rec.logs, 1)

	l := rec.logs[0]
	assert.Equal(t, "job_card", l.EntityType)
	assert.Equal(t, uint(12), l.EntityID)
	assert.JSONEq(t, `{"status":"queue"}`, l.BeforeData)
	assert.JSONEq(t, `{"status":"service"}`, l.AfterData)
}

func TestWriteLogNilSnapshots(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, WriteLog(rec, LogOptions{EntityType: "part", Action: models.AuditActionCreate}))
	assert.Equal(t, "null", rec.logs[0].BeforeData)
	assert.Equal(t, "null", rec.logs[0].AfterData)
}

func TestWriteLogRejectsUnencodableSnapshot(t *testing.T) {
	rec := &recorder{}
	err := WriteLog(rec, LogOptions{
		EntityType: "part",
		Action:     models.AuditActionUpdate,
		After:      map[string]any{"bad": make(chan int)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after snapshot")
	assert.Empty(t, rec.logs)
}

func TestWriteLogCapsDescription(t *testing.T) {
	rec := &recorder{}
	desc := strings.Repeat("é", 300)
	require.NoError(t, WriteLog(rec, LogOptions{EntityType: "part", Action: models.AuditActionCreate, Description: desc}))
	assert.Equal(t, maxDescription, utf8.RuneCountInString(rec.logs[0].Description))
}
