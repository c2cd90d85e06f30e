package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"garage-backend/internal/models"
)

func TestProgressBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, Progress(nil))
	assert.True(t, AllComplete(nil))

	tasks := []models.ServiceTask{
		{Description: "oil change", Completed: true},
		{Description: "chain lube", Completed: true},
		{Description: "brake check"},
	}
	assert.InDelta(t, 0.6667, Progress(tasks), 0.00005)
	assert.False(t, AllComplete(tasks))
	assert.Equal(t, 2, CompletedCount(tasks))

	ToggleTask(&tasks[2])
	assert.Equal(t, 1.0, Progress(tasks))
	assert.True(t, AllComplete(tasks))

	ToggleTask(&tasks[0])
	assert.False(t, tasks[0].Completed)
}
