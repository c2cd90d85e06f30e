package workshop

import "garage-backend/internal/models"

// Progress is the completed share of tasks in [0,1]; zero tasks give 0.
func Progress(tasks []models.ServiceTask) float64 {
	if len(tasks) == 0 {
		return 0
	}
	return float64(CompletedCount(tasks)) / float64(len(tasks))
}

// CompletedCount is the number of finished tasks.
func CompletedCount(tasks []models.ServiceTask) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// AllComplete is true when no task is open, vacuously so for an empty list.
func AllComplete(tasks []models.ServiceTask) bool {
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// ToggleTask flips the completed flag.
func ToggleTask(t *models.ServiceTask) {
	t.Completed = !t.Completed
}
