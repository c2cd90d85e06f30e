package workshop

import "garage-backend/internal/models"

// forward holds the regular stage progression. Moves into done from any
// other open stage are the administrative override, see IsOverride.
var forward = map[models.JobStatus][]models.JobStatus{
	models.StatusQueue:   {models.StatusService},
	models.StatusService: {models.StatusParts, models.StatusQC},
	models.StatusParts:   {models.StatusQC},
	models.StatusQC:      {models.StatusDone},
}

// ParseStatus validates a status key coming from a request.
func ParseStatus(s string) (models.JobStatus, error) {
	st := models.JobStatus(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to models.JobStatus) bool {
	if !from.Valid() || !to.Valid() || from == models.StatusDone {
		return false
	}
	if to == models.StatusDone {
		return true
	}
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOverride reports whether the move skips quality check on its way to done.
func IsOverride(from, to models.JobStatus) bool {
	return to == models.StatusDone && from != models.StatusQC && CanTransition(from, to)
}

// Transition validates the move and applies it to job.
func Transition(job *models.JobCard, to models.JobStatus) error {
	if !CanTransition(job.Status, to) {
		return &TransitionError{From: job.Status, To: to}
	}
	job.Status = to
	return nil
}

// NextStatuses lists the targets reachable from s, override included.
func NextStatuses(s models.JobStatus) []models.JobStatus {
	var out []models.JobStatus
	for _, to := range models.AllStatuses {
		if CanTransition(s, to) {
			out = append(out, to)
		}
	}
	return out
}
