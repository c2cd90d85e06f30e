package models

import "time"

// JobStatus is the service stage of a job card.
type JobStatus string

const (
	StatusQueue   JobStatus = "queue"   // in queue
	StatusService JobStatus = "service" // under service
	StatusParts   JobStatus = "parts"   // awaiting spare parts
	StatusQC      JobStatus = "qc"      // quality check
	StatusDone    JobStatus = "done"    // completed
)

// AllStatuses lists the statuses in board order.
var AllStatuses = []JobStatus{StatusQueue, StatusService, StatusParts, StatusQC, StatusDone}

func (s JobStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type JobCard struct {
	ID                 uint `gorm:"primaryKey"`
	CustomerID         uint `gorm:"index;not null"`
	Customer           Customer
	VehicleID          uint `gorm:"index;not null"`
	Vehicle            Vehicle
	Status             JobStatus `gorm:"size:20;not null;default:queue;index"`
	AssignedMechanicID *uint     `gorm:"index"`
	AssignedMechanic   *User
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time

	Tasks     []ServiceTask `gorm:"foreignKey:JobCardID"`
	PartsUsed []PartUsage   `gorm:"foreignKey:JobCardID"`
	Invoice   *Invoice      `gorm:"foreignKey:JobCardID"`
}

// ServiceTask is one checklist item of a job card.
type ServiceTask struct {
	ID          uint   `gorm:"primaryKey"`
	JobCardID   uint   `gorm:"index;not null"`
	Description string `gorm:"size:255;not null"`
	Completed   bool   `gorm:"not null;default:false"`
	Notes       string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
