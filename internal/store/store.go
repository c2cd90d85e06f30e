// Package store defines the unit of work every operation runs in. An
// implementation must make a whole Atomic call serialisable with respect to
// the rows it locks, and discard every write when fn returns an error.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"garage-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the view of the store inside one unit of work. Methods taking a lock
// flag hold the row until the unit ends when lock is true.
type Tx interface {
	Users
	Customers
	JobCards
	Tasks
	Parts
	Invoices
	AuditLogs
}

type Users interface {
	CreateUser(u *models.User) error
	UserByID(id uint) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	ListUsers(role models.UserRole) ([]models.User, error)
	CountUsers(role models.UserRole) (int64, error)
	SaveUser(u *models.User) error
}

type Customers interface {
	CreateCustomer(c *models.Customer) error
	CreateVehicle(v *models.Vehicle) error
	// VehicleByRegistration matches case-insensitively and loads the owner.
	VehicleByRegistration(reg string) (*models.Vehicle, error)
}

type JobFilter struct {
	Status     models.JobStatus
	MechanicID *uint
}

type JobCards interface {
	// CreateJobCard inserts the card together with its Tasks.
	CreateJobCard(j *models.JobCard) error
	// JobCard loads the card with customer, vehicle, mechanic, tasks,
	// parts used (with part) and invoice.
	JobCard(id uint, lock bool) (*models.JobCard, error)
	// ListJobCards loads customer, vehicle, mechanic and tasks, newest first.
	ListJobCards(f JobFilter) ([]models.JobCard, error)
	UpdateJobStatus(id uint, status models.JobStatus) error
}

type Tasks interface {
	Task(id uint, lock bool) (*models.ServiceTask, error)
	SaveTask(t *models.ServiceTask) error
}

type Parts interface {
	CreatePart(p *models.Part) error
	Part(id uint, lock bool) (*models.Part, error)
	// ListParts orders by name.
	ListParts() ([]models.Part, error)
	SavePart(p *models.Part) error
	DeletePart(id uint) error
	CountPartUsages(partID uint) (int64, error)
	CreatePartUsage(u *models.PartUsage) error
}

// InvoiceFilter bounds created_at; zero values are open ends.
type InvoiceFilter struct {
	From time.Time
	To   time.Time
}

type Invoices interface {
	InvoiceByJob(jobID uint) (*models.Invoice, error)
	CreateInvoice(inv *models.Invoice) error
	// ListInvoices loads JobCard with customer and vehicle, oldest first.
	ListInvoices(f InvoiceFilter) ([]models.Invoice, error)
}

type AuditFilter struct {
	EntityType string
	EntityID   uint
	UserID     uint
}

type AuditLogs interface {
	WriteAudit(l *models.AuditLog) error
	ListAudit(f AuditFilter) ([]models.AuditLog, error)
}
