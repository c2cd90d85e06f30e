// Package pgstore implements store.Store on GORM over Postgres. Units of work
// are database transactions and locked reads use SELECT ... FOR UPDATE.
package pgstore

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{db: db})
	})
}

type tx struct {
	db *gorm.DB
}

func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return errors.Wrap(err, msg)
	}
}

// lockRow takes the row lock separately so preload queries stay plain SELECTs.
func (t *tx) lockRow(model any, id uint) error {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(model, "id = ?", id).Error
}

func byID(db *gorm.DB) *gorm.DB { return db.Order("id") }

// Users

func (t *tx) CreateUser(u *models.User) error {
	return translate(t.db.Create(u).Error, "create user")
}

func (t *tx) UserByID(id uint) (*models.User, error) {
	var u models.User
	if err := t.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "load user")
	}
	return &u, nil
}

func (t *tx) UserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := t.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "load user by username")
	}
	return &u, nil
}

func (t *tx) ListUsers(role models.UserRole) ([]models.User, error) {
	q := t.db.Model(&models.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Order("full_name, id").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

func (t *tx) CountUsers(role models.UserRole) (int64, error) {
	var n int64
	err := t.db.Model(&models.User{}).Where("role = ?", role).Count(&n).Error
	return n, translate(err, "count users")
}

func (t *tx) SaveUser(u *models.User) error {
	return translate(t.db.Save(u).Error, "save user")
}

// Customers and vehicles

func (t *tx) CreateCustomer(c *models.Customer) error {
	return translate(t.db.Omit("Vehicles").Create(c).Error, "create customer")
}

func (t *tx) CreateVehicle(v *models.Vehicle) error {
	return translate(t.db.Omit("Customer").Create(v).Error, "create vehicle")
}

func (t *tx) VehicleByRegistration(reg string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := t.db.Preload("Customer").
		Where("LOWER(registration_no) = LOWER(?)", reg).
		First(&v).Error
	if err != nil {
		return nil, translate(err, "find vehicle")
	}
	return &v, nil
}

// Job cards

func (t *tx) CreateJobCard(j *models.JobCard) error {
	err := t.db.Omit("Customer", "Vehicle", "AssignedMechanic", "PartsUsed", "Invoice").Create(j).Error
	return translate(err, "create job card")
}

func (t *tx) JobCard(id uint, lock bool) (*models.JobCard, error) {
	if lock {
		if err := t.lockRow(&models.JobCard{}, id); err != nil {
			return nil, translate(err, "lock job card")
		}
	}
	var j models.JobCard
	err := t.db.
		Preload("Customer").
		Preload("Vehicle").
		Preload("AssignedMechanic").
		Preload("Tasks", byID).
		Preload("PartsUsed", byID).
		Preload("PartsUsed.Part").
		Preload("Invoice").
		First(&j, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "load job card")
	}
	return &j, nil
}

func (t *tx) ListJobCards(f store.JobFilter) ([]models.JobCard, error) {
	q := t.db.
		Preload("Customer").
		Preload("Vehicle").
		Preload("AssignedMechanic").
		Preload("Tasks", byID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MechanicID != nil {
		q = q.Where("assigned_mechanic_id = ?", *f.MechanicID)
	}
	var jobs []models.JobCard
	if err := q.Order("created_at DESC, id DESC").Find(&jobs).Error; err != nil {
		return nil, translate(err, "list job cards")
	}
	return jobs, nil
}

func (t *tx) UpdateJobStatus(id uint, status models.JobStatus) error {
	res := t.db.Model(&models.JobCard{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "update job status")
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Tasks

func (t *tx) Task(id uint, lock bool) (*models.ServiceTask, error) {
	q := t.db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var task models.ServiceTask
	if err := q.First(&task, "id = ?", id).Error; err != nil {
		return nil, translate(err, "load task")
	}
	return &task, nil
}

func (t *tx) SaveTask(task *models.ServiceTask) error {
	res := t.db.Model(&models.ServiceTask{}).Where("id = ?", task.ID).Updates(map[string]any{
		"completed": task.Completed,
		"notes":     task.Notes,
	})
	if res.Error != nil {
		return translate(res.Error, "save task")
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Parts

func (t *tx) CreatePart(p *models.Part) error {
	return translate(t.db.Create(p).Error, "create part")
}

func (t *tx) Part(id uint, lock bool) (*models.Part, error) {
	q := t.db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.Part
	if err := q.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "load part")
	}
	return &p, nil
}

func (t *tx) ListParts() ([]models.Part, error) {
	var parts []models.Part
	if err := t.db.Order("name, id").Find(&parts).Error; err != nil {
		return nil, translate(err, "list parts")
	}
	return parts, nil
}

func (t *tx) SavePart(p *models.Part) error {
	return translate(t.db.Save(p).Error, "save part")
}

func (t *tx) DeletePart(id uint) error {
	res := t.db.Delete(&models.Part{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete part")
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *tx) CountPartUsages(partID uint) (int64, error) {
	var n int64
	err := t.db.Model(&models.PartUsage{}).Where("part_id = ?", partID).Count(&n).Error
	return n, translate(err, "count part usages")
}

func (t *tx) CreatePartUsage(u *models.PartUsage) error {
	return translate(t.db.Omit("Part").Create(u).Error, "create part usage")
}

// Invoices

func (t *tx) InvoiceByJob(jobID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := t.db.Where("job_card_id = ?", jobID).First(&inv).Error; err != nil {
		return nil, translate(err, "load invoice")
	}
	return &inv, nil
}

func (t *tx) CreateInvoice(inv *models.Invoice) error {
	return translate(t.db.Omit("JobCard").Create(inv).Error, "create invoice")
}

func (t *tx) ListInvoices(f store.InvoiceFilter) ([]models.Invoice, error) {
	q := t.db.
		Preload("JobCard").
		Preload("JobCard.Customer").
		Preload("JobCard.Vehicle")
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}
	var invoices []models.Invoice
	if err := q.Order("created_at, id").Find(&invoices).Error; err != nil {
		return nil, translate(err, "list invoices")
	}
	return invoices, nil
}

// Audit

func (t *tx) WriteAudit(l *models.AuditLog) error {
	return translate(t.db.Create(l).Error, "write audit log")
}

func (t *tx) ListAudit(f store.AuditFilter) ([]models.AuditLog, error) {
	q := t.db.Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, translate(err, "list audit logs")
	}
	return logs, nil
}
