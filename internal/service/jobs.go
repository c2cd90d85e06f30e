package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

type NewCustomer struct {
	Name  string
	Phone string
	Email string
}

type NewVehicle struct {
	RegistrationNo string
	Make           string
	Model          string
	VehicleType    models.VehicleType
}

// NewJobCard is an intake request. Customer and vehicle details are only
// read when the registration number is not on file yet.
type NewJobCard struct {
	Customer   NewCustomer
	Vehicle    NewVehicle
	MechanicID *uint
	Tasks      []string
}

func normalizeRegistration(reg string) string {
	return strings.ToUpper(strings.Join(strings.Fields(reg), ""))
}

func (s *Service) CreateJobCard(ctx context.Context, actor Actor, in NewJobCard) (*models.JobCard, error) {
	const op = "create_job_card"
	if !actor.IsAdmin() {
		return nil, s.fail(op, workshop.ErrForbidden)
	}
	reg := normalizeRegistration(in.Vehicle.RegistrationNo)
	if reg == "" {
		return nil, s.fail(op, workshop.Invalid("registration number is required"))
	}
	if err := workshop.CheckLen("registration number", reg, workshop.MaxRegNoLen); err != nil {
		return nil, s.fail(op, err)
	}
	tasks := make([]models.ServiceTask, 0, len(in.Tasks))
	for i, d := range in.Tasks {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, s.fail(op, workshop.Invalid("task %d description is empty", i+1))
		}
		if err := workshop.CheckLen(fmt.Sprintf("task %d description", i+1), d, workshop.MaxTextLen); err != nil {
			return nil, s.fail(op, err)
		}
		tasks = append(tasks, models.ServiceTask{Description: d})
	}

	var job *models.JobCard
	err := s.atomic(ctx, func(tx store.Tx) error {
		vehicle, err := s.intakeVehicle(tx, actor, reg, in)
		if err != nil {
			return err
		}
		if in.MechanicID != nil {
			m, err := tx.UserByID(*in.MechanicID)
			if err != nil {
				return notFound(err, workshop.ErrMechanicNotFound)
			}
			if m.Role != models.RoleMechanic {
				return workshop.ErrMechanicNotFound
			}
		}

		card := &models.JobCard{
			CustomerID:         vehicle.CustomerID,
			VehicleID:          vehicle.ID,
			Status:             models.StatusQueue,
			AssignedMechanicID: in.MechanicID,
			CreatedAt:          s.now(),
			Tasks:              tasks,
		}
		if err := tx.CreateJobCard(card); err != nil {
			return err
		}
		if err := writeAudit(tx, actor, "job_card", card.ID, models.AuditActionCreate,
			fmt.Sprintf("intake for %s with %d tasks", vehicle.RegistrationNo, len(tasks)), nil,
			map[string]any{"vehicle": vehicle.RegistrationNo, "status": card.Status, "mechanic_id": card.AssignedMechanicID}); err != nil {
			return err
		}
		job, err = tx.JobCard(card.ID, false)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.log.WithFields(logrus.Fields{"job_id": job.ID, "vehicle": reg}).Info("job card created")
	return job, nil
}

// intakeVehicle returns the vehicle on file for reg, or registers the
// customer and vehicle from the request.
func (s *Service) intakeVehicle(tx store.Tx, actor Actor, reg string, in NewJobCard) (*models.Vehicle, error) {
	v, err := tx.VehicleByRegistration(reg)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	c := in.Customer
	c.Name, c.Phone, c.Email = strings.TrimSpace(c.Name), strings.TrimSpace(c.Phone), strings.TrimSpace(c.Email)
	nv := in.Vehicle
	nv.Make, nv.Model = strings.TrimSpace(nv.Make), strings.TrimSpace(nv.Model)
	switch {
	case c.Name == "" || c.Phone == "":
		return nil, workshop.Invalid("customer name and phone are required for a new vehicle")
	case nv.Make == "" || nv.Model == "":
		return nil, workshop.Invalid("vehicle make and model are required")
	case nv.VehicleType != models.VehicleMoped && nv.VehicleType != models.VehicleBike:
		return nil, workshop.Invalid("vehicle type must be moped or bike")
	}
	for _, err := range []error{
		workshop.CheckLen("customer name", c.Name, workshop.MaxNameLen),
		workshop.CheckLen("customer phone", c.Phone, workshop.MaxPhoneLen),
		workshop.CheckLen("customer email", c.Email, workshop.MaxTextLen),
		workshop.CheckLen("vehicle make", nv.Make, workshop.MaxNameLen),
		workshop.CheckLen("vehicle model", nv.Model, workshop.MaxNameLen),
	} {
		if err != nil {
			return nil, err
		}
	}

	customer := &models.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email}
	if err := tx.CreateCustomer(customer); err != nil {
		return nil, err
	}
	vehicle := &models.Vehicle{
		CustomerID:     customer.ID,
		Customer:       *customer,
		Make:           nv.Make,
		Model:          nv.Model,
		RegistrationNo: reg,
		VehicleType:    nv.VehicleType,
	}
	if err := tx.CreateVehicle(vehicle); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, workshop.Invalid("registration number %s is already registered", reg)
		}
		return nil, err
	}
	err = writeAudit(tx, actor, "vehicle", vehicle.ID, models.AuditActionCreate,
		"registered "+reg+" for "+customer.Name, nil, nil)
	return vehicle, err
}

// FindVehicle looks a vehicle up by registration number, ignoring case and
// spacing.
func (s *Service) FindVehicle(ctx context.Context, registration string) (*models.Vehicle, error) {
	reg := normalizeRegistration(registration)
	if reg == "" {
		return nil, s.fail("find_vehicle", workshop.Invalid("registration number is required"))
	}
	var v *models.Vehicle
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		v, err = tx.VehicleByRegistration(reg)
		return notFound(err, workshop.ErrVehicleNotFound)
	})
	if err != nil {
		return nil, s.fail("find_vehicle", err)
	}
	return v, nil
}

func (s *Service) JobCard(ctx context.Context, id uint) (*models.JobCard, error) {
	var job *models.JobCard
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		job, err = tx.JobCard(id, false)
		return notFound(err, workshop.ErrJobNotFound)
	})
	if err != nil {
		return nil, s.fail("get_job_card", err)
	}
	return job, nil
}

// ListJobCards returns job cards newest first, filtered by status when one
// is given.
func (s *Service) ListJobCards(ctx context.Context, status string) ([]models.JobCard, error) {
	var f store.JobFilter
	if status != "" {
		st, err := workshop.ParseStatus(status)
		if err != nil {
			return nil, s.fail("list_job_cards", err)
		}
		f.Status = st
	}
	return s.listJobs(ctx, "list_job_cards", f)
}

// MyJobs lists the job cards assigned to the actor.
func (s *Service) MyJobs(ctx context.Context, actor Actor) ([]models.JobCard, error) {
	id := actor.UserID
	return s.listJobs(ctx, "my_jobs", store.JobFilter{MechanicID: &id})
}

func (s *Service) listJobs(ctx context.Context, op string, f store.JobFilter) ([]models.JobCard, error) {
	var jobs []models.JobCard
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		jobs, err = tx.ListJobCards(f)
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	if jobs == nil {
		jobs = []models.JobCard{}
	}
	return jobs, nil
}

// Transition moves a job card to target. Skipping quality check on the way
// to done is reserved to admins, and done needs a complete checklist when
// the service is configured so. An unknown target is an invalid transition
// like any other unreachable one.
func (s *Service) Transition(ctx context.Context, actor Actor, jobID uint, target string) (*models.JobCard, error) {
	const op = "transition"
	to := models.JobStatus(target)

	var job *models.JobCard
	var from models.JobStatus
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		job, err = tx.JobCard(jobID, true)
		if err != nil {
			return notFound(err, workshop.ErrJobNotFound)
		}
		from = job.Status
		if err := workshop.Transition(job, to); err != nil {
			return err
		}
		if workshop.IsOverride(from, to) && !actor.IsAdmin() {
			return workshop.ErrForbidden
		}
		if to == models.StatusDone && s.requireTasks && !workshop.AllComplete(job.Tasks) {
			return workshop.ErrTasksIncomplete
		}
		if err := tx.UpdateJobStatus(job.ID, to); err != nil {
			return err
		}
		desc := fmt.Sprintf("status %s -> %s", from, to)
		if workshop.IsOverride(from, to) {
			desc += " (override)"
		}
		return writeAudit(tx, actor, "job_card", job.ID, models.AuditActionUpdate, desc,
			map[string]any{"status": from}, map[string]any{"status": to})
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Transitions.WithLabelValues(string(from), string(to)).Inc()
	s.log.WithFields(logrus.Fields{
		"job_id": job.ID,
		"from":   from,
		"to":     to,
		"user":   actor.Username,
	}).Info("job status changed")
	return job, nil
}

// TaskUpdate leaves a field alone when it is nil. A nil Completed toggles.
type TaskUpdate struct {
	Completed *bool
	Notes     *string
}

func (s *Service) UpdateTask(ctx context.Context, actor Actor, taskID uint, upd TaskUpdate) (*models.ServiceTask, error) {
	const op = "update_task"
	var task *models.ServiceTask
	err := s.atomic(ctx, func(tx store.Tx) error {
		peek, err := tx.Task(taskID, false)
		if err != nil {
			return notFound(err, workshop.ErrTaskNotFound)
		}
		// job before task, matching the order issuance locks in
		job, err := tx.JobCard(peek.JobCardID, true)
		if err != nil {
			return notFound(err, workshop.ErrJobNotFound)
		}
		if job.Status == models.StatusDone {
			return workshop.ErrJobClosed
		}
		task, err = tx.Task(taskID, true)
		if err != nil {
			return notFound(err, workshop.ErrTaskNotFound)
		}

		before := map[string]any{"completed": task.Completed, "notes": task.Notes}
		if upd.Completed == nil {
			workshop.ToggleTask(task)
		} else {
			task.Completed = *upd.Completed
		}
		if upd.Notes != nil {
			task.Notes = strings.TrimSpace(*upd.Notes)
		}
		if err := tx.SaveTask(task); err != nil {
			return notFound(err, workshop.ErrTaskNotFound)
		}
		return writeAudit(tx, actor, "service_task", task.ID, models.AuditActionUpdate,
			fmt.Sprintf("task %d of job %d completed=%t", task.ID, job.ID, task.Completed),
			before, map[string]any{"completed": task.Completed, "notes": task.Notes})
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	return task, nil
}

// ToggleTask flips a task's completed flag.
func (s *Service) ToggleTask(ctx context.Context, actor Actor, taskID uint) (*models.ServiceTask, error) {
	return s.UpdateTask(ctx, actor, taskID, TaskUpdate{})
}
