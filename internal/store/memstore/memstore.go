// Package memstore keeps every record in process memory. One mutex guards a
// whole unit of work, which runs against a copy of the state that replaces
// the live state only when the unit succeeds.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
)

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock sets the time source used to fill zero timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Records are kept without their associations; tx re-attaches them on read.
type state struct {
	seq       map[string]uint
	users     map[uint]models.User
	customers map[uint]models.Customer
	vehicles  map[uint]models.Vehicle
	jobs      map[uint]models.JobCard
	tasks     map[uint]models.ServiceTask
	parts     map[uint]models.Part
	usages    map[uint]models.PartUsage
	invoices  map[uint]models.Invoice
	audit     []models.AuditLog
}

func newState() *state {
	return &state{
		seq:       map[string]uint{},
		users:     map[uint]models.User{},
		customers: map[uint]models.Customer{},
		vehicles:  map[uint]models.Vehicle{},
		jobs:      map[uint]models.JobCard{},
		tasks:     map[uint]models.ServiceTask{},
		parts:     map[uint]models.Part{},
		usages:    map[uint]models.PartUsage{},
		invoices:  map[uint]models.Invoice{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:       maps.Clone(s.seq),
		users:     maps.Clone(s.users),
		customers: maps.Clone(s.customers),
		vehicles:  maps.Clone(s.vehicles),
		jobs:      maps.Clone(s.jobs),
		tasks:     maps.Clone(s.tasks),
		parts:     maps.Clone(s.parts),
		usages:    maps.Clone(s.usages),
		invoices:  maps.Clone(s.invoices),
		audit:     slices.Clone(s.audit),
	}
}

func (s *state) next(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) stamp(ts *time.Time) {
	if ts.IsZero() {
		*ts = t.now()
	}
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Users

func (t *tx) CreateUser(u *models.User) error {
	for _, other := range t.st.users {
		if other.Username == u.Username || other.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = t.st.next("users")
	t.stamp(&u.CreatedAt)
	t.stamp(&u.UpdatedAt)
	t.st.users[u.ID] = *u
	return nil
}

func (t *tx) UserByID(id uint) (*models.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (t *tx) UserByUsername(username string) (*models.User, error) {
	for _, u := range t.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tx) ListUsers(role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, id := range sortedKeys(t.st.users) {
		u := t.st.users[id]
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (t *tx) CountUsers(role models.UserRole) (int64, error) {
	var n int64
	for _, u := range t.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (t *tx) SaveUser(u *models.User) error {
	if _, ok := t.st.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	u.UpdatedAt = t.now()
	t.st.users[u.ID] = *u
	return nil
}

// Customers and vehicles

func (t *tx) CreateCustomer(c *models.Customer) error {
	c.ID = t.st.next("customers")
	t.stamp(&c.CreatedAt)
	t.stamp(&c.UpdatedAt)
	rec := *c
	rec.Vehicles = nil
	t.st.customers[c.ID] = rec
	return nil
}

func (t *tx) CreateVehicle(v *models.Vehicle) error {
	for _, other := range t.st.vehicles {
		if other.RegistrationNo == v.RegistrationNo {
			return store.ErrDuplicate
		}
	}
	v.ID = t.st.next("vehicles")
	t.stamp(&v.CreatedAt)
	t.stamp(&v.UpdatedAt)
	rec := *v
	rec.Customer = models.Customer{}
	t.st.vehicles[v.ID] = rec
	return nil
}

func (t *tx) VehicleByRegistration(reg string) (*models.Vehicle, error) {
	for _, id := range sortedKeys(t.st.vehicles) {
		v := t.st.vehicles[id]
		if strings.EqualFold(v.RegistrationNo, reg) {
			v.Customer = t.st.customers[v.CustomerID]
			return &v, nil
		}
	}
	return nil, store.ErrNotFound
}

// Job cards

func (t *tx) CreateJobCard(j *models.JobCard) error {
	j.ID = t.st.next("job_cards")
	t.stamp(&j.CreatedAt)
	t.stamp(&j.UpdatedAt)
	if j.Status == "" {
		j.Status = models.StatusQueue
	}
	for i := range j.Tasks {
		task := &j.Tasks[i]
		task.ID = t.st.next("service_tasks")
		task.JobCardID = j.ID
		t.stamp(&task.CreatedAt)
		t.stamp(&task.UpdatedAt)
		t.st.tasks[task.ID] = *task
	}
	rec := *j
	rec.Customer = models.Customer{}
	rec.Vehicle = models.Vehicle{}
	rec.AssignedMechanic = nil
	rec.Tasks = nil
	rec.PartsUsed = nil
	rec.Invoice = nil
	t.st.jobs[j.ID] = rec
	return nil
}

func (t *tx) attach(j *models.JobCard) {
	j.Customer = t.st.customers[j.CustomerID]
	j.Vehicle = t.st.vehicles[j.VehicleID]
	if j.AssignedMechanicID != nil {
		if u, ok := t.st.users[*j.AssignedMechanicID]; ok {
			j.AssignedMechanic = &u
		}
	}
	j.Tasks = nil
	for _, id := range sortedKeys(t.st.tasks) {
		if task := t.st.tasks[id]; task.JobCardID == j.ID {
			j.Tasks = append(j.Tasks, task)
		}
	}
}

func (t *tx) JobCard(id uint, _ bool) (*models.JobCard, error) {
	j, ok := t.st.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t.attach(&j)
	for _, uid := range sortedKeys(t.st.usages) {
		if u := t.st.usages[uid]; u.JobCardID == id {
			u.Part = t.st.parts[u.PartID]
			j.PartsUsed = append(j.PartsUsed, u)
		}
	}
	for _, inv := range t.st.invoices {
		if inv.JobCardID == id {
			j.Invoice = &inv
		}
	}
	return &j, nil
}

func (t *tx) ListJobCards(f store.JobFilter) ([]models.JobCard, error) {
	var out []models.JobCard
	for _, id := range sortedKeys(t.st.jobs) {
		j := t.st.jobs[id]
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.MechanicID != nil && (j.AssignedMechanicID == nil || *j.AssignedMechanicID != *f.MechanicID) {
			continue
		}
		t.attach(&j)
		out = append(out, j)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (t *tx) UpdateJobStatus(id uint, status models.JobStatus) error {
	j, ok := t.st.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = t.now()
	t.st.jobs[id] = j
	return nil
}

// Tasks

func (t *tx) Task(id uint, _ bool) (*models.ServiceTask, error) {
	task, ok := t.st.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &task, nil
}

func (t *tx) SaveTask(task *models.ServiceTask) error {
	rec, ok := t.st.tasks[task.ID]
	if !ok {
		return store.ErrNotFound
	}
	rec.Completed = task.Completed
	rec.Notes = task.Notes
	rec.UpdatedAt = t.now()
	t.st.tasks[task.ID] = rec
	task.UpdatedAt = rec.UpdatedAt
	return nil
}

// Parts

func (t *tx) CreatePart(p *models.Part) error {
	p.ID = t.st.next("parts")
	t.stamp(&p.CreatedAt)
	t.stamp(&p.UpdatedAt)
	t.st.parts[p.ID] = *p
	return nil
}

func (t *tx) Part(id uint, _ bool) (*models.Part, error) {
	p, ok := t.st.parts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (t *tx) ListParts() ([]models.Part, error) {
	out := make([]models.Part, 0, len(t.st.parts))
	for _, id := range sortedKeys(t.st.parts) {
		out = append(out, t.st.parts[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *tx) SavePart(p *models.Part) error {
	if _, ok := t.st.parts[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = t.now()
	t.st.parts[p.ID] = *p
	return nil
}

func (t *tx) DeletePart(id uint) error {
	if _, ok := t.st.parts[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.st.parts, id)
	return nil
}

func (t *tx) CountPartUsages(partID uint) (int64, error) {
	var n int64
	for _, u := range t.st.usages {
		if u.PartID == partID {
			n++
		}
	}
	return n, nil
}

func (t *tx) CreatePartUsage(u *models.PartUsage) error {
	u.ID = t.st.next("part_usages")
	t.stamp(&u.CreatedAt)
	rec := *u
	rec.Part = models.Part{}
	t.st.usages[u.ID] = rec
	return nil
}

// Invoices

func (t *tx) InvoiceByJob(jobID uint) (*models.Invoice, error) {
	for _, inv := range t.st.invoices {
		if inv.JobCardID == jobID {
			return &inv, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tx) CreateInvoice(inv *models.Invoice) error {
	if _, err := t.InvoiceByJob(inv.JobCardID); err == nil {
		return store.ErrDuplicate
	}
	inv.ID = t.st.next("invoices")
	t.stamp(&inv.CreatedAt)
	rec := *inv
	rec.JobCard = nil
	t.st.invoices[inv.ID] = rec
	return nil
}

func (t *tx) ListInvoices(f store.InvoiceFilter) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, id := range sortedKeys(t.st.invoices) {
		inv := t.st.invoices[id]
		if !f.From.IsZero() && inv.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !inv.CreatedAt.Before(f.To) {
			continue
		}
		if j, ok := t.st.jobs[inv.JobCardID]; ok {
			j.Customer = t.st.customers[j.CustomerID]
			j.Vehicle = t.st.vehicles[j.VehicleID]
			inv.JobCard = &j
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

// Audit

func (t *tx) WriteAudit(l *models.AuditLog) error {
	l.ID = t.st.next("audit_logs")
	t.stamp(&l.CreatedAt)
	t.st.audit = append(t.st.audit, *l)
	return nil
}

func (t *tx) ListAudit(f store.AuditFilter) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for i := len(t.st.audit) - 1; i >= 0; i-- {
		l := t.st.audit[i]
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != 0 && l.EntityID != f.EntityID {
			continue
		}
		if f.UserID != 0 && l.UserID != f.UserID {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}
