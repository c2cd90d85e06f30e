package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-backend/internal/metrics"
	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/store/memstore"
	"garage-backend/internal/workshop"
)

var (
	admin = Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	ctx   = context.Background()
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	svc     *Service
	st      *memstore.Store
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
	st := memstore.New().WithClock(clock)
	m := metrics.New(prometheus.NewRegistry())
	svc := New(st, Options{
		TaxRate:              workshop.DefaultTaxRate,
		DefaultLaborCharge:   dec("533.00"),
		RequireTasksComplete: true,
		Metrics:              m,
		Clock:                clock,
	})
	return &fixture{svc: svc, st: st, metrics: m}
}

func (f *fixture) mechanic(t *testing.T, username string) Actor {
	t.Helper()
	u, err := f.svc.CreateUser(ctx, admin, NewUser{
		Username: username,
		FullName: username,
		Email:    username + "@garage.test",
		Pin:      "1234",
		Role:     models.RoleMechanic,
	})
	require.NoError(t, err)
	return Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (f *fixture) job(t *testing.T, reg string, tasks ...string) *models.JobCard {
	t.Helper()
	j, err := f.svc.CreateJobCard(ctx, admin, NewJobCard{
		Customer: NewCustomer{Name: "Ravi", Phone: "9876543210"},
		Vehicle:  NewVehicle{RegistrationNo: reg, Make: "Honda", Model: "Activa", VehicleType: models.VehicleMoped},
		Tasks:    tasks,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) part(t *testing.T, name string, stock int, price string) *models.Part {
	t.Helper()
	p, err := f.svc.CreatePart(ctx, admin, PartInput{Name: name, StockQuantity: stock, MinStockLevel: 2, UnitPrice: dec(price)})
	require.NoError(t, err)
	return p
}

func (f *fixture) moveTo(t *testing.T, a Actor, jobID uint, path ...models.JobStatus) {
	t.Helper()
	for _, st := range path {
		_, err := f.svc.Transition(ctx, a, jobID, string(st))
		require.NoError(t, err)
	}
}

func TestCreateJobCardReusesVehicle(t *testing.T) {
	f := newFixture(t)
	first := f.job(t, "ka 01 ab 1234", "Oil change")
	assert.Equal(t, models.StatusQueue, first.Status)
	assert.Equal(t, "KA01AB1234", first.Vehicle.RegistrationNo)
	require.Len(t, first.Tasks, 1)

	second, err := f.svc.CreateJobCard(ctx, admin, NewJobCard{
		Vehicle: NewVehicle{RegistrationNo: "KA01AB1234"},
		Tasks:   []string{"Brake check"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.VehicleID, second.VehicleID)
	assert.Equal(t, first.CustomerID, second.CustomerID)

	v, err := f.svc.FindVehicle(ctx, "ka01ab1234")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", v.Customer.Name)
}

func TestCreateJobCardValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateJobCard(ctx, admin, NewJobCard{
		Customer: NewCustomer{Name: "Ravi", Phone: "1"},
		Vehicle:  NewVehicle{RegistrationNo: "X1", Make: "Bajaj", Model: "Pulsar", VehicleType: models.VehicleBike},
		Tasks:    []string{"ok", "  "},
	})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))

	mechID := uint(99)
	_, err = f.svc.CreateJobCard(ctx, admin, NewJobCard{
		Customer:   NewCustomer{Name: "Ravi", Phone: "1"},
		Vehicle:    NewVehicle{RegistrationNo: "X1", Make: "Bajaj", Model: "Pulsar", VehicleType: models.VehicleBike},
		MechanicID: &mechID,
	})
	assert.True(t, errors.Is(err, workshop.ErrMechanicNotFound))

	// the failed intake must not leave the vehicle behind
	_, err = f.svc.FindVehicle(ctx, "X1")
	assert.True(t, errors.Is(err, workshop.ErrVehicleNotFound))
}

func TestTransitionPersists(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "T1")

	f.moveTo(t, admin, j.ID, models.StatusService, models.StatusParts, models.StatusQC, models.StatusDone)

	got, err := f.svc.JobCard(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, got.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Transitions.WithLabelValues("qc", "done")))

	_, err = f.svc.Transition(ctx, admin, j.ID, "queue")
	assert.True(t, errors.Is(err, workshop.ErrInvalidTransition))

	_, err = f.svc.Transition(ctx, admin, j.ID, "finished")
	assert.True(t, errors.Is(err, workshop.ErrInvalidTransition))

	_, err = f.svc.ListJobCards(ctx, "finished")
	assert.True(t, errors.Is(err, workshop.ErrInvalidStatus))

	_, err = f.svc.Transition(ctx, admin, 404, "service")
	assert.True(t, errors.Is(err, workshop.ErrJobNotFound))
}

func TestTransitionRequiresCompleteTasks(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "T2", "Oil change", "Chain lube")
	f.moveTo(t, admin, j.ID, models.StatusService, models.StatusQC)

	_, err := f.svc.Transition(ctx, admin, j.ID, "done")
	assert.True(t, errors.Is(err, workshop.ErrTasksIncomplete))

	for _, task := range j.Tasks {
		_, err := f.svc.ToggleTask(ctx, admin, task.ID)
		require.NoError(t, err)
	}
	_, err = f.svc.Transition(ctx, admin, j.ID, "done")
	require.NoError(t, err)

	// checklist is frozen once the job is done
	_, err = f.svc.ToggleTask(ctx, admin, j.Tasks[0].ID)
	assert.True(t, errors.Is(err, workshop.ErrJobClosed))
}

func TestOverrideToDoneIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic(t, "sunil")
	j := f.job(t, "T3")
	f.moveTo(t, mech, j.ID, models.StatusService)

	_, err := f.svc.Transition(ctx, mech, j.ID, "done")
	assert.True(t, errors.Is(err, workshop.ErrForbidden))

	got, err := f.svc.JobCard(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusService, got.Status)

	_, err = f.svc.Transition(ctx, admin, j.ID, "done")
	require.NoError(t, err)
}

func TestUpdateTaskSetsFields(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "T4", "Spark plug")
	done, notes := true, " replaced "

	task, err := f.svc.UpdateTask(ctx, admin, j.Tasks[0].ID, TaskUpdate{Completed: &done, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, task.Completed)
	assert.Equal(t, "replaced", task.Notes)

	task, err = f.svc.UpdateTask(ctx, admin, j.Tasks[0].ID, TaskUpdate{Completed: &done})
	require.NoError(t, err)
	assert.True(t, task.Completed, "explicit set is idempotent")

	_, err = f.svc.ToggleTask(ctx, admin, 999)
	assert.True(t, errors.Is(err, workshop.ErrTaskNotFound))
}

func TestLongTaskTextStaysOutOfAuditDescription(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "T5", strings.Repeat("x", 255))

	_, err := f.svc.ToggleTask(ctx, admin, j.Tasks[0].ID)
	require.NoError(t, err)

	logs, err := f.svc.AuditLogs(ctx, store.AuditFilter{EntityType: "service_task"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.LessOrEqual(t, utf8.RuneCountInString(logs[0].Description), 255)
	assert.NotContains(t, logs[0].Description, "xxx")

	_, err = f.svc.CreateJobCard(ctx, admin, NewJobCard{
		Vehicle: NewVehicle{RegistrationNo: "T5"},
		Tasks:   []string{strings.Repeat("x", 256)},
	})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))
}

func TestIntakeFieldsBoundedByColumns(t *testing.T) {
	f := newFixture(t)
	base := NewJobCard{
		Customer: NewCustomer{Name: "Ravi", Phone: "9876543210"},
		Vehicle:  NewVehicle{RegistrationNo: "W1", Make: "Honda", Model: "Activa", VehicleType: models.VehicleMoped},
	}
	cases := map[string]func(*NewJobCard){
		"registration": func(in *NewJobCard) { in.Vehicle.RegistrationNo = strings.Repeat("K", 21) },
		"name":         func(in *NewJobCard) { in.Customer.Name = strings.Repeat("r", 101) },
		"phone":        func(in *NewJobCard) { in.Customer.Phone = strings.Repeat("9", 21) },
		"make":         func(in *NewJobCard) { in.Vehicle.Make = strings.Repeat("h", 101) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.svc.CreateJobCard(ctx, admin, in)
			assert.True(t, errors.Is(err, workshop.ErrInvalidInput), err)
		})
	}
	_, err := f.svc.FindVehicle(ctx, "W1")
	assert.True(t, errors.Is(err, workshop.ErrVehicleNotFound))
}

func TestIssuePart(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "P1")
	p := f.part(t, "Brake pad", 5, "100.00")

	res, err := f.svc.IssuePart(ctx, admin, j.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Part.StockQuantity)
	assert.True(t, res.LowStock)
	assert.Equal(t, "100.00", res.Usage.PriceAtTimeOfUse.StringFixed(2))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.PartsIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.LowStockParts))

	_, err = f.svc.IssuePart(ctx, admin, j.ID, p.ID, 0)
	assert.True(t, errors.Is(err, workshop.ErrInvalidQuantity))
	_, err = f.svc.IssuePart(ctx, admin, j.ID, 999, 1)
	assert.True(t, errors.Is(err, workshop.ErrPartNotFound))
	_, err = f.svc.IssuePart(ctx, admin, 999, p.ID, 1)
	assert.True(t, errors.Is(err, workshop.ErrJobNotFound))
}

func TestIssuePartInsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "P2")
	p := f.part(t, "Chain", 3, "450.00")

	_, err := f.svc.IssuePart(ctx, admin, j.ID, p.ID, 5)
	var stockErr *workshop.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)

	got, err := f.svc.Part(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQuantity)

	job, err := f.svc.JobCard(ctx, j.ID)
	require.NoError(t, err)
	assert.Empty(t, job.PartsUsed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("issue_part", "insufficient_stock")))
}

func TestConcurrentIssuanceNeverOversells(t *testing.T) {
	f := newFixture(t)
	p := f.part(t, "Air filter", 10, "120.00")
	jobs := []*models.JobCard{f.job(t, "C1"), f.job(t, "C2"), f.job(t, "C3")}

	var wg sync.WaitGroup
	var mu sync.Mutex
	issued := 0
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.IssuePart(ctx, admin, jobs[i%len(jobs)].ID, p.ID, 1+i%2)
			if err == nil {
				mu.Lock()
				issued += 1 + i%2
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, workshop.ErrInsufficientStock))
		}(i)
	}
	wg.Wait()

	got, err := f.svc.Part(ctx, p.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.StockQuantity, 0)
	assert.LessOrEqual(t, issued, 10)
	assert.Equal(t, 10-issued, got.StockQuantity)
}

func TestPriceSnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "S1")
	p := f.part(t, "Clutch plate", 4, "300.00")

	_, err := f.svc.IssuePart(ctx, admin, j.ID, p.ID, 1)
	require.NoError(t, err)

	newPrice := dec("350.00")
	_, err = f.svc.UpdatePart(ctx, admin, p.ID, PartUpdate{UnitPrice: &newPrice})
	require.NoError(t, err)

	job, err := f.svc.JobCard(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, job.PartsUsed, 1)
	assert.Equal(t, "300.00", job.PartsUsed[0].PriceAtTimeOfUse.StringFixed(2))
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "I1")
	pad := f.part(t, "Brake pad", 10, "100.00")
	oil := f.part(t, "Engine oil", 10, "50.00")
	_, err := f.svc.IssuePart(ctx, admin, j.ID, pad.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.IssuePart(ctx, admin, j.ID, oil.ID, 1)
	require.NoError(t, err)

	inv, err := f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{})
	require.NoError(t, err)
	assert.Equal(t, "250.00", inv.PartsTotal.StringFixed(2))
	assert.Equal(t, "783.00", inv.Subtotal().StringFixed(2))
	assert.Equal(t, "93.96", inv.Tax.StringFixed(2))
	assert.Equal(t, "876.96", inv.TotalAmount.StringFixed(2))

	labor := dec("100.00")
	_, err = f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{LaborCharge: &labor})
	assert.True(t, errors.Is(err, workshop.ErrInvoiceAlreadyExists))

	stored, err := f.svc.Invoice(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, stored.ID)
	assert.Equal(t, "876.96", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, "533.00", stored.LaborCharge.StringFixed(2))

	// invoiced jobs take no further parts
	_, err = f.svc.IssuePart(ctx, admin, j.ID, oil.ID, 1)
	assert.True(t, errors.Is(err, workshop.ErrJobClosed))
}

func TestCreateInvoiceRejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "I2")

	negative := dec("-1.00")
	_, err := f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{LaborCharge: &negative})
	assert.True(t, errors.Is(err, workshop.ErrNegativeInput))

	huge := dec("10000.00")
	_, err = f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{Discount: &huge})
	assert.True(t, errors.Is(err, workshop.ErrDiscountExceedsTotal))

	fine := dec("10.005")
	_, err = f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{LaborCharge: &fine})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))

	tooMuch := dec("10000000000.00")
	_, err = f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{LaborCharge: &tooMuch})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))

	_, err = f.svc.Invoice(ctx, j.ID)
	assert.True(t, errors.Is(err, workshop.ErrInvoiceNotFound))

	mech := f.mechanic(t, "kiran")
	_, err = f.svc.CreateInvoice(ctx, mech, j.ID, InvoiceInput{})
	assert.True(t, errors.Is(err, workshop.ErrForbidden))
}

func TestDeletePart(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "D1")
	used := f.part(t, "Horn", 3, "90.00")
	spare := f.part(t, "Mirror", 3, "70.00")
	_, err := f.svc.IssuePart(ctx, admin, j.ID, used.ID, 1)
	require.NoError(t, err)

	err = f.svc.DeletePart(ctx, admin, used.ID)
	assert.True(t, errors.Is(err, workshop.ErrPartInUse))

	require.NoError(t, f.svc.DeletePart(ctx, admin, spare.ID))
	_, err = f.svc.Part(ctx, spare.ID)
	assert.True(t, errors.Is(err, workshop.ErrPartNotFound))
}

func TestRestockAndLowStock(t *testing.T) {
	f := newFixture(t)
	low := f.part(t, "Fuse", 1, "5.00")
	f.part(t, "Bulb", 9, "25.00")

	parts, err := f.svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, low.ID, parts[0].ID)

	p, err := f.svc.Restock(ctx, admin, low.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity)

	parts, err = f.svc.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, parts)

	_, err = f.svc.Restock(ctx, admin, low.ID, -1)
	assert.True(t, errors.Is(err, workshop.ErrInvalidQuantity))
}

func TestRestockNeverOverflowsStock(t *testing.T) {
	f := newFixture(t)
	p := f.part(t, "Chain", 5, "300.00")

	_, err := f.svc.Restock(ctx, admin, p.ID, math.MaxInt)
	assert.True(t, errors.Is(err, workshop.ErrInvalidQuantity))
	_, err = f.svc.Restock(ctx, admin, p.ID, workshop.MaxStock-4)
	assert.True(t, errors.Is(err, workshop.ErrInvalidQuantity))

	got, err := f.svc.Part(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	got, err = f.svc.Restock(ctx, admin, p.ID, workshop.MaxStock-5)
	require.NoError(t, err)
	assert.Equal(t, workshop.MaxStock, got.StockQuantity)
}

func TestPartInputsBoundedByColumns(t *testing.T) {
	f := newFixture(t)
	cases := map[string]PartInput{
		"long name":     {Name: strings.Repeat("n", 101), UnitPrice: dec("1.00")},
		"long category": {Name: "Hose", Category: strings.Repeat("c", 101), UnitPrice: dec("1.00")},
		"huge stock":    {Name: "Hose", StockQuantity: workshop.MaxStock + 1, UnitPrice: dec("1.00")},
		"huge minimum":  {Name: "Hose", MinStockLevel: workshop.MaxStock + 1, UnitPrice: dec("1.00")},
		"huge price":    {Name: "Hose", UnitPrice: dec("100000000.00")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreatePart(ctx, admin, in)
			assert.True(t, errors.Is(err, workshop.ErrInvalidInput), err)
		})
	}

	p := f.part(t, "Hose", 4, "99999999.99")
	long, huge := strings.Repeat("n", 101), workshop.MaxStock+1
	_, err := f.svc.UpdatePart(ctx, admin, p.ID, PartUpdate{Name: &long})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))
	_, err = f.svc.UpdatePart(ctx, admin, p.ID, PartUpdate{MinStockLevel: &huge})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))

	parts, err := f.svc.Parts(ctx)
	require.NoError(t, err)
	assert.Len(t, parts, 1)
}

func TestUsersAndPins(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.RegisterFirstAdmin(ctx, NewUser{Username: "Owner", FullName: "Owner", Email: "owner@garage.test", Pin: "4321"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, "owner", first.Username)

	_, err = f.svc.RegisterFirstAdmin(ctx, NewUser{Username: "other", FullName: "Other", Email: "o@garage.test", Pin: "4321"})
	assert.True(t, errors.Is(err, workshop.ErrAdminExists))

	_, err = f.svc.Authenticate(ctx, "owner", "0000")
	assert.True(t, errors.Is(err, workshop.ErrInvalidCredentials))
	_, err = f.svc.Authenticate(ctx, "nobody", "4321")
	assert.True(t, errors.Is(err, workshop.ErrInvalidCredentials))

	owner := Actor{UserID: first.ID, Username: first.Username, Role: first.Role}
	require.NoError(t, f.svc.ChangePin(ctx, owner, "4321", "987654"))
	_, err = f.svc.Authenticate(ctx, "OWNER", "987654")
	require.NoError(t, err)

	assert.True(t, errors.Is(f.svc.ChangePin(ctx, owner, "4321", "1111"), workshop.ErrInvalidCredentials))
	assert.True(t, errors.Is(f.svc.ChangePin(ctx, owner, "987654", "12"), workshop.ErrInvalidInput))

	_, err = f.svc.CreateUser(ctx, owner, NewUser{Username: "owner", FullName: "Dup", Email: "dup@garage.test", Pin: "1234", Role: models.RoleMechanic})
	assert.True(t, errors.Is(err, workshop.ErrInvalidInput))
}

func TestMechanicsAndMyJobs(t *testing.T) {
	f := newFixture(t)
	mech := f.mechanic(t, "arun")
	for _, reg := range []string{"M1", "M2"} {
		_, err := f.svc.CreateJobCard(ctx, admin, NewJobCard{
			Customer:   NewCustomer{Name: "Asha", Phone: "1"},
			Vehicle:    NewVehicle{RegistrationNo: reg, Make: "TVS", Model: "XL", VehicleType: models.VehicleMoped},
			MechanicID: &mech.UserID,
		})
		require.NoError(t, err)
	}
	f.job(t, "M3")

	mine, err := f.svc.MyJobs(ctx, mech)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	f.moveTo(t, admin, mine[0].ID, models.StatusDone)

	list, err := f.svc.Mechanics(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].PendingJobs)

	queued, err := f.svc.ListJobCards(ctx, "queue")
	require.NoError(t, err)
	assert.Len(t, queued, 2)
}

func TestSummaryAndAudit(t *testing.T) {
	f := newFixture(t)
	j := f.job(t, "R1")
	p := f.part(t, "Cable", 5, "40.00")
	_, err := f.svc.IssuePart(ctx, admin, j.ID, p.ID, 1)
	require.NoError(t, err)
	labor := dec("100.00")
	_, err = f.svc.CreateInvoice(ctx, admin, j.ID, InvoiceInput{LaborCharge: &labor})
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalJobs)
	assert.Equal(t, 1, sum.JobsByStatus[models.StatusQueue])
	assert.Equal(t, 0, sum.JobsByStatus[models.StatusDone])
	assert.Equal(t, 1, sum.Invoices)
	assert.Equal(t, "156.80", sum.Revenue.StringFixed(2))
	assert.Equal(t, "40.00", sum.PartsRevenue.StringFixed(2))

	logs, err := f.svc.AuditLogs(ctx, store.AuditFilter{EntityType: "invoice"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin", logs[0].UserName)
}
