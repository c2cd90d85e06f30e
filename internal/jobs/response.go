package jobs

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"garage-backend/internal/models"
	"garage-backend/internal/workshop"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(workshop.MoneyPlaces)
}

type CustomerResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type VehicleResponse struct {
	ID             uint               `json:"id"`
	RegistrationNo string             `json:"registration_no"`
	Make           string             `json:"make"`
	Model          string             `json:"model"`
	VehicleType    models.VehicleType `json:"vehicle_type"`
	Customer       *CustomerResponse  `json:"customer,omitempty"`
}

type MechanicRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type TaskResponse struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Notes       string `json:"notes"`
}

type PartUsageResponse struct {
	ID               uint      `json:"id"`
	PartID           uint      `json:"part_id"`
	PartName         string    `json:"part_name"`
	QuantityUsed     int       `json:"quantity_used"`
	PriceAtTimeOfUse string    `json:"price_at_time_of_use"`
	LineTotal        string    `json:"line_total"`
	CreatedAt        time.Time `json:"created_at"`
}

type InvoiceResponse struct {
	ID          uint      `json:"id"`
	JobCardID   uint      `json:"job_card_id"`
	PartsTotal  string    `json:"parts_total"`
	LaborCharge string    `json:"labor_charge"`
	Subtotal    string    `json:"subtotal"`
	TaxRate     string    `json:"tax_rate"`
	Tax         string    `json:"tax"`
	Discount    string    `json:"discount"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobCardResponse struct {
	ID               uint                `json:"id"`
	Status           models.JobStatus    `json:"status"`
	Customer         CustomerResponse    `json:"customer"`
	Vehicle          VehicleResponse     `json:"vehicle"`
	AssignedMechanic *MechanicRef        `json:"assigned_mechanic"`
	Tasks            []TaskResponse      `json:"tasks"`
	PartsUsed        []PartUsageResponse `json:"parts_used,omitempty"`
	Invoice          *InvoiceResponse    `json:"invoice,omitempty"`
	Progress         float64             `json:"progress"`
	CompletedTasks   int                 `json:"completed_tasks"`
	TotalTasks       int                 `json:"total_tasks"`
	AllComplete      bool                `json:"all_complete"`
	NextStatuses     []models.JobStatus  `json:"next_statuses"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func toCustomer(c *models.Customer) CustomerResponse {
	return CustomerResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email}
}

func ToVehicleResponse(v *models.Vehicle, withOwner bool) VehicleResponse {
	res := VehicleResponse{
		ID:             v.ID,
		RegistrationNo: v.RegistrationNo,
		Make:           v.Make,
		Model:          v.Model,
		VehicleType:    v.VehicleType,
	}
	if withOwner {
		owner := toCustomer(&v.Customer)
		res.Customer = &owner
	}
	return res
}

func ToInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:          inv.ID,
		JobCardID:   inv.JobCardID,
		PartsTotal:  money(inv.PartsTotal),
		LaborCharge: money(inv.LaborCharge),
		Subtotal:    money(inv.Subtotal()),
		TaxRate:     inv.TaxRate.String(),
		Tax:         money(inv.Tax),
		Discount:    money(inv.Discount),
		TotalAmount: money(inv.TotalAmount),
		CreatedAt:   inv.CreatedAt,
	}
}

// ToJobCardResponse renders a job card; parts and invoice are only present
// when the card was loaded with them.
func ToJobCardResponse(j *models.JobCard) JobCardResponse {
	res := JobCardResponse{
		ID:             j.ID,
		Status:         j.Status,
		Customer:       toCustomer(&j.Customer),
		Vehicle:        ToVehicleResponse(&j.Vehicle, false),
		Tasks:          make([]TaskResponse, 0, len(j.Tasks)),
		Progress:       math.Round(workshop.Progress(j.Tasks)*10000) / 10000,
		CompletedTasks: workshop.CompletedCount(j.Tasks),
		TotalTasks:     len(j.Tasks),
		AllComplete:    workshop.AllComplete(j.Tasks),
		NextStatuses:   workshop.NextStatuses(j.Status),
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
	if res.NextStatuses == nil {
		res.NextStatuses = []models.JobStatus{}
	}
	if m := j.AssignedMechanic; m != nil {
		res.AssignedMechanic = &MechanicRef{ID: m.ID, Username: m.Username, FullName: m.FullName}
	}
	for _, t := range j.Tasks {
		res.Tasks = append(res.Tasks, ToTaskResponse(&t))
	}
	for _, u := range j.PartsUsed {
		res.PartsUsed = append(res.PartsUsed, PartUsageResponse{
			ID:               u.ID,
			PartID:           u.PartID,
			PartName:         u.Part.Name,
			QuantityUsed:     u.QuantityUsed,
			PriceAtTimeOfUse: money(u.PriceAtTimeOfUse),
			LineTotal:        money(u.LineTotal()),
			CreatedAt:        u.CreatedAt,
		})
	}
	if j.Invoice != nil {
		inv := ToInvoiceResponse(j.Invoice)
		res.Invoice = &inv
	}
	return res
}

func ToTaskResponse(t *models.ServiceTask) TaskResponse {
	return TaskResponse{ID: t.ID, Description: t.Description, Completed: t.Completed, Notes: t.Notes}
}

func toJobList(jobs []models.JobCard) []JobCardResponse {
	res := make([]JobCardResponse, 0, len(jobs))
	for i := range jobs {
		res = append(res, ToJobCardResponse(&jobs[i]))
	}
	return res
}
