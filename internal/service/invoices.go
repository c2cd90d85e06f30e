package service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

// InvoiceInput defaults a nil labor charge to the configured amount and a
// nil discount to zero.
type InvoiceInput struct {
	LaborCharge *decimal.Decimal
	Discount    *decimal.Decimal
}

func (s *Service) CreateInvoice(ctx context.Context, actor Actor, jobID uint, in InvoiceInput) (*models.Invoice, error) {
	const op = "create_invoice"
	if !actor.IsAdmin() {
		return nil, s.fail(op, workshop.ErrForbidden)
	}
	labor, discount := s.laborDefault, decimal.Zero
	if in.LaborCharge != nil {
		labor = *in.LaborCharge
	}
	if in.Discount != nil {
		discount = *in.Discount
	}
	if labor.IsNegative() || discount.IsNegative() {
		return nil, s.fail(op, workshop.ErrNegativeInput)
	}
	if !workshop.ValidMoney(labor) || !workshop.ValidMoney(discount) {
		return nil, s.fail(op, workshop.Invalid("amounts have more than %d decimal places", workshop.MoneyPlaces))
	}
	if labor.GreaterThanOrEqual(workshop.MaxAmount) || discount.GreaterThanOrEqual(workshop.MaxAmount) {
		return nil, s.fail(op, workshop.Invalid("amounts must be below %s", workshop.MaxAmount))
	}

	var inv models.Invoice
	err := s.atomic(ctx, func(tx store.Tx) error {
		job, err := tx.JobCard(jobID, true)
		if err != nil {
			return notFound(err, workshop.ErrJobNotFound)
		}
		if job.Invoice != nil {
			return workshop.ErrInvoiceAlreadyExists
		}
		totals, err := s.calc.Compute(job.PartsUsed, labor, discount)
		if err != nil {
			return err
		}
		inv = totals.Invoice(job.ID, s.calc.TaxRate)
		inv.CreatedAt = s.now()
		if err := tx.CreateInvoice(&inv); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return workshop.ErrInvoiceAlreadyExists
			}
			return err
		}
		return writeAudit(tx, actor, "invoice", inv.ID, models.AuditActionCreate,
			"invoiced job card", nil, map[string]any{
				"job_card_id":  job.ID,
				"parts_total":  inv.PartsTotal.StringFixed(workshop.MoneyPlaces),
				"labor_charge": inv.LaborCharge.StringFixed(workshop.MoneyPlaces),
				"tax":          inv.Tax.String(),
				"discount":     inv.Discount.StringFixed(workshop.MoneyPlaces),
				"total_amount": inv.TotalAmount.StringFixed(workshop.MoneyPlaces),
			})
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.Invoices.Inc()
	s.metrics.InvoiceAmount.Add(inv.TotalAmount.InexactFloat64())
	s.log.WithFields(logrus.Fields{
		"job_id": jobID,
		"total":  inv.TotalAmount.StringFixed(workshop.MoneyPlaces),
	}).Info("invoice created")
	return &inv, nil
}

// Invoice returns the invoice of a job card.
func (s *Service) Invoice(ctx context.Context, jobID uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.atomic(ctx, func(tx store.Tx) error {
		job, err := tx.JobCard(jobID, false)
		if err != nil {
			return notFound(err, workshop.ErrJobNotFound)
		}
		if job.Invoice == nil {
			return workshop.ErrInvoiceNotFound
		}
		inv = job.Invoice
		inv.JobCard = job
		return nil
	})
	if err != nil {
		return nil, s.fail("get_invoice", err)
	}
	return inv, nil
}

func (s *Service) Invoices(ctx context.Context, f store.InvoiceFilter) ([]models.Invoice, error) {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, s.fail("list_invoices", workshop.Invalid("to must not be before from"))
	}
	var out []models.Invoice
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		out, err = tx.ListInvoices(f)
		return err
	})
	if err != nil {
		return nil, s.fail("list_invoices", err)
	}
	if out == nil {
		out = []models.Invoice{}
	}
	return out, nil
}
