package service

import (
	"context"

	"github.com/shopspring/decimal"

	"garage-backend/internal/models"
	"garage-backend/internal/store"
)

type Summary struct {
	JobsByStatus  map[models.JobStatus]int
	TotalJobs     int
	OpenJobs      int
	Invoices      int
	Revenue       decimal.Decimal
	PartsRevenue  decimal.Decimal
	LaborRevenue  decimal.Decimal
	TaxCollected  decimal.Decimal
	Discounts     decimal.Decimal
	LowStockParts int
}

// Summary aggregates the whole workshop: job counts per status, invoice
// totals and the number of low-stock parts.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		JobsByStatus: make(map[models.JobStatus]int, len(models.AllStatuses)),
		Revenue:      decimal.Zero,
		PartsRevenue: decimal.Zero,
		LaborRevenue: decimal.Zero,
		TaxCollected: decimal.Zero,
		Discounts:    decimal.Zero,
	}
	for _, st := range models.AllStatuses {
		sum.JobsByStatus[st] = 0
	}

	err := s.atomic(ctx, func(tx store.Tx) error {
		jobs, err := tx.ListJobCards(store.JobFilter{})
		if err != nil {
			return err
		}
		for _, j := range jobs {
			sum.JobsByStatus[j.Status]++
			if j.Status != models.StatusDone {
				sum.OpenJobs++
			}
		}
		sum.TotalJobs = len(jobs)

		invoices, err := tx.ListInvoices(store.InvoiceFilter{})
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			sum.Revenue = sum.Revenue.Add(inv.TotalAmount)
			sum.PartsRevenue = sum.PartsRevenue.Add(inv.PartsTotal)
			sum.LaborRevenue = sum.LaborRevenue.Add(inv.LaborCharge)
			sum.TaxCollected = sum.TaxCollected.Add(inv.Tax)
			sum.Discounts = sum.Discounts.Add(inv.Discount)
		}
		sum.Invoices = len(invoices)

		sum.LowStockParts, err = countLowStock(tx)
		return err
	})
	if err != nil {
		return nil, s.fail("summary", err)
	}
	s.metrics.LowStockParts.Set(float64(sum.LowStockParts))
	return sum, nil
}

// AuditLogs lists audit entries newest first.
func (s *Service) AuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.atomic(ctx, func(tx store.Tx) error {
		var err error
		logs, err = tx.ListAudit(f)
		return err
	})
	if err != nil {
		return nil, s.fail("audit_logs", err)
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	return logs, nil
}
