package workshop

import (
	"github.com/shopspring/decimal"

	"garage-backend/internal/models"
)

// MoneyPlaces is the fraction digits of every stored amount.
const MoneyPlaces = 2

// DefaultTaxRate is the GST rate used when none is configured.
var DefaultTaxRate = decimal.RequireFromString("0.12")

// Calculator derives invoice totals from a job's issued parts.
type Calculator struct {
	TaxRate decimal.Decimal
}

func NewCalculator(rate decimal.Decimal) Calculator {
	return Calculator{TaxRate: rate}
}

// Totals is the unrounded breakdown plus the rounded grand total.
type Totals struct {
	PartsTotal  decimal.Decimal
	LaborCharge decimal.Decimal
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal
}

// Compute rounds only the final total, half away from zero, which is
// half-up for the non-negative totals it accepts.
func (c Calculator) Compute(usages []models.PartUsage, labor, discount decimal.Decimal) (Totals, error) {
	if labor.IsNegative() || discount.IsNegative() {
		return Totals{}, ErrNegativeInput
	}

	parts := decimal.Zero
	for _, u := range usages {
		parts = parts.Add(u.LineTotal())
	}
	subtotal := parts.Add(labor)
	tax := subtotal.Mul(c.TaxRate)
	gross := subtotal.Add(tax)
	if discount.GreaterThan(gross) {
		return Totals{}, ErrDiscountExceedsTotal
	}
	total := gross.Sub(discount).Round(MoneyPlaces)
	if parts.GreaterThanOrEqual(MaxAmount) || total.GreaterThanOrEqual(MaxAmount) {
		return Totals{}, Invalid("invoice amounts must stay below %s", MaxAmount)
	}

	return Totals{
		PartsTotal:  parts,
		LaborCharge: labor,
		Subtotal:    subtotal,
		Tax:         tax,
		Discount:    discount,
		TotalAmount: total,
	}, nil
}

// Invoice freezes the totals into a record for jobID.
func (t Totals) Invoice(jobID uint, rate decimal.Decimal) models.Invoice {
	return models.Invoice{
		JobCardID:   jobID,
		PartsTotal:  t.PartsTotal,
		LaborCharge: t.LaborCharge,
		TaxRate:     rate,
		Tax:         t.Tax,
		Discount:    t.Discount,
		TotalAmount: t.TotalAmount,
	}
}

// ValidMoney reports whether d fits the stored money scale.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}
