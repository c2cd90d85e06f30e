package workshop

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-backend/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usage(qty int, price string) models.PartUsage {
	return models.PartUsage{QuantityUsed: qty, PriceAtTimeOfUse: d(price)}
}

func TestComputeDeterministic(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)
	totals, err := calc.Compute([]models.PartUsage{usage(2, "100.00"), usage(1, "50.00")}, d("533.00"), d("0.00"))
	require.NoError(t, err)

	assert.Equal(t, "250.00", totals.PartsTotal.StringFixed(2))
	assert.Equal(t, "783.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "93.96", totals.Tax.StringFixed(2))
	assert.Equal(t, "876.96", totals.TotalAmount.StringFixed(2))
}

func TestComputeRoundsOnlyTheTotal(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)

	totals, err := calc.Compute([]models.PartUsage{usage(1, "0.04"), usage(1, "0.04")}, d("0.00"), d("0.00"))
	require.NoError(t, err)
	assert.True(t, totals.Tax.Equal(d("0.0096")))
	assert.Equal(t, "0.09", totals.TotalAmount.String())

	// 10.05 * 1.12 = 11.256
	totals, err = calc.Compute(nil, d("10.05"), d("0.00"))
	require.NoError(t, err)
	assert.Equal(t, "11.26", totals.TotalAmount.StringFixed(2))

	totals, err = NewCalculator(d("0.10")).Compute(nil, d("0.05"), d("0.00"))
	require.NoError(t, err)
	assert.True(t, totals.Tax.Equal(d("0.005")))
	assert.Equal(t, "0.06", totals.TotalAmount.StringFixed(2)) // 0.055 half-up
}

func TestComputeDiscount(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)
	totals, err := calc.Compute([]models.PartUsage{usage(1, "100.00")}, d("0.00"), d("12.00"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", totals.TotalAmount.StringFixed(2))

	_, err = calc.Compute([]models.PartUsage{usage(1, "100.00")}, d("0.00"), d("112.01"))
	assert.Equal(t, ErrDiscountExceedsTotal, err)
}

func TestComputeRejectsNegativeInput(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)
	_, err := calc.Compute(nil, d("-1"), d("0"))
	assert.Equal(t, ErrNegativeInput, err)
	_, err = calc.Compute(nil, d("1"), d("-0.01"))
	assert.Equal(t, ErrNegativeInput, err)
}

func TestComputeRejectsAmountsPastColumnRange(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)
	_, err := calc.Compute([]models.PartUsage{usage(200, "99999999.99")}, d("0"), d("0"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	// parts fit, but tax pushes the total over
	_, err = calc.Compute([]models.PartUsage{usage(1, "9000000000.00")}, d("0"), d("0"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	totals, err := calc.Compute([]models.PartUsage{usage(1, "9000000000.00")}, d("0"), d("1080000000.00"))
	require.NoError(t, err)
	assert.Equal(t, "9000000000.00", totals.TotalAmount.StringFixed(2))
}

func TestTotalsInvoice(t *testing.T) {
	calc := NewCalculator(DefaultTaxRate)
	totals, err := calc.Compute([]models.PartUsage{usage(2, "100.00")}, d("50.00"), d("10.00"))
	require.NoError(t, err)

	inv := totals.Invoice(9, calc.TaxRate)
	assert.Equal(t, uint(9), inv.JobCardID)
	assert.True(t, inv.Subtotal().Equal(d("250.00")))
	assert.True(t, inv.TaxRate.Equal(d("0.12")))
	assert.Equal(t, "270.00", inv.TotalAmount.StringFixed(2))
}

func TestValidMoney(t *testing.T) {
	assert.True(t, ValidMoney(d("12.34")))
	assert.True(t, ValidMoney(d("12")))
	assert.False(t, ValidMoney(d("12.345")))
}
