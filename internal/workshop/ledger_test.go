package workshop

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-backend/internal/models"
)

func TestIssue(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	part := &models.Part{ID: 7, Name: "Brake pad", StockQuantity: 5, MinStockLevel: 2, UnitPrice: decimal.RequireFromString("100.00")}

	usage, err := Issue(part, 3, 3, at)
	require.NoError(t, err)
	assert.Equal(t, 2, part.StockQuantity)
	assert.Equal(t, uint(3), usage.JobCardID)
	assert.Equal(t, uint(7), usage.PartID)
	assert.Equal(t, 3, usage.QuantityUsed)
	assert.True(t, usage.PriceAtTimeOfUse.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, at, usage.CreatedAt)
	assert.True(t, IsLowStock(*part))

	_, err = Issue(part, 3, 3, at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	var se *StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Requested)
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 2, part.StockQuantity, "failed issue must not touch stock")

	usage, err = Issue(part, 3, 2, at)
	require.NoError(t, err)
	assert.Equal(t, 0, part.StockQuantity)
	assert.Equal(t, 2, usage.QuantityUsed)
}

func TestIssueRejectsNonPositiveQuantity(t *testing.T) {
	part := &models.Part{StockQuantity: 5}
	for _, q := range []int{0, -1} {
		_, err := Issue(part, 1, q, time.Now())
		assert.Equal(t, ErrInvalidQuantity, err)
	}
	assert.Equal(t, 5, part.StockQuantity)
}

func TestRestockAndLowStock(t *testing.T) {
	part := &models.Part{Name: "Spark plug", StockQuantity: 1, MinStockLevel: 3}
	assert.Len(t, LowStock([]models.Part{*part}), 1)

	require.NoError(t, Restock(part, 5))
	assert.Equal(t, 6, part.StockQuantity)
	assert.Empty(t, LowStock([]models.Part{*part}))

	assert.Equal(t, ErrInvalidQuantity, Restock(part, 0))
}

func TestRestockCapsAtColumnRange(t *testing.T) {
	part := &models.Part{Name: "Spark plug", StockQuantity: 5}
	assert.Equal(t, ErrInvalidQuantity, Restock(part, math.MaxInt))
	assert.Equal(t, ErrInvalidQuantity, Restock(part, MaxStock-4))
	assert.Equal(t, 5, part.StockQuantity)

	require.NoError(t, Restock(part, MaxStock-5))
	assert.Equal(t, MaxStock, part.StockQuantity)
}
