package reports

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garage-backend/internal/dashboard"
	"garage-backend/internal/store"
)

func rangeFor(t *testing.T, loc *time.Location, query string) (store.InvoiceFilter, int) {
	t.Helper()
	var f store.InvoiceFilter
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		var err error
		f, err = invoiceRange(c, loc)
		return err
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+query, nil))
	require.NoError(t, err)
	return f, resp.StatusCode
}

func TestInvoiceRangeUsesReportingZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	f, status := rangeFor(t, ist, "?from=2025-03-01&to=2025-03-31")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, f.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, ist)), f.From)
	assert.True(t, f.To.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, ist)), f.To)

	// the same day as the daily chart bucket
	from, to := dashboard.ChartWindow("daily", 1, time.Date(2025, 3, 31, 23, 30, 0, 0, ist))
	f, _ = rangeFor(t, ist, "?from=2025-03-31&to=2025-03-31")
	assert.True(t, from.Equal(f.From))
	assert.True(t, to.Equal(f.To))

	_, status = rangeFor(t, ist, "?from=03/01/2025")
	assert.Equal(t, http.StatusBadRequest, status)
}
