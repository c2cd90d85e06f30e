package reports

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"garage-backend/internal/models"
	"garage-backend/internal/service"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

const dateLayout = "2006-01-02"

type SummaryResponse struct {
	JobsByStatus  map[models.JobStatus]int `json:"jobs_by_status"`
	TotalJobs     int                      `json:"total_jobs"`
	OpenJobs      int                      `json:"open_jobs"`
	Invoices      int                      `json:"invoices"`
	Revenue       string                   `json:"revenue"`
	PartsRevenue  string                   `json:"parts_revenue"`
	LaborRevenue  string                   `json:"labor_revenue"`
	TaxCollected  string                   `json:"tax_collected"`
	Discounts     string                   `json:"discounts"`
	LowStockParts int                      `json:"low_stock_parts"`
}

// GET /api/reports (admin)
func SummaryHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(SummaryResponse{
			JobsByStatus:  s.JobsByStatus,
			TotalJobs:     s.TotalJobs,
			OpenJobs:      s.OpenJobs,
			Invoices:      s.Invoices,
			Revenue:       s.Revenue.StringFixed(workshop.MoneyPlaces),
			PartsRevenue:  s.PartsRevenue.StringFixed(workshop.MoneyPlaces),
			LaborRevenue:  s.LaborRevenue.StringFixed(workshop.MoneyPlaces),
			TaxCollected:  s.TaxCollected.StringFixed(workshop.MoneyPlaces),
			Discounts:     s.Discounts.StringFixed(workshop.MoneyPlaces),
			LowStockParts: s.LowStockParts,
		})
	}
}

// invoiceRange reads from/to as calendar days in loc; to is inclusive.
func invoiceRange(c *fiber.Ctx, loc *time.Location) (store.InvoiceFilter, error) {
	var f store.InvoiceFilter
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		f.To = t.AddDate(0, 0, 1)
	}
	return f, nil
}

// GET /api/invoices/export?from=&to= (admin)
func ExportInvoicesHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := invoiceRange(c, svc.Location())
		if err != nil {
			return err
		}
		invoices, err := svc.Invoices(c.UserContext(), f)
		if err != nil {
			return err
		}
		buf, err := InvoiceWorkbook(invoices)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("invoices_%s.xlsx", svc.Now().Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(buf.Bytes())
	}
}
