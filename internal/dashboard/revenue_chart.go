package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"garage-backend/internal/models"
	"garage-backend/internal/service"
	"garage-backend/internal/store"
	"garage-backend/internal/workshop"
)

const dayLayout = "2006-01-02"

type RevenuePoint struct {
	Label    string `json:"label"` // day, week start or month start
	Invoices int    `json:"invoices"`
	Parts    string `json:"parts"`
	Labor    string `json:"labor"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type RevenueGrandTotals struct {
	Invoices int    `json:"invoices"`
	Parts    string `json:"parts"`
	Labor    string `json:"labor"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type RevenueChartResponse struct {
	Period      string             `json:"period"` // daily | weekly | monthly
	From        string             `json:"from"`
	To          string             `json:"to"`
	Points      []RevenuePoint     `json:"points"`
	GrandTotals RevenueGrandTotals `json:"grand_totals"`
}

type bucket struct {
	start    time.Time
	invoices int
	parts    decimal.Decimal
	labor    decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

func (b *bucket) add(inv models.Invoice) {
	b.invoices++
	b.parts = b.parts.Add(inv.PartsTotal)
	b.labor = b.labor.Add(inv.LaborCharge)
	b.tax = b.tax.Add(inv.Tax)
	b.total = b.total.Add(inv.TotalAmount)
}

func fixed(d decimal.Decimal) string { return d.StringFixed(workshop.MoneyPlaces) }

// ChartWindow returns the first bucket start and the exclusive end of a
// window of count buckets ending with the one containing now. Weeks start
// on Monday.
func ChartWindow(period string, count int, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "weekly":
		offset := (int(today.Weekday()) + 6) % 7
		week := today.AddDate(0, 0, -offset)
		return week.AddDate(0, 0, -7*(count-1)), week.AddDate(0, 0, 7)
	case "monthly":
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return month.AddDate(0, -(count - 1), 0), month.AddDate(0, 1, 0)
	default:
		return today.AddDate(0, 0, -(count - 1)), today.AddDate(0, 0, 1)
	}
}

func step(period string, t time.Time) time.Time {
	switch period {
	case "weekly":
		return t.AddDate(0, 0, 7)
	case "monthly":
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// BuildRevenueChart buckets invoices by creation time. Buckets without
// invoices are present with zero totals.
func BuildRevenueChart(invoices []models.Invoice, period string, count int, now time.Time) RevenueChartResponse {
	start, end := ChartWindow(period, count, now)

	buckets := make([]*bucket, 0, count)
	for t := start; t.Before(end); t = step(period, t) {
		buckets = append(buckets, &bucket{start: t})
	}

	for _, inv := range invoices {
		at := inv.CreatedAt.In(now.Location())
		if at.Before(start) || !at.Before(end) {
			continue
		}
		for i := len(buckets) - 1; i >= 0; i-- {
			if !at.Before(buckets[i].start) {
				buckets[i].add(inv)
				break
			}
		}
	}

	points := make([]RevenuePoint, 0, len(buckets))
	grand := bucket{}
	for _, b := range buckets {
		points = append(points, RevenuePoint{
			Label:    b.start.Format(dayLayout),
			Invoices: b.invoices,
			Parts:    fixed(b.parts),
			Labor:    fixed(b.labor),
			Tax:      fixed(b.tax),
			Total:    fixed(b.total),
		})
		grand.invoices += b.invoices
		grand.parts = grand.parts.Add(b.parts)
		grand.labor = grand.labor.Add(b.labor)
		grand.tax = grand.tax.Add(b.tax)
		grand.total = grand.total.Add(b.total)
	}

	return RevenueChartResponse{
		Period: period,
		From:   start.Format(dayLayout),
		To:     end.AddDate(0, 0, -1).Format(dayLayout),
		Points: points,
		GrandTotals: RevenueGrandTotals{
			Invoices: grand.invoices,
			Parts:    fixed(grand.parts),
			Labor:    fixed(grand.labor),
			Tax:      fixed(grand.tax),
			Total:    fixed(grand.total),
		},
	}
}

// GET /api/dashboard/revenue-chart?period=daily&count=7 (admin)
func RevenueChartHandler(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		count := c.QueryInt("count", 0)

		switch period {
		case "daily", "weekly", "monthly":
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}
		if c.Query("count") != "" && (count <= 0 || count > 366) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid count")
		}
		if count == 0 {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				count = 7
			}
		}

		now := svc.Now()
		from, to := ChartWindow(period, count, now)
		invoices, err := svc.Invoices(c.UserContext(), store.InvoiceFilter{From: from, To: to})
		if err != nil {
			return err
		}
		return c.JSON(BuildRevenueChart(invoices, period, count, now))
	}
}
