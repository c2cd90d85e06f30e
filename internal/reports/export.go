package reports

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"garage-backend/internal/models"
	"garage-backend/internal/workshop"
)

const invoiceSheet = "Invoices"

var invoiceHeader = []interface{}{
	"Invoice ID",
	"Job Card",
	"Date",
	"Customer",
	"Registration",
	"Parts",
	"Labor",
	"Tax",
	"Discount",
	"Total",
}

func cellMoney(d decimal.Decimal) float64 {
	return d.Round(workshop.MoneyPlaces).InexactFloat64()
}

// InvoiceWorkbook writes one row per invoice plus a totals row.
func InvoiceWorkbook(invoices []models.Invoice) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), invoiceSheet); err != nil {
		return nil, errors.Wrap(err, "name sheet")
	}
	if err := f.SetSheetRow(invoiceSheet, "A1", &invoiceHeader); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	var parts, labor, tax, discount, total decimal.Decimal
	row := 2
	for _, inv := range invoices {
		var customer, reg string
		if inv.JobCard != nil {
			customer = inv.JobCard.Customer.Name
			reg = inv.JobCard.Vehicle.RegistrationNo
		}
		line := []interface{}{
			inv.ID,
			inv.JobCardID,
			inv.CreatedAt.Format("2006-01-02 15:04"),
			customer,
			reg,
			cellMoney(inv.PartsTotal),
			cellMoney(inv.LaborCharge),
			cellMoney(inv.Tax),
			cellMoney(inv.Discount),
			cellMoney(inv.TotalAmount),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(invoiceSheet, cell, &line); err != nil {
			return nil, errors.Wrapf(err, "write invoice %d", inv.ID)
		}
		parts = parts.Add(inv.PartsTotal)
		labor = labor.Add(inv.LaborCharge)
		tax = tax.Add(inv.Tax)
		discount = discount.Add(inv.Discount)
		total = total.Add(inv.TotalAmount)
		row++
	}

	totals := []interface{}{"Total", len(invoices), "", "", "",
		cellMoney(parts), cellMoney(labor), cellMoney(tax), cellMoney(discount), cellMoney(total)}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, errors.Wrap(err, "cell name")
	}
	if err := f.SetSheetRow(invoiceSheet, cell, &totals); err != nil {
		return nil, errors.Wrap(err, "write totals")
	}
	if err := f.SetColWidth(invoiceSheet, "C", "E", 18); err != nil {
		return nil, errors.Wrap(err, "column width")
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf, nil
}
