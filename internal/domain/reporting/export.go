package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/medibot/medibot/internal/domain/sales"
)

// WriteSalesCSV streams a pharmacy's sales as CSV, one row per sale
// with a trailing totals row.
func WriteSalesCSV(w io.Writer, items []*sales.Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sale_id", "sold_at", "medicine", "quantity", "unit_price", "total", "customer"}); err != nil {
		return err
	}

	var revenue float64
	for _, s := range items {
		customer := ""
		if s.CustomerName != nil {
			customer = *s.CustomerName
		}
		row := []string{
			s.ID.String(),
			s.SoldAt.Format("2006-01-02 15:04"),
			s.MedicineName,
			strconv.Itoa(s.Quantity),
			formatAmount(s.UnitPrice),
			formatAmount(s.TotalAmount),
			customer,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
		revenue += s.TotalAmount
	}
	if err := cw.Write([]string{"", "", "", "", "TOTAL", formatAmount(revenue), ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteInvoiceCSV renders a single sale as an invoice: header fields,
// the line item, and the total.
func WriteInvoiceCSV(w io.Writer, s *sales.Sale) error {
	cw := csv.NewWriter(w)

	customer := ""
	if s.CustomerName != nil {
		customer = *s.CustomerName
	}
	phone := ""
	if s.CustomerPhone != nil {
		phone = *s.CustomerPhone
	}
	header := [][]string{
		{"invoice", s.ID.String()},
		{"date", s.SoldAt.Format("2006-01-02 15:04")},
		{"customer", customer},
		{"phone", phone},
		{},
		{"item", "quantity", "unit_price", "total"},
		{s.MedicineName, strconv.Itoa(s.Quantity), formatAmount(s.UnitPrice), formatAmount(s.TotalAmount)},
		{},
		{"TOTAL", "", "", formatAmount(s.TotalAmount)},
	}
	for _, row := range header {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
