package order

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportMaxRows caps CSV exports; pagination is ignored in export mode.
const ExportMaxRows = 5000

var exportHeader = []string{
	"id", "status", "paymentMethod", "paymentStatus", "totalAmount",
	"customerName", "customerEmail", "pickupLocation", "pickupSchedule", "createdAt",
}

// WriteCSV emits one header line plus one line per order with the fixed
// column set. Every field is quoted, with embedded quotes doubled. Empty
// columns are emitted as empty quoted fields, never omitted.
func WriteCSV(w io.Writer, orders []Order) error {
	if err := writeRecord(w, exportHeader); err != nil {
		return err
	}
	for i := range orders {
		o := &orders[i]
		pickupLocation := ""
		if o.PickupLocation != nil {
			pickupLocation = *o.PickupLocation
		}
		pickupSchedule := ""
		if o.PickupSchedule != nil {
			pickupSchedule = o.PickupSchedule.Format(time.RFC3339)
		}
		record := []string{
			o.ID,
			string(o.Status),
			string(o.PaymentMethod),
			o.PaymentStatus,
			o.TotalAmount.StringFixed(2),
			o.CustomerName,
			o.CustomerEmail,
			pickupLocation,
			pickupSchedule,
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := writeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := fmt.Fprintln(w, strings.Join(quoted, ","))
	return err
}
