package factory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/pay"
)

var csvHeader = []string{
	"id", "date", "start", "end", "ends_next_day", "break_minutes", "worked_hours",
	"base_pay", "premium_pay", "gross_pay", "vacation_pay", "total_before_tax",
	"tax", "net_pay", "red_day", "sick_day", "description", "invalid",
}

// WriteCSV writes one row per record, amounts rounded to öre.
func WriteCSV(w io.Writer, records []pay.ShiftRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range records {
		in, b := rec.Input, rec.Breakdown
		var start, end, sick string
		if in.Start != nil {
			start = in.Start.String()
		}
		if in.End != nil {
			end = in.End.String()
		}
		if in.Sick != nil {
			sick = strconv.Itoa(in.Sick.DayNumber)
		}
		row := []string{
			rec.ID,
			in.Date.String(),
			start,
			end,
			strconv.FormatBool(in.EndsNextDay),
			strconv.Itoa(b.BreakMinutes),
			money(b.WorkedHours),
			money(b.BasePay),
			money(b.PremiumPay),
			money(b.GrossPay),
			money(b.VacationPay),
			money(b.TotalBeforeTax),
			money(b.Tax),
			money(b.NetPay),
			strconv.FormatBool(in.RedDay),
			sick,
			rec.Description,
			rec.Invalid,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
