package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/pay"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// CALC
// =============================================================================

var (
	calcDate       string
	calcStart      string
	calcEnd        string
	calcNextDay    bool
	calcBreak      int
	calcBreakStart string
	calcBreakEnd   string
	calcRedDay     bool
	calcWorkplace  string
	calcJSON       bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Price one shift",
	Long: `Price one shift under the saved settings (or the configured defaults)
and print the breakdown. Red days are looked up in the calendar unless
--red-day is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		settings, s, err := loadSettings(ctx)
		if err != nil {
			return err
		}
		if calcWorkplace != "" {
			sj := factory.ToJSON(settings)
			sj.Workplace = calcWorkplace
			if settings, err = factory.NewSettingsFactory().FromJSON(sj); err != nil {
				return err
			}
		}

		entry := factory.EntryJSON{
			Date:        calcDate,
			StartTime:   calcStart,
			EndTime:     calcEnd,
			EndsNextDay: calcNextDay,
			BreakStart:  calcBreakStart,
			BreakEnd:    calcBreakEnd,
			RedDay:      calcRedDay,
		}
		if cmd.Flags().Changed("break") {
			entry.BreakMinutes = &calcBreak
		}
		in, err := factory.EntryToInput(entry)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("red-day") {
			cal := holiday.Chain{holiday.Swedish{IncludeEves: settings.IncludeEves}, s}
			in.RedDay = cal.IsHoliday(in.Date)
		}

		b, err := pay.ComputePay(in, settings.Rates)
		if err != nil {
			return err
		}

		if calcJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(factory.BreakdownToJSON(b))
		}
		printBreakdown(cmd.OutOrStdout(), in, settings.Rates.Workplace, b)
		return nil
	},
}

func printBreakdown(w io.Writer, in pay.ShiftInput, workplace pay.Workplace, b pay.PayBreakdown) {
	fmt.Fprintf(w, "Shift %s (%s)", in.Date, workplace)
	if in.RedDay {
		fmt.Fprint(w, ", red day")
	}
	fmt.Fprintln(w)

	breakNote := ""
	if b.AutoBreakApplied {
		breakNote = " (automatic)"
	}
	fmt.Fprintf(w, "  Worked:        %s h (%d min)\n", b.WorkedHours.StringFixed(2), b.WorkedMinutes)
	fmt.Fprintf(w, "  Break:         %d min%s\n", b.BreakMinutes, breakNote)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Base pay:      %12s kr\n", b.BasePay.StringFixed(2))
	for _, p := range b.Premiums {
		fmt.Fprintf(w, "    %-24s %4d min %10s kr\n", p.Label, p.Minutes, p.Amount.StringFixed(2))
	}
	fmt.Fprintf(w, "  Premium pay:   %12s kr\n", b.PremiumPay.StringFixed(2))
	fmt.Fprintf(w, "  Gross pay:     %12s kr\n", b.GrossPay.StringFixed(2))
	fmt.Fprintf(w, "  Vacation pay:  %12s kr\n", b.VacationPay.StringFixed(2))
	fmt.Fprintf(w, "  Before tax:    %12s kr\n", b.TotalBeforeTax.StringFixed(2))
	fmt.Fprintf(w, "  Tax:           %12s kr\n", b.Tax.StringFixed(2))
	fmt.Fprintf(w, "  Net pay:       %12s kr\n", b.NetPay.StringFixed(2))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

var holidaysCmd = &cobra.Command{
	Use:   "holidays [year]",
	Short: "List the red days of a year",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year := time.Now().Year()
		if len(args) == 1 {
			y, err := strconv.Atoi(args[0])
			if err != nil || y < 1 {
				return fmt.Errorf("invalid year %q", args[0])
			}
			year = y
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		settings, s, err := loadSettings(ctx)
		if err != nil {
			return err
		}

		cal := holiday.Chain{holiday.Swedish{IncludeEves: settings.IncludeEves}, s}
		for _, h := range cal.Holidays(year) {
			kind := ""
			if h.ID != "" {
				kind = "  (custom)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-3s  %s%s\n", h.Date, h.Date.Weekday().String()[:3], h.Name, kind)
		}
		return nil
	},
}

// =============================================================================
// EXPORT
// =============================================================================

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settings and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "json" && exportFormat != "csv" {
			return fmt.Errorf("unknown format %q (want json or csv)", exportFormat)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		settings, s, err := loadSettings(ctx)
		if err != nil {
			return err
		}
		entries, err := s.ListEntries(ctx, generic.Date{}, generic.Date{})
		if err != nil {
			return err
		}
		records := make([]pay.ShiftRecord, 0, len(entries))
		for _, e := range entries {
			rec, err := e.Record(settings.Rates)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			defer f.Close()
			out = f
		}

		if exportFormat == "csv" {
			err = factory.WriteCSV(out, records)
		} else {
			err = factory.ExportDocument(out, settings, records, time.Now())
		}
		if err != nil {
			return err
		}
		logger.Debug("export written", "format", exportFormat, "entries", len(records))
		return nil
	},
}

// =============================================================================
// SHARED
// =============================================================================

// loadSettings opens the store and returns the saved settings, falling back
// to the configured defaults.
func loadSettings(ctx context.Context) (factory.Settings, *sqlite.Store, error) {
	s, err := openStore()
	if err != nil {
		return factory.Settings{}, nil, err
	}
	sj := cfg.Defaults
	rec, err := s.GetSettings(ctx)
	if err != nil {
		return factory.Settings{}, nil, err
	}
	if rec != nil {
		sj = rec.Settings
	}
	settings, err := factory.NewSettingsFactory().FromJSON(sj)
	if err != nil {
		return factory.Settings{}, nil, err
	}
	return settings, s, nil
}

func init() {
	calcCmd.Flags().StringVar(&calcDate, "date", time.Now().Format("2006-01-02"), "shift date (YYYY-MM-DD)")
	calcCmd.Flags().StringVar(&calcStart, "start", "", "start time (HH:MM)")
	calcCmd.Flags().StringVar(&calcEnd, "end", "", "end time (HH:MM)")
	calcCmd.Flags().BoolVar(&calcNextDay, "next-day", false, "shift ends the following day")
	calcCmd.Flags().IntVar(&calcBreak, "break", 0, "break minutes (default: automatic)")
	calcCmd.Flags().StringVar(&calcBreakStart, "break-start", "", "break start (HH:MM)")
	calcCmd.Flags().StringVar(&calcBreakEnd, "break-end", "", "break end (HH:MM)")
	calcCmd.Flags().BoolVar(&calcRedDay, "red-day", false, "treat the date as a red day")
	calcCmd.Flags().StringVar(&calcWorkplace, "workplace", "", "retail or warehouse (overrides settings)")
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "print JSON")

	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}
