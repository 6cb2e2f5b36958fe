package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/thaivisachecklist/server/internal/locale"
	"github.com/thaivisachecklist/server/internal/reporting"
)

// now is replaced in tests.
var now = time.Now

func newNinetyDayCommand() *cobra.Command {
	var (
		base    string
		icsPath string
		lang    string
	)

	cmd := &cobra.Command{
		Use:   "ninety-day",
		Short: "Calculate the next 90-day report window",
		Long: `Calculate the 90-day report due date and filing window for a base date
(your last entry or last report), and optionally write a calendar reminder.

Examples:
  server ninety-day --base 2026-10-16
  server ninety-day --base "16 Oct 2026" --ics reminder.ics
  server ninety-day --base 2026-10-16 --locale th`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := locale.FromAcceptLanguage(lang)
			result, ok := reporting.NewCalculator(nil).Calculate(base, formatter)
			if !ok {
				return fmt.Errorf("invalid base date %q", base)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Base date:   %s\n", formatter.FormatLong(result.Base.Time()))
			fmt.Fprintf(out, "Due date:    %s\n", formatter.FormatLong(result.Due.Time()))
			fmt.Fprintf(out, "Window:      %s to %s\n",
				formatter.FormatLong(result.Open.Time()), formatter.FormatLong(result.Close.Time()))
			fmt.Fprintf(out, "Google link: %s\n", result.GoogleURL)
			if result.Contains(reporting.DateOf(now())) {
				fmt.Fprintln(out, "The reporting window is open today.")
			}

			if icsPath != "" {
				if err := os.WriteFile(icsPath, []byte(result.ICS), 0o644); err != nil {
					return fmt.Errorf("write calendar file: %w", err)
				}
				fmt.Fprintf(out, "Reminder written to %s\n", icsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "last entry or report date (YYYY-MM-DD or a written date)")
	cmd.Flags().StringVar(&icsPath, "ics", "", "write an iCalendar reminder to this file")
	cmd.Flags().StringVar(&lang, "locale", "", "language for formatted dates, as an Accept-Language value")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}
