package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/config"
	"github.com/zapponejosh/wareki-api/internal/database"
	"github.com/zapponejosh/wareki-api/internal/locale"
	"github.com/zapponejosh/wareki-api/internal/logger"
)

// app is the state shared by every subcommand.
type app struct {
	clock      calendar.Clock
	eras       *calendar.EraTable
	holidays   *calendar.HolidayCalendar
	translator *locale.Translator

	// flags
	lang     string
	ceiling  int
	dbPath   string
	template string
}

// newRootCommand builds the command tree. clock decides what "today" is.
func newRootCommand(clock calendar.Clock) *cobra.Command {
	a := &app{
		clock: clock,
		eras:  calendar.NewJapaneseEraTable(),
	}

	root := &cobra.Command{
		Use:           "wareki",
		Short:         "Japanese era and Minguo calendar conversions",
		Long:          "wareki converts Gregorian years to Japanese eras and Minguo years and back, measures the days between two dates and finds the next Japanese public holiday.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.lang, "lang", config.LangJapanese, "Output language (ja, zh-TW, en)")
	root.PersistentFlags().IntVar(&a.ceiling, "ceiling", calendar.DefaultTableCeiling, "Last year shown in tables and accepted for Minguo lookups")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database holding holiday templates")
	root.PersistentFlags().StringVar(&a.template, "template", "ja-2025", "Holiday template to load from --db")

	root.AddCommand(
		a.newEraCommand(),
		a.newFromEraCommand(),
		a.newMinguoCommand(),
		a.newFromMinguoCommand(),
		a.newDiffCommand(),
		a.newNextHolidayCommand(),
		a.newTableCommand(),
	)
	return root
}

// setup loads translations and the holiday template.
func (a *app) setup(ctx context.Context) error {
	if a.ceiling < 1912 || a.ceiling > 9999 {
		return fmt.Errorf("--ceiling must be between 1912 and 9999")
	}

	translator, err := locale.New(config.LangJapanese, logger.Discard())
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	a.translator = translator
	a.lang = translator.Resolve(a.lang, "")

	if a.dbPath == "" {
		a.holidays = calendar.NewDefaultHolidayCalendar()
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	db, err := database.Open(database.DefaultConfig(a.dbPath), logger.Discard())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	a.holidays, err = calendar.LoadHolidayCalendar(ctx, db, a.template)
	return err
}

func (a *app) msg(id string, data map[string]any) string {
	return a.translator.Message(a.lang, id, data)
}

// fail returns the localized message as the command error.
func (a *app) fail(id string, data map[string]any) error {
	return errors.New(a.msg(id, data))
}

func (a *app) ageText(year int) string {
	age, ok := calendar.AgeInYear(year, calendar.Today(a.clock).Year)
	return locale.Age(age, ok)
}

func (a *app) newEraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "era YEAR",
		Short: "Convert a Gregorian year to a Japanese era year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := calendar.ParseYear(args[0])
			if err != nil {
				return a.fail(locale.MsgInvalidYear, nil)
			}
			label, ok := a.eras.ToEraLabel(year)
			if !ok {
				return a.fail(locale.MsgEraNotFound, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.msg(locale.MsgEraFromYear, map[string]any{
				"Year":  year,
				"Label": label,
				"Age":   a.ageText(year),
			}))
			return nil
		},
	}
}

func (a *app) newFromEraCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "from-era KEY YEAR",
		Short: "Convert a Japanese era year to a Gregorian year",
		Example: "  wareki from-era reiwa 7\n" +
			"  wareki from-era showa 64",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			n, err := calendar.ParseYear(args[1])
			if err != nil {
				return a.fail(locale.MsgInvalidEraYear, nil)
			}
			era, ok := a.eras.ByKey(key)
			if !ok {
				return a.fail(locale.MsgUnknownEra, map[string]any{"Key": key})
			}
			year, ok := a.eras.FromEraLabel(key, n)
			if !ok {
				return a.fail(locale.MsgEraOutOfRange, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.msg(locale.MsgYearFromEra, map[string]any{
				"Label": calendar.FormatEraYear(era.Name, n),
				"Year":  year,
				"Age":   a.ageText(year),
			}))
			return nil
		},
	}
}

func (a *app) newMinguoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "minguo YEAR",
		Short: "Convert a Gregorian year to a Minguo year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := calendar.ParseYear(args[0])
			if err != nil {
				return a.fail(locale.MsgInvalidYear, nil)
			}
			m, ok := calendar.ToMinguo(year)
			if !ok {
				return a.fail(locale.MsgMinguoNotFound, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.msg(locale.MsgMinguoFromYear, map[string]any{
				"Year":       year,
				"MinguoYear": m,
				"Age":        a.ageText(year),
			}))
			return nil
		},
	}
}

func (a *app) newFromMinguoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "from-minguo YEAR",
		Short: "Convert a Minguo year to a Gregorian year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := calendar.ParseYear(args[0])
			if err != nil {
				return a.fail(locale.MsgInvalidMinguoYear, nil)
			}
			year, ok := calendar.FromMinguo(n)
			if !ok || year > a.ceiling {
				return a.fail(locale.MsgMinguoOutOfRange, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.msg(locale.MsgYearFromMinguo, map[string]any{
				"MinguoYear": n,
				"Year":       year,
				"Age":        a.ageText(year),
			}))
			return nil
		},
	}
}

func (a *app) newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff START END",
		Short: "Count the days between two YYYY-MM-DD dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := calendar.Diff(args[0], args[1])
			if err != nil {
				return a.fail(locale.MsgInvalidDate, nil)
			}

			summary := a.msg(locale.MsgDiffSummary, map[string]any{
				"Start": res.Start.String(),
				"End":   res.End.String(),
				"Days":  res.TotalDays,
			})
			if res.Swapped {
				summary += a.msg(locale.MsgDiffSwapped, nil)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, summary)
			fmt.Fprintf(out, "weeks\t%.2f\nmonths\t%.2f\nyears\t%.3f\n", res.ApproxWeeks, res.ApproxMonths, res.ApproxYears)
			return nil
		},
	}
}

func (a *app) newNextHolidayCommand() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "next-holiday",
		Short: "Show the next Japanese public holiday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := calendar.Today(a.clock)
			if date != "" {
				d, err := calendar.ParseDate(date)
				if err != nil {
					return a.fail(locale.MsgInvalidDate, nil)
				}
				ref = d
			}

			next := a.holidays.NextHoliday(ref)
			days := calendar.DaysUntil(ref, next)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.msg(locale.MsgNextHoliday, map[string]any{"Name": next.Name}))
			fmt.Fprintln(out, a.msg(locale.MsgNextHolidayDetail, map[string]any{
				"Month": int(next.Date.Month),
				"Day":   next.Date.Day,
				"Days":  days,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Reference date (YYYY-MM-DD, default today)")
	return cmd
}

func (a *app) newTableCommand() *cobra.Command {
	var (
		era    string
		minguo bool
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print a year-by-year reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := calendar.Today(a.clock).Year

			var rows []calendar.YearRow
			switch {
			case minguo:
				rows = calendar.MinguoRows(a.ceiling, current)
			case era != "":
				var ok bool
				rows, ok = a.eras.RowsForEra(era, a.ceiling, current)
				if !ok {
					return a.fail(locale.MsgUnknownEra, map[string]any{"Key": era})
				}
			default:
				rows = a.eras.Rows(a.ceiling, current)
			}

			return writeTable(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&era, "era", "", "Only rows of this era (meiji, taisho, showa, heisei, reiwa)")
	cmd.Flags().BoolVar(&minguo, "minguo", false, "Print the Minguo table instead")
	cmd.MarkFlagsMutuallyExclusive("era", "minguo")
	return cmd
}

func writeTable(w io.Writer, rows []calendar.YearRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		age := locale.NoAge
		if r.Age != nil {
			age = strconv.Itoa(*r.Age)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Year, r.Label, age)
	}
	return tw.Flush()
}
