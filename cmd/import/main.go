// Command import stores a holiday template in the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -csv syukujitsu.csv -sjis -year 2025 -name ja-2025 -db data/wareki.db
//	go run ./cmd/import -builtin -name ja-2025 -db data/wareki.db
//	go run ./cmd/import -list -db data/wareki.db
//	go run ./cmd/import -delete ja-2024 -db data/wareki.db
//
// The CSV is the Cabinet Office holiday list: a header row followed by
// "YYYY/M/D,name" rows. The official file is Shift_JIS encoded (-sjis).
// With -year only rows of that year are kept, which is how a published
// list becomes a fixed month/day template.
//
// Importing a name that already exists fails unless -replace is given.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/database"
)

// options are the parsed command line flags.
type options struct {
	csvPath string
	dbPath  string
	name    string
	year    int
	sjis    bool
	builtin bool
	replace bool
	list    bool
	remove  string
}

func main() {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "Path to holiday CSV file")
	flag.StringVar(&opts.dbPath, "db", "data/wareki.db", "Path to SQLite database")
	flag.StringVar(&opts.name, "name", "", "Template name (default ja-<year>)")
	flag.IntVar(&opts.year, "year", 0, "Keep only rows of this year (0 keeps all)")
	flag.BoolVar(&opts.sjis, "sjis", false, "CSV is Shift_JIS encoded")
	flag.BoolVar(&opts.builtin, "builtin", false, "Store the built-in template instead of reading a CSV")
	flag.BoolVar(&opts.replace, "replace", false, "Replace an existing template with the same name")
	flag.BoolVar(&opts.list, "list", false, "List stored templates and exit")
	flag.StringVar(&opts.remove, "delete", "", "Delete the named template and exit")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(context.Background(), opts, os.Stdout, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	startTime := time.Now()

	if err := opts.resolve(); err != nil {
		return err
	}

	if opts.list || opts.remove != "" {
		db, err := openDB(ctx, opts.dbPath, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if opts.list {
			return listTemplates(ctx, db, out)
		}
		if err := db.DeleteTemplate(ctx, opts.remove); err != nil {
			return fmt.Errorf("delete template %q: %w", opts.remove, err)
		}
		fmt.Fprintf(out, "Deleted template %s\n", opts.remove)
		return nil
	}

	// =========================================================================
	// Step 1: Collect entries
	// =========================================================================
	var (
		entries []calendar.HolidayEntry
		source  string
	)
	if opts.builtin {
		entries = calendar.DefaultHolidayTemplate()
		source = "builtin"
	} else {
		logger.Info("reading CSV file", slog.String("path", opts.csvPath))

		f, err := os.Open(opts.csvPath)
		if err != nil {
			return fmt.Errorf("open CSV file: %w", err)
		}
		defer f.Close()

		entries, err = readEntries(f, opts.sjis, opts.year)
		if err != nil {
			return fmt.Errorf("parse CSV: %w", err)
		}
		source = opts.csvPath
	}

	if err := validateEntries(calendar.NewEntryValidator(), entries); err != nil {
		return err
	}
	logger.Info("entries ready", slog.Int("entries", len(entries)), slog.String("source", source))

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	db, err := openDB(ctx, opts.dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// =========================================================================
	// Step 3: Store the template
	// =========================================================================
	tpl, err := db.SaveTemplate(ctx, opts.name, &source, toRows(entries), opts.replace)
	if errors.Is(err, database.ErrDuplicate) {
		return fmt.Errorf("template %q already exists (use -replace)", opts.name)
	}
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}

	elapsed := time.Since(startTime)

	// Print summary
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Import Summary ===")
	fmt.Fprintf(out, "Template:            %s\n", tpl.Name)
	fmt.Fprintf(out, "Entries imported:    %d\n", tpl.Entries)
	fmt.Fprintf(out, "Source:              %s\n", source)
	fmt.Fprintf(out, "Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// openDB opens the store and brings its schema up to date.
func openDB(ctx context.Context, path string, logger *slog.Logger) (*database.DB, error) {
	logger.Info("opening database", slog.String("path", path))

	db, err := database.Open(database.DefaultConfig(path), logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrated, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))
	return db, nil
}

func listTemplates(ctx context.Context, db *database.DB, out io.Writer) error {
	templates, err := db.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(templates) == 0 {
		fmt.Fprintln(out, "No templates stored")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENTRIES\tSOURCE\tCREATED")
	for _, t := range templates {
		source := "-"
		if t.Source != nil {
			source = *t.Source
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", t.Name, t.Entries, source, t.CreatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

// resolve checks flag combinations and fills in the default template name.
func (o *options) resolve() error {
	if o.list && o.remove != "" {
		return errors.New("-list and -delete cannot be combined")
	}
	if o.list || o.remove != "" {
		if o.builtin || o.csvPath != "" {
			return errors.New("-list and -delete do not import; drop -csv and -builtin")
		}
		return nil
	}
	if o.builtin == (o.csvPath != "") {
		return errors.New("exactly one of -csv or -builtin is required")
	}
	if o.year < 0 || o.year > 9999 {
		return fmt.Errorf("invalid -year %d", o.year)
	}
	if o.name == "" {
		if o.year == 0 {
			return errors.New("-name is required when -year is not set")
		}
		o.name = fmt.Sprintf("ja-%d", o.year)
	}
	return nil
}

// readEntries decodes r and parses it as a Cabinet Office holiday CSV.
func readEntries(r io.Reader, sjis bool, year int) ([]calendar.HolidayEntry, error) {
	if sjis {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}
	return parseCSV(r, year)
}

// parseCSV reads "YYYY/M/D,name" rows. A first row whose date column does
// not parse is treated as the header. year > 0 keeps only that year's rows.
func parseCSV(r io.Reader, year int) ([]calendar.HolidayEntry, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var entries []calendar.HolidayEntry
	lineNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum+1, err)
		}
		lineNum++

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", lineNum, len(record))
		}

		dateStr := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		name := strings.TrimSpace(record[1])
		if dateStr == "" || name == "" {
			continue
		}

		t, err := time.Parse("2006/1/2", dateStr)
		if err != nil {
			if lineNum == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid date %q: %w", lineNum, dateStr, err)
		}

		if year > 0 && t.Year() != year {
			continue
		}

		entries = append(entries, calendar.HolidayEntry{
			Month: t.Month(),
			Day:   t.Day(),
			Name:  name,
		})
	}

	if len(entries) == 0 {
		if year > 0 {
			return nil, fmt.Errorf("no holidays found for %d", year)
		}
		return nil, errors.New("no holidays found")
	}
	return entries, nil
}

// validateEntries checks every entry with the calendar's validator, which
// covers field ranges and month lengths.
func validateEntries(v *validator.Validate, entries []calendar.HolidayEntry) error {
	for i, e := range entries {
		if err := v.Struct(e); err != nil {
			return fmt.Errorf("entry %d (%s): %w: %w", i+1, e.Name, calendar.ErrInvalidHoliday, err)
		}
	}
	return nil
}

func toRows(entries []calendar.HolidayEntry) []database.HolidayEntry {
	rows := make([]database.HolidayEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, database.HolidayEntry{
			Month: int(e.Month),
			Day:   e.Day,
			Name:  e.Name,
		})
	}
	return rows
}
