package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/wareki-api/internal/calendar"
	"github.com/zapponejosh/wareki-api/internal/config"
	"github.com/zapponejosh/wareki-api/internal/database"
	"github.com/zapponejosh/wareki-api/internal/export"
	"github.com/zapponejosh/wareki-api/internal/locale"
	"github.com/zapponejosh/wareki-api/internal/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	eras       *calendar.EraTable
	holidays   *calendar.HolidayCalendar
	db         *database.DB // nil when running on the built-in template
	translator *locale.Translator
	metrics    *Metrics
	clock      calendar.Clock
	cfg        *config.Config
	logger     *slog.Logger
}

// NewHandlers creates a new Handlers instance. db may be nil.
func NewHandlers(db *database.DB, holidays *calendar.HolidayCalendar, translator *locale.Translator, metrics *Metrics, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{
		eras:       calendar.NewJapaneseEraTable(),
		holidays:   holidays,
		db:         db,
		translator: translator,
		metrics:    metrics,
		clock:      calendar.RealClock{},
		cfg:        cfg,
		logger:     log,
	}
}

// WithClock replaces the clock used for "today".
func (h *Handlers) WithClock(c calendar.Clock) *Handlers {
	h.clock = c
	return h
}

// =============================================================================
// Response types
// =============================================================================

// EraConversion is a Gregorian year paired with its Japanese era year.
type EraConversion struct {
	Year    int    `json:"year"`
	EraKey  string `json:"era_key"`
	EraName string `json:"era_name"`
	EraYear int    `json:"era_year"`
	Label   string `json:"label"`
	Age     *int   `json:"age"`
	Message string `json:"message"`
}

// MinguoConversion is a Gregorian year paired with its Minguo year.
type MinguoConversion struct {
	Year       int    `json:"year"`
	MinguoYear int    `json:"minguo_year"`
	Label      string `json:"label"`
	Age        *int   `json:"age"`
	Message    string `json:"message"`
}

// DiffResponse adds the era labels of both dates and a summary sentence.
type DiffResponse struct {
	calendar.DiffResult
	StartWareki string `json:"start_wareki,omitempty"`
	EndWareki   string `json:"end_wareki,omitempty"`
	StartMinguo int    `json:"start_minguo,omitempty"`
	EndMinguo   int    `json:"end_minguo,omitempty"`
	Summary     string `json:"summary"`
}

// NextHolidayResponse is the next holiday counted from Reference.
type NextHolidayResponse struct {
	Reference calendar.Date `json:"reference"`
	Date      calendar.Date `json:"date"`
	Name      string        `json:"name"`
	DaysUntil int           `json:"days_until"`
	Message   string        `json:"message"`
	Detail    string        `json:"detail"`
}

// TableResponse is a reference table.
type TableResponse struct {
	Era         string             `json:"era,omitempty"`
	Ceiling     int                `json:"ceiling"`
	CurrentYear int                `json:"current_year"`
	Rows        []calendar.YearRow `json:"rows"`
}

// =============================================================================
// Health
// =============================================================================

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":   "healthy",
		"database": "disabled",
	}

	if h.db != nil {
		if err := h.db.Health(r.Context()); err != nil {
			logger.Warn(r.Context(), "health check failed", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeUnhealthy)
			return
		}
		status["database"] = "ok"
	}

	WriteSuccess(w, status)
}

// NotFound handles unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteNotFound(w, "Route not found")
}

// TooManyRequests is called by the rate limiter.
func (h *Handlers) TooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	if h.metrics != nil {
		h.metrics.RateLimited()
	}
	WriteTooManyRequests(w, h.msg(h.lang(r), locale.MsgTooManyRequests, nil), retryAfter)
}

// =============================================================================
// Japanese eras
// =============================================================================

// ListEras handles GET /api/v1/eras
func (h *Handlers) ListEras(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]any{
		"japanese": h.eras.Eras(),
		"minguo":   calendar.MinguoEra(),
	})
}

// EraByYear handles GET /api/v1/eras/year/{year}
func (h *Handlers) EraByYear(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)

	year, err := calendar.ParseYear(chi.URLParam(r, "year"))
	if err != nil {
		h.conversion(KindToEra, OutcomeInvalid)
		WriteBadRequest(w, h.msg(lang, locale.MsgInvalidYear, nil))
		return
	}

	conv, ok := h.eraConversion(lang, year)
	if !ok {
		h.conversion(KindToEra, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgEraNotFound, nil))
		return
	}

	h.conversion(KindToEra, OutcomeOK)
	WriteSuccess(w, conv)
}

// YearByEra handles GET /api/v1/eras/{key}/{eraYear}
func (h *Handlers) YearByEra(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	key := chi.URLParam(r, "key")

	eraYear, err := calendar.ParseYear(chi.URLParam(r, "eraYear"))
	if err != nil {
		h.conversion(KindFromEra, OutcomeInvalid)
		WriteBadRequest(w, h.msg(lang, locale.MsgInvalidEraYear, nil))
		return
	}

	if _, ok := h.eras.ByKey(key); !ok {
		h.conversion(KindFromEra, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgUnknownEra, map[string]any{"Key": key}))
		return
	}

	year, ok := h.eras.FromEraLabel(key, eraYear)
	if !ok {
		h.conversion(KindFromEra, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgEraOutOfRange, nil))
		return
	}

	conv, ok := h.eraConversion(lang, year)
	if !ok {
		h.conversion(KindFromEra, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgEraOutOfRange, nil))
		return
	}
	conv.Message = h.msg(lang, locale.MsgYearFromEra, map[string]any{
		"Label": conv.Label,
		"Year":  year,
		"Age":   ageText(conv.Age),
	})

	h.conversion(KindFromEra, OutcomeOK)
	WriteSuccess(w, conv)
}

// CurrentEra handles GET /api/v1/eras/current
func (h *Handlers) CurrentEra(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	today := calendar.Today(h.clock)

	data := map[string]any{"date": today}

	if ey, ok := h.eras.Current(h.clock); ok {
		data["era"], _ = h.eraConversion(lang, ey.Gregorian())
	}
	if n, ok := calendar.CurrentMinguoYear(h.clock); ok {
		data["minguo"], _ = h.minguoConversion(lang, calendar.MinguoOffset+n)
	}

	WriteSuccess(w, data)
}

// =============================================================================
// Minguo
// =============================================================================

// MinguoByYear handles GET /api/v1/minguo/year/{year}
func (h *Handlers) MinguoByYear(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)

	year, err := calendar.ParseYear(chi.URLParam(r, "year"))
	if err != nil {
		h.conversion(KindToMinguo, OutcomeInvalid)
		WriteBadRequest(w, h.msg(lang, locale.MsgInvalidYear, nil))
		return
	}

	conv, ok := h.minguoConversion(lang, year)
	if !ok {
		h.conversion(KindToMinguo, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgMinguoNotFound, nil))
		return
	}

	h.conversion(KindToMinguo, OutcomeOK)
	WriteSuccess(w, conv)
}

// YearByMinguo handles GET /api/v1/minguo/{minguoYear}
//
// Results past the table ceiling are out of range here even though the
// converter itself has no upper bound.
func (h *Handlers) YearByMinguo(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)

	n, err := calendar.ParseYear(chi.URLParam(r, "minguoYear"))
	if err != nil {
		h.conversion(KindFromMinguo, OutcomeInvalid)
		WriteBadRequest(w, h.msg(lang, locale.MsgInvalidMinguoYear, nil))
		return
	}

	year, ok := calendar.FromMinguo(n)
	if !ok || year > h.cfg.TableCeiling {
		h.conversion(KindFromMinguo, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgMinguoOutOfRange, nil))
		return
	}

	conv, ok := h.minguoConversion(lang, year)
	if !ok {
		h.conversion(KindFromMinguo, OutcomeOutOfRange)
		WriteOutOfRange(w, h.msg(lang, locale.MsgMinguoOutOfRange, nil))
		return
	}
	conv.Message = h.msg(lang, locale.MsgYearFromMinguo, map[string]any{
		"MinguoYear": n,
		"Year":       year,
		"Age":        ageText(conv.Age),
	})

	h.conversion(KindFromMinguo, OutcomeOK)
	WriteSuccess(w, conv)
}

// =============================================================================
// Date difference
// =============================================================================

// Diff handles GET /api/v1/diff?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) Diff(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)
	q := r.URL.Query()

	result, err := calendar.Diff(q.Get("start"), q.Get("end"))
	if err != nil {
		logger.Debug(r.Context(), "diff rejected", slog.Any("error", err))
		h.conversion(KindDiff, OutcomeInvalid)
		WriteBadRequest(w, h.msg(lang, locale.MsgInvalidDate, nil))
		return
	}

	resp := DiffResponse{DiffResult: result}
	resp.StartWareki, _ = h.eras.ToEraLabel(result.Start.Year)
	resp.EndWareki, _ = h.eras.ToEraLabel(result.End.Year)
	resp.StartMinguo, _ = calendar.ToMinguo(result.Start.Year)
	resp.EndMinguo, _ = calendar.ToMinguo(result.End.Year)

	resp.Summary = h.msg(lang, locale.MsgDiffSummary, map[string]any{
		"Start": result.Start.String(),
		"End":   result.End.String(),
		"Days":  result.TotalDays,
	})
	if result.Swapped {
		resp.Summary += h.msg(lang, locale.MsgDiffSwapped, nil)
	}

	h.conversion(KindDiff, OutcomeOK)
	WriteSuccess(w, resp)
}

// =============================================================================
// Holidays
// =============================================================================

// NextHoliday handles GET /api/v1/holidays/next[?date=YYYY-MM-DD]
func (h *Handlers) NextHoliday(w http.ResponseWriter, r *http.Request) {
	lang := h.lang(r)

	ref := calendar.Today(h.clock)
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := calendar.ParseDate(s)
		if err != nil {
			h.conversion(KindNextHoliday, OutcomeInvalid)
			WriteBadRequest(w, h.msg(lang, locale.MsgInvalidDate, nil))
			return
		}
		ref = d
	}

	next := h.holidays.NextHoliday(ref)
	days := calendar.DaysUntil(ref, next)

	h.conversion(KindNextHoliday, OutcomeOK)
	WriteSuccess(w, NextHolidayResponse{
		Reference: ref,
		Date:      next.Date,
		Name:      next.Name,
		DaysUntil: days,
		Message:   h.msg(lang, locale.MsgNextHoliday, map[string]any{"Name": next.Name}),
		Detail: h.msg(lang, locale.MsgNextHolidayDetail, map[string]any{
			"Month": int(next.Date.Month),
			"Day":   next.Date.Day,
			"Days":  days,
		}),
	})
}

// ListHolidays handles GET /api/v1/holidays[?year=YYYY]
func (h *Handlers) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := calendar.Today(h.clock).Year
	if s := r.URL.Query().Get("year"); s != "" {
		y, ok := h.parseCalendarYear(w, r, s)
		if !ok {
			return
		}
		year = y
	}

	WriteSuccess(w, map[string]any{
		"year":     year,
		"holidays": h.holidays.HolidaysInYear(year),
	})
}

// HolidayFeed handles GET /api/v1/holidays/{year}.ics
func (h *Handlers) HolidayFeed(w http.ResponseWriter, r *http.Request) {
	year, ok := h.parseCalendarYear(w, r, chi.URLParam(r, "year"))
	if !ok {
		return
	}

	name := fmt.Sprintf("日本の祝日 %d", year)
	data, err := export.HolidayFeed(h.holidays.HolidaysInYear(year), name, h.clock.Now())
	if err != nil {
		logger.Error(r.Context(), "failed to build holiday feed", err, slog.Int("year", year))
		WriteInternalError(w, "Failed to build holiday feed")
		return
	}

	WriteFile(w, "text/calendar; charset=utf-8", fmt.Sprintf("holidays-%d.ics", year), data)
}

// =============================================================================
// Reference tables
// =============================================================================

// JapaneseTable handles GET /api/v1/tables/japanese[?era=key]
func (h *Handlers) JapaneseTable(w http.ResponseWriter, r *http.Request) {
	current := calendar.Today(h.clock).Year
	resp := TableResponse{Ceiling: h.cfg.TableCeiling, CurrentYear: current}

	if key := r.URL.Query().Get("era"); key != "" {
		rows, ok := h.eras.RowsForEra(key, h.cfg.TableCeiling, current)
		if !ok {
			WriteOutOfRange(w, h.msg(h.lang(r), locale.MsgUnknownEra, map[string]any{"Key": key}))
			return
		}
		resp.Era = key
		resp.Rows = rows
	} else {
		resp.Rows = h.eras.Rows(h.cfg.TableCeiling, current)
	}

	if resp.Rows == nil {
		resp.Rows = []calendar.YearRow{}
	}
	WriteSuccess(w, resp)
}

// MinguoTable handles GET /api/v1/tables/minguo
func (h *Handlers) MinguoTable(w http.ResponseWriter, r *http.Request) {
	current := calendar.Today(h.clock).Year
	WriteSuccess(w, TableResponse{
		Era:         calendar.MinguoKey,
		Ceiling:     h.cfg.TableCeiling,
		CurrentYear: current,
		Rows:        calendar.MinguoRows(h.cfg.TableCeiling, current),
	})
}

// ExportTables handles GET /api/v1/tables/export.xlsx
func (h *Handlers) ExportTables(w http.ResponseWriter, r *http.Request) {
	current := calendar.Today(h.clock).Year

	buf, err := export.ReferenceWorkbook(
		h.eras.Rows(h.cfg.TableCeiling, current),
		calendar.MinguoRows(h.cfg.TableCeiling, current),
	)
	if err != nil {
		logger.Error(r.Context(), "failed to build workbook", err)
		WriteInternalError(w, "Failed to build workbook")
		return
	}

	WriteFile(w, xlsxContentType, "wareki.xlsx", buf.Bytes())
}

// =============================================================================
// Helpers
// =============================================================================

// lang picks the response language from ?lang= or Accept-Language.
func (h *Handlers) lang(r *http.Request) string {
	return h.translator.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func (h *Handlers) msg(lang, id string, data map[string]any) string {
	return h.translator.Message(lang, id, data)
}

func (h *Handlers) conversion(kind, outcome string) {
	if h.metrics != nil {
		h.metrics.Conversion(kind, outcome)
	}
}

func (h *Handlers) age(year int) *int {
	if age, ok := calendar.AgeInYear(year, calendar.Today(h.clock).Year); ok {
		return &age
	}
	return nil
}

func (h *Handlers) eraConversion(lang string, year int) (EraConversion, bool) {
	ey, ok := h.eras.EraYearOf(year)
	if !ok {
		return EraConversion{}, false
	}

	conv := EraConversion{
		Year:    year,
		EraKey:  ey.Era.Key,
		EraName: ey.Era.Name,
		EraYear: ey.Year,
		Label:   ey.Label(),
		Age:     h.age(year),
	}
	conv.Message = h.msg(lang, locale.MsgEraFromYear, map[string]any{
		"Year":  year,
		"Label": conv.Label,
		"Age":   ageText(conv.Age),
	})
	return conv, true
}

func (h *Handlers) minguoConversion(lang string, year int) (MinguoConversion, bool) {
	n, ok := calendar.ToMinguo(year)
	if !ok {
		return MinguoConversion{}, false
	}

	conv := MinguoConversion{
		Year:       year,
		MinguoYear: n,
		Label:      calendar.MinguoLabel(n),
		Age:        h.age(year),
	}
	conv.Message = h.msg(lang, locale.MsgMinguoFromYear, map[string]any{
		"Year":       year,
		"MinguoYear": n,
		"Age":        ageText(conv.Age),
	})
	return conv, true
}

// parseCalendarYear parses a year that must fall in 1..9999, writing a 400
// and reporting false otherwise.
func (h *Handlers) parseCalendarYear(w http.ResponseWriter, r *http.Request, s string) (int, bool) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 1 || year > 9999 {
		WriteBadRequest(w, h.msg(h.lang(r), locale.MsgInvalidYear, nil))
		return 0, false
	}
	return year, true
}

func ageText(age *int) string {
	if age == nil {
		return locale.Age(0, false)
	}
	return locale.Age(*age, true)
}
