// Command apitest runs smoke checks against a running Wareki API.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 -v
//
// The checks assume the built-in holiday template and a table ceiling of 2100.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/wareki-api/internal/api"
)

// =============================================================================
// Response Types
// =============================================================================

// APIResponse is the envelope with data left raw for typed decoding.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.ErrorInfo  `json:"error,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	client       *http.Client
	out          io.Writer
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL string, client *http.Client, out io.Writer, verbose bool) *TestRunner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		out:     out,
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Wareki API Test Suite")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "Base URL: %s\n", tr.baseURL)

	// Run test groups
	tr.testHealth()
	tr.testEraConversions()
	tr.testMinguoConversions()
	tr.testDiff()
	tr.testHolidays()
	tr.testTables()
	tr.testEdgeCases()

	// Print summary
	tr.printSummary()
}

// Failed reports whether any check failed.
func (tr *TestRunner) Failed() bool {
	return tr.errorCount > 0
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (database: %s)", health.Database))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testEraConversions() {
	tr.printSection("Japanese Eras")

	testCases := []struct {
		year  int
		label string
	}{
		{1868, "明治元年"},
		{1912, "大正元年"},
		{1926, "昭和元年"},
		{1988, "昭和63年"},
		{1989, "平成元年"},
		{2018, "平成30年"},
		{2019, "令和元年"},
		{2025, "令和7年"},
	}

	for _, tc := range testCases {
		var conv api.EraConversion
		if err := tr.getData(fmt.Sprintf("/api/v1/eras/year/%d", tc.year), &conv); err != nil {
			tr.recordError(fmt.Sprint(tc.year), err.Error())
			continue
		}
		if conv.Label != tc.label {
			tr.recordError(fmt.Sprint(tc.year), fmt.Sprintf("Expected %s, got %s", tc.label, conv.Label))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%d → %s", tc.year, conv.Label))
		tr.detail(conv.Message)

		// Round trip
		var back api.EraConversion
		path := fmt.Sprintf("/api/v1/eras/%s/%d", conv.EraKey, conv.EraYear)
		if err := tr.getData(path, &back); err != nil {
			tr.recordError(path, err.Error())
		} else if back.Year != tc.year {
			tr.recordError(path, fmt.Sprintf("Expected %d, got %d", tc.year, back.Year))
		}
	}

	tr.expectStatus("/api/v1/eras/year/1867", http.StatusNotFound, "Year before Meiji rejected")
	tr.expectStatus("/api/v1/eras/showa/64", http.StatusNotFound, "Showa 64 rejected (Heisei began in 1989)")
	tr.expectStatus("/api/v1/eras/edo/1", http.StatusNotFound, "Unknown era rejected")
}

func (tr *TestRunner) testMinguoConversions() {
	tr.printSection("Minguo")

	var conv api.MinguoConversion
	if err := tr.getData("/api/v1/minguo/year/2024?lang=zh-TW", &conv); err != nil {
		tr.recordError("Minguo 2024", err.Error())
	} else if conv.MinguoYear != 113 {
		tr.recordError("Minguo 2024", fmt.Sprintf("Expected 113, got %d", conv.MinguoYear))
	} else {
		tr.recordSuccess(fmt.Sprintf("2024 → %s", conv.Label))
		tr.detail(conv.Message)
	}

	if err := tr.getData("/api/v1/minguo/1", &conv); err != nil {
		tr.recordError("Minguo 1", err.Error())
	} else if conv.Year != 1912 {
		tr.recordError("Minguo 1", fmt.Sprintf("Expected 1912, got %d", conv.Year))
	} else {
		tr.recordSuccess("民國元年 → 1912")
	}

	tr.expectStatus("/api/v1/minguo/year/1911", http.StatusNotFound, "Year before Minguo 1 rejected")
	tr.expectStatus("/api/v1/minguo/190", http.StatusNotFound, "Minguo year past the table rejected")
}

func (tr *TestRunner) testDiff() {
	tr.printSection("Date Difference")

	testCases := []struct {
		start, end string
		days       int
		swapped    bool
	}{
		{"2024-01-01", "2024-01-31", 30, false},
		{"2024-01-01", "2025-01-01", 366, false},
		{"2025-03-01", "2025-02-01", 28, true},
		{"2025-05-05", "2025-05-05", 0, false},
	}

	for _, tc := range testCases {
		var diff api.DiffResponse
		path := fmt.Sprintf("/api/v1/diff?start=%s&end=%s", tc.start, tc.end)
		if err := tr.getData(path, &diff); err != nil {
			tr.recordError(path, err.Error())
			continue
		}
		if diff.TotalDays != tc.days || diff.Swapped != tc.swapped {
			tr.recordError(path, fmt.Sprintf("Expected %d days (swapped=%v), got %d (swapped=%v)",
				tc.days, tc.swapped, diff.TotalDays, diff.Swapped))
			continue
		}
		tr.recordSuccess(diff.Summary)
	}

	tr.expectStatus("/api/v1/diff?start=2023-02-29&end=2023-03-01", http.StatusBadRequest, "Invalid date rejected")
	tr.expectStatus("/api/v1/diff?start=2024-01-01", http.StatusBadRequest, "Missing end rejected")
}

func (tr *TestRunner) testHolidays() {
	tr.printSection("Holidays")

	testCases := []struct {
		date string
		name string
		days int
	}{
		{"2025-12-31", "元日", 1},
		{"2025-05-03", "憲法記念日", 0},
		{"2025-06-01", "海の日", 50},
	}

	for _, tc := range testCases {
		var next api.NextHolidayResponse
		path := "/api/v1/holidays/next?date=" + tc.date
		if err := tr.getData(path, &next); err != nil {
			tr.recordError(path, err.Error())
			continue
		}
		if next.Name != tc.name || next.DaysUntil != tc.days {
			tr.recordError(tc.date, fmt.Sprintf("Expected %s in %d days, got %s in %d days",
				tc.name, tc.days, next.Name, next.DaysUntil))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s", tc.date, next.Detail))
	}

	resp, err := tr.getRaw("/api/v1/holidays/2025.ics")
	if err != nil {
		tr.recordError("ICS feed", err.Error())
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		tr.recordSuccess("ICS feed served")
	} else {
		tr.recordError("ICS feed", fmt.Sprintf("HTTP %d, %s", resp.StatusCode, resp.Header.Get("Content-Type")))
	}
}

func (tr *TestRunner) testTables() {
	tr.printSection("Reference Tables")

	var table api.TableResponse
	if err := tr.getData("/api/v1/tables/japanese?era=heisei", &table); err != nil {
		tr.recordError("Heisei table", err.Error())
	} else if len(table.Rows) != 30 {
		tr.recordError("Heisei table", fmt.Sprintf("Expected 30 rows, got %d", len(table.Rows)))
	} else {
		tr.recordSuccess("Heisei table has 30 rows")
	}

	if err := tr.getData("/api/v1/tables/minguo", &table); err != nil {
		tr.recordError("Minguo table", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Minguo table has %d rows (ceiling %d)", len(table.Rows), table.Ceiling))
	}

	tr.expectStatus("/api/v1/tables/export.xlsx", http.StatusOK, "Workbook export served")
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	tr.expectStatus("/api/v1/eras/year/abc", http.StatusBadRequest, "Non-numeric year rejected")
	tr.expectStatus("/api/v1/holidays/next?date=2025/12/25", http.StatusBadRequest, "Wrong date format rejected")
	tr.expectStatus("/api/v1/unknown", http.StatusNotFound, "Unknown route returns 404")

	var conv api.EraConversion
	if err := tr.getData("/api/v1/eras/year/2019?lang=en", &conv); err != nil {
		tr.recordError("English message", err.Error())
	} else if !strings.Contains(conv.Message, "age:") {
		tr.recordError("English message", fmt.Sprintf("Unexpected message %q", conv.Message))
	} else {
		tr.recordSuccess("English messages via ?lang=en")
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) getData(path string, target any) error {
	resp, err := tr.getRaw(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) expectStatus(path string, status int, description string) {
	resp, err := tr.getRaw(path)
	if err != nil {
		tr.recordError(path, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode == status {
		tr.recordSuccess(description)
	} else {
		tr.recordError(path, fmt.Sprintf("Expected HTTP %d, got %d", status, resp.StatusCode))
	}
}

func (tr *TestRunner) printSection(name string) {
	fmt.Fprintln(tr.out)
	fmt.Fprintf(tr.out, "--- %s ---\n", name)
	fmt.Fprintln(tr.out)
}

func (tr *TestRunner) detail(msg string) {
	if tr.verbose && msg != "" {
		fmt.Fprintf(tr.out, "    %s\n", msg)
	}
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Fprintf(tr.out, "  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Fprintf(tr.out, "  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Summary")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "  Passed: %d\n", tr.successCount)
	fmt.Fprintf(tr.out, "  Failed: %d\n", tr.errorCount)
	fmt.Fprintln(tr.out)

	if tr.errorCount > 0 {
		fmt.Fprintln(tr.out, "Failures:")
		for _, err := range tr.errors {
			fmt.Fprintf(tr.out, "  • %s\n", err)
		}
		fmt.Fprintln(tr.out)
		fmt.Fprintf(tr.out, "Tests completed with %d failure(s)\n", tr.errorCount)
		return
	}

	fmt.Fprintln(tr.out, "All tests passed! ✓")
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show localized messages)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, nil, os.Stdout, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.Failed() {
		os.Exit(1)
	}
}
