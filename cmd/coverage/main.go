// Command coverage sweeps a range of Gregorian years through a running
// Wareki API and checks that every year converts and round-trips.
//
// For each year it asks for the Japanese era label, converts the era year
// back, and does the same for Minguo years from 1912 on. Failures are
// grouped by era.
//
// Usage:
//
//	go run ./cmd/coverage -url http://localhost:8080 -start 1868 -end 2100 -o coverage.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/wareki-api/internal/api"
	"github.com/zapponejosh/wareki-api/internal/calendar"
)

// APIResponse is the envelope with data left raw for typed decoding.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.ErrorInfo  `json:"error,omitempty"`
}

// TestResult holds the result of checking a single year.
type TestResult struct {
	Year       int    `json:"year"`
	EraKey     string `json:"era_key,omitempty"`
	Label      string `json:"label,omitempty"`
	MinguoYear int    `json:"minguo_year,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Analysis holds aggregated results.
type Analysis struct {
	TotalYears   int
	TotalSuccess int
	TotalFailed  int
	ByEra        map[string]*EraStats
	AllFailures  []TestResult
}

// EraStats tracks statistics for each era.
type EraStats struct {
	Era          string `json:"era"`
	TotalYears   int    `json:"total_years"`
	SuccessYears int    `json:"success_years"`
	FailedYears  int    `json:"failed_years"`
	FailedList   []int  `json:"failed_list,omitempty"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 1868, "First year to check")
	endYear := flag.Int("end", calendar.DefaultTableCeiling, "Last year to check")
	verbose := flag.Bool("v", false, "Verbose output (show each year)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	if *endYear < *startYear {
		fmt.Println("Error: -end must not be before -start")
		os.Exit(2)
	}

	fmt.Println("================================================================")
	fmt.Println("Wareki API - Year Coverage Test")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Year Range:  %d to %d\n", *startYear, *endYear)
	fmt.Println()

	// Check if server is reachable
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	results := testAllYears(client, *baseURL, *startYear, *endYear, os.Stdout, *verbose)
	analysis := analyzeResults(results)

	printSummary(os.Stdout, analysis)
	printFailuresByEra(os.Stdout, analysis)

	// Output to file if requested
	if *outputFile != "" {
		if err := saveResults(*outputFile, analysis); err != nil {
			fmt.Printf("Error saving results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results saved to: %s\n", *outputFile)
	}

	// Exit with error code if there were failures
	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func testAllYears(client *http.Client, baseURL string, startYear, endYear int, out io.Writer, verbose bool) []TestResult {
	total := endYear - startYear + 1
	fmt.Fprintf(out, "Testing %d years...\n\n", total)

	var results []TestResult
	failed := 0
	lastProgress := -1

	for year := startYear; year <= endYear; year++ {
		result := testYear(client, baseURL, year)
		results = append(results, result)
		if !result.Success {
			failed++
		}

		// Show progress
		tested := year - startYear + 1
		progress := (tested * 100) / total
		if progress != lastProgress && progress%10 == 0 {
			fmt.Fprintf(out, "  Progress: %d%% (%d/%d) - Failures: %d\n", progress, tested, total, failed)
			lastProgress = progress
		}

		if verbose {
			status := "✓"
			if !result.Success {
				status = "✗"
			}
			fmt.Fprintf(out, "  %s %d: %s (民國 %d)\n", status, year, result.Label, result.MinguoYear)
			if !result.Success {
				fmt.Fprintf(out, "      Error: %s\n", result.Error)
			}
		}
	}

	fmt.Fprintln(out)
	return results
}

func testYear(client *http.Client, baseURL string, year int) TestResult {
	result := TestResult{Year: year}

	var conv api.EraConversion
	if err := getData(client, fmt.Sprintf("%s/api/v1/eras/year/%d", baseURL, year), &conv); err != nil {
		result.Error = fmt.Sprintf("to era: %v", err)
		return result
	}
	result.EraKey = conv.EraKey
	result.Label = conv.Label

	var back api.EraConversion
	if err := getData(client, fmt.Sprintf("%s/api/v1/eras/%s/%d", baseURL, conv.EraKey, conv.EraYear), &back); err != nil {
		result.Error = fmt.Sprintf("from era: %v", err)
		return result
	}
	if back.Year != year {
		result.Error = fmt.Sprintf("era round trip gave %d", back.Year)
		return result
	}

	if _, ok := calendar.ToMinguo(year); ok {
		var m api.MinguoConversion
		if err := getData(client, fmt.Sprintf("%s/api/v1/minguo/year/%d", baseURL, year), &m); err != nil {
			result.Error = fmt.Sprintf("to minguo: %v", err)
			return result
		}
		result.MinguoYear = m.MinguoYear

		var mb api.MinguoConversion
		if err := getData(client, fmt.Sprintf("%s/api/v1/minguo/%d", baseURL, m.MinguoYear), &mb); err != nil {
			result.Error = fmt.Sprintf("from minguo: %v", err)
			return result
		}
		if mb.Year != year {
			result.Error = fmt.Sprintf("minguo round trip gave %d", mb.Year)
			return result
		}
	}

	result.Success = true
	return result
}

func getData(client *http.Client, url string, target any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
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
			errMsg = fmt.Sprintf("%s (%s)", apiResp.Error.Message, apiResp.Error.Code)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errMsg)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		TotalYears: len(results),
		ByEra:      make(map[string]*EraStats),
	}

	for _, r := range results {
		era := r.EraKey
		if era == "" {
			era = "(none)"
		}
		stats, ok := analysis.ByEra[era]
		if !ok {
			stats = &EraStats{Era: era}
			analysis.ByEra[era] = stats
		}
		stats.TotalYears++

		if r.Success {
			analysis.TotalSuccess++
			stats.SuccessYears++
			continue
		}

		analysis.TotalFailed++
		stats.FailedYears++
		stats.FailedList = append(stats.FailedList, r.Year)
		analysis.AllFailures = append(analysis.AllFailures, r)
	}

	return analysis
}

// sortedEras returns era stats, most failures first.
func sortedEras(analysis *Analysis) []*EraStats {
	eras := make([]*EraStats, 0, len(analysis.ByEra))
	for _, s := range analysis.ByEra {
		eras = append(eras, s)
	}
	sort.Slice(eras, func(i, j int) bool {
		if eras[i].FailedYears != eras[j].FailedYears {
			return eras[i].FailedYears > eras[j].FailedYears
		}
		return eras[i].Era < eras[j].Era
	})
	return eras
}

func printSummary(out io.Writer, analysis *Analysis) {
	fmt.Fprintln(out, "================================================================")
	fmt.Fprintln(out, "SUMMARY")
	fmt.Fprintln(out, "================================================================")
	fmt.Fprintf(out, "  Total years:  %d\n", analysis.TotalYears)
	fmt.Fprintf(out, "  Passed:       %d\n", analysis.TotalSuccess)
	fmt.Fprintf(out, "  Failed:       %d\n", analysis.TotalFailed)
	fmt.Fprintln(out)

	for _, stats := range sortedEras(analysis) {
		status := "✓"
		if stats.FailedYears > 0 {
			status = "✗"
		}
		fmt.Fprintf(out, "  %s %s: %d/%d years\n", status, stats.Era, stats.SuccessYears, stats.TotalYears)
	}
	fmt.Fprintln(out)
}

func printFailuresByEra(out io.Writer, analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		fmt.Fprintln(out, "No failures!")
		return
	}

	fmt.Fprintln(out, "================================================================")
	fmt.Fprintln(out, "FAILURES")
	fmt.Fprintln(out, "================================================================")

	shown := 0
	for _, f := range analysis.AllFailures {
		if shown >= 50 {
			fmt.Fprintf(out, "  ... and %d more\n", len(analysis.AllFailures)-shown)
			break
		}
		fmt.Fprintf(out, "  %d | %s\n", f.Year, f.Error)
		shown++
	}
	fmt.Fprintln(out)
}

func saveResults(filename string, analysis *Analysis) error {
	output := struct {
		GeneratedAt string               `json:"generated_at"`
		Summary     map[string]any       `json:"summary"`
		ByEra       map[string]*EraStats `json:"by_era"`
		Failures    []TestResult         `json:"failures"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary: map[string]any{
			"total_years":   analysis.TotalYears,
			"total_success": analysis.TotalSuccess,
			"total_failed":  analysis.TotalFailed,
		},
		ByEra:    analysis.ByEra,
		Failures: analysis.AllFailures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	return os.WriteFile(filename, data, 0644)
}
