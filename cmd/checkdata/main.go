// Command checkdata performs end-to-end integrity checks against a WPC
// verification store for one date: the availability index, every product
// artifact for each listed MPD, and the MPD metadata block. It is the tool
// to reach for when the dashboard shows load errors and the question is
// whether the store or the dashboard is at fault.
//
// Usage:
//
//	go run ./cmd/checkdata -date 20240915
//	go run ./cmd/checkdata -base http://localhost:3001 -date 20240915 -number 12
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/coordinator"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/observability"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	base := flag.String("base", "https://origin.wpc.ncep.noaa.gov/verification/mpd_verif/", "verification store base URL")
	dateStr := flag.String("date", "", "date to check (YYYYMMDD)")
	number := flag.String("number", "", "check a single MPD number instead of every available one")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	if *dateStr == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*base, *dateStr, *number, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(base, dateStr, onlyNumber string, timeout time.Duration) int {
	date, err := domain.ParseDateKey(dateStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	catalog, err := domain.LoadCatalog("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load catalog: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	client := wpc.NewClient(base, timeout, metrics, logger)
	coord := coordinator.New(client, catalog, logger, metrics, 0)
	ctx := context.Background()

	fmt.Printf("=== MPD Verification Store Check: %s ===\n\n", dateStr)

	availPhase, numbers := checkAvailability(ctx, client, date, onlyNumber)
	phases := []*phase{availPhase}

	for _, number := range numbers {
		result := coord.FetchAll(ctx, date.Year(), number)
		phases = append(phases,
			checkArtifacts(catalog, number, result),
			checkMetadata(date, number, result))
	}

	// Report results.
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-48s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}

// checkAvailability fetches the daily index and returns the numbers to
// inspect: either the single requested one or everything listed.
func checkAvailability(ctx context.Context, client *wpc.Client, date time.Time, onlyNumber string) (*phase, []string) {
	p := &phase{name: "Phase 1: Availability index"}

	nums, err := client.AvailableNumbers(ctx, date)
	if err != nil {
		p.errorf("fetch index: %v", err)
		return p, nil
	}
	if len(nums) == 0 {
		p.errorf("index exists but lists no MPD numbers")
		return p, nil
	}
	for _, n := range nums {
		if len(n) != domain.NumberWidth {
			p.errorf("number %q is not %d characters wide", n, domain.NumberWidth)
		}
		if _, err := strconv.Atoi(n); err != nil {
			p.errorf("number %q is not numeric", n)
		}
	}
	fmt.Printf("index lists %d MPDs: %s\n\n", len(nums), strings.Join(nums, ", "))

	if onlyNumber == "" {
		return p, nums
	}

	n, err := strconv.Atoi(onlyNumber)
	if err != nil {
		p.errorf("requested number %q is not numeric", onlyNumber)
		return p, nil
	}
	padded := domain.PadNumber(n)
	for _, listed := range nums {
		if listed == padded {
			return p, []string{padded}
		}
	}
	p.errorf("requested MPD %s is not in the index", padded)
	return p, nil
}

// checkArtifacts verifies every catalog product fetched for one MPD.
func checkArtifacts(catalog *domain.Catalog, number string, result coordinator.Result) *phase {
	p := &phase{name: fmt.Sprintf("Phase 2: Artifacts for MPD %s", number)}

	for _, id := range result.Failed {
		p.errorf("%s: fetch failed", id)
	}
	for _, id := range catalog.ProductIDs() {
		doc, ok := result.Artifacts[id]
		if !ok {
			continue
		}
		if len(doc) == 0 {
			p.errorf("%s: empty document", id)
		}
	}
	return p
}

// checkMetadata verifies the MPD document's verification summary.
func checkMetadata(date time.Time, number string, result coordinator.Result) *phase {
	p := &phase{name: fmt.Sprintf("Phase 3: Metadata for MPD %s", number)}

	md := result.Metadata
	if md == nil {
		p.errorf("MPD document has no metadata block")
		return p
	}

	if string(md.MPDNumber) != number {
		p.errorf("MPD_number is %q, expected %q", md.MPDNumber, number)
	}
	day, ok := md.ValidDay()
	if !ok {
		p.errorf("valid_date is empty")
	} else if day != date.Format("2006-01-02") {
		p.errorf("valid_date day is %s, expected %s", day, date.Format("2006-01-02"))
	}

	if md.CSI < 0 || md.CSI > 1 {
		p.errorf("CSI %g outside [0,1]", md.CSI)
	}
	if md.FractionalCoverage < 0 || md.FractionalCoverage > 1 {
		p.errorf("FCOV %g outside [0,1]", md.FractionalCoverage)
	}
	if md.MaxRainAccumulation < 0 {
		p.errorf("Max_Rain_Accumulation %g is negative", md.MaxRainAccumulation)
	}
	return p
}
