// internal/output/report.go
package output

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/leadgrep/leadgrep/internal/pipeline"
)

// WriteReport writes a plain-text report of the batch: summary statistics,
// per-URL detail, and the sorted list of unique emails.
func WriteReport(path string, summary *pipeline.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintln(w, "EMAIL SCRAPING DETAILED REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SUMMARY STATISTICS:")
	fmt.Fprintf(w, "Total URLs processed: %d\n", summary.TotalURLs)
	fmt.Fprintf(w, "Successful scrapes: %d\n", summary.SuccessfulURLs)
	fmt.Fprintf(w, "Failed scrapes: %d\n", summary.FailedURLs)
	fmt.Fprintf(w, "Success rate: %.2f%%\n", summary.SuccessRate)
	fmt.Fprintf(w, "Elapsed: %s\n", summary.Elapsed)
	fmt.Fprintln(w)

	avgPerURL := 0.0
	if summary.TotalURLs > 0 {
		avgPerURL = float64(summary.TotalEmails) / float64(summary.TotalURLs)
	}
	fmt.Fprintln(w, "EMAIL STATISTICS:")
	fmt.Fprintf(w, "Total emails found: %d\n", summary.TotalEmails)
	fmt.Fprintf(w, "Unique emails: %d\n", summary.UniqueEmails)
	fmt.Fprintf(w, "Average emails per URL: %.2f\n", avgPerURL)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DETAILED RESULTS BY URL:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	for i, rec := range summary.Records {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, rec.URL)
		fmt.Fprintf(w, "   Status: %s\n", rec.Status)
		fmt.Fprintf(w, "   Method: %s\n", rec.Method)
		fmt.Fprintf(w, "   Source: %s\n", rec.SourceType)
		if rec.Platform != "" {
			fmt.Fprintf(w, "   Platform: %s\n", rec.Platform)
		}
		if len(rec.Emails) > 0 {
			fmt.Fprintf(w, "   Emails found: %d\n", len(rec.Emails))
			for _, email := range rec.Emails {
				fmt.Fprintf(w, "     - %s\n", email)
			}
		} else {
			fmt.Fprintln(w, "   No emails found")
		}
		for _, signal := range rec.ContactSignals {
			fmt.Fprintf(w, "   Contact signal: %s\n", signal)
		}
		if rec.Error != "" {
			fmt.Fprintf(w, "   Error: %s\n", rec.Error)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "UNIQUE EMAILS FOUND:")
	fmt.Fprintln(w, strings.Repeat("-", 20))
	for _, email := range uniqueEmails(summary.Records) {
		fmt.Fprintln(w, email)
	}

	return w.Flush()
}
