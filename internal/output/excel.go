// internal/output/excel.go
package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leadgrep/leadgrep/internal/pipeline"
	"github.com/leadgrep/leadgrep/internal/scraper"
)

var (
	socialHeader = []string{"Platform", "Profile_URL", "Profile_Title", "Email", "Contact_Signals"}
	failedHeader = []string{"URL", "Error", "Scraping_Method", "Timestamp"}
)

// WriteExcel writes a workbook with a Results sheet, a Summary sheet, and,
// when the batch produced them, Social and Failed sheets.
func WriteExcel(path string, summary *pipeline.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", "Results"); err != nil {
		return err
	}
	if err := writeResultsSheet(f, headerStyle, summary.Records); err != nil {
		return err
	}
	if err := writeSummarySheet(f, headerStyle, summary); err != nil {
		return err
	}

	if social := filterBySource(summary.Records, scraper.SourceSocial); len(social) > 0 {
		if err := writeSocialSheet(f, headerStyle, social); err != nil {
			return err
		}
	}
	if failed := filterByStatus(summary.Records, scraper.StatusFailed); len(failed) > 0 {
		if err := writeFailedSheet(f, headerStyle, failed); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, style int, records []*scraper.PageResult) error {
	if err := writeHeader(f, "Results", style, resultHeader); err != nil {
		return err
	}
	for i, row := range ResultRows(records) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := make([]interface{}, len(resultHeader))
		for j, v := range row.fields() {
			values[j] = v
		}
		if err := f.SetSheetRow("Results", cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth("Results", "A", "B", 40)
}

func writeSummarySheet(f *excelize.File, style int, summary *pipeline.Summary) error {
	if _, err := f.NewSheet("Summary"); err != nil {
		return err
	}
	if err := writeHeader(f, "Summary", style, []string{"Metric", "Value"}); err != nil {
		return err
	}

	avgPerURL := 0.0
	if summary.TotalURLs > 0 {
		avgPerURL = float64(summary.TotalEmails) / float64(summary.TotalURLs)
	}
	metrics := [][]interface{}{
		{"Total URLs Processed", summary.TotalURLs},
		{"Successful Scrapes", summary.SuccessfulURLs},
		{"Failed Scrapes", summary.FailedURLs},
		{"Total Emails Found", summary.TotalEmails},
		{"Unique Emails Found", summary.UniqueEmails},
		{"Success Rate (%)", fmt.Sprintf("%.2f", summary.SuccessRate)},
		{"Average Emails per URL", fmt.Sprintf("%.2f", avgPerURL)},
		{"Elapsed", summary.Elapsed.String()},
	}
	row := 2
	for _, m := range metrics {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow("Summary", cell, &m); err != nil {
			return err
		}
		row++
	}

	if domains := topDomains(summary.Records, 10); len(domains) > 0 {
		row++
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow("Summary", cell, &[]interface{}{"Top Email Domains", "Count"}); err != nil {
			return err
		}
		row++
		for _, d := range domains {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow("Summary", cell, &[]interface{}{d.Domain, d.Count}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth("Summary", "A", "A", 28)
}

func writeSocialSheet(f *excelize.File, style int, records []*scraper.PageResult) error {
	if _, err := f.NewSheet("Social"); err != nil {
		return err
	}
	if err := writeHeader(f, "Social", style, socialHeader); err != nil {
		return err
	}
	row := 2
	for _, rec := range records {
		signals := strings.Join(rec.ContactSignals, "; ")
		emails := rec.Emails
		if len(emails) == 0 {
			emails = []string{""}
		}
		for _, email := range emails {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := []interface{}{rec.Platform, rec.URL, rec.Title, email, signals}
			if err := f.SetSheetRow("Social", cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth("Social", "B", "B", 40)
}

func writeFailedSheet(f *excelize.File, style int, records []*scraper.PageResult) error {
	if _, err := f.NewSheet("Failed"); err != nil {
		return err
	}
	if err := writeHeader(f, "Failed", style, failedHeader); err != nil {
		return err
	}
	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{rec.URL, rec.Error, string(rec.Method), rec.FetchedAt.Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow("Failed", cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth("Failed", "A", "B", 40)
}

func writeHeader(f *excelize.File, sheet string, style int, header []string) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func filterBySource(records []*scraper.PageResult, source scraper.SourceType) []*scraper.PageResult {
	var out []*scraper.PageResult
	for _, rec := range records {
		if rec.SourceType == source {
			out = append(out, rec)
		}
	}
	return out
}

func filterByStatus(records []*scraper.PageResult, status scraper.FetchStatus) []*scraper.PageResult {
	var out []*scraper.PageResult
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
