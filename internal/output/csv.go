// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/leadgrep/leadgrep/internal/scraper"
)

// WriteCSV writes the flattened result rows to path, header first.
func WriteCSV(path string, records []*scraper.PageResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range ResultRows(records) {
		if err := writer.Write(row.fields()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
