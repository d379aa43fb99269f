// internal/output/manager.go
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadgrep/leadgrep/internal/pipeline"
)

// Manager dispatches a finished batch to the configured writers. The tabular
// formats are selected by Format (csv, excel, or both); the plain-text report
// is always written; the SQLite sink is used only when a path is set.
type Manager struct {
	dir        string
	format     string
	sqlitePath string
	log        *logrus.Entry
}

// NewManager returns a Manager writing into dir.
func NewManager(dir, format, sqlitePath string) *Manager {
	if dir == "" {
		dir = "output"
	}
	return &Manager{
		dir:        dir,
		format:     format,
		sqlitePath: sqlitePath,
		log:        logrus.WithField("component", "output"),
	}
}

// Write persists the summary in every configured format and returns the
// created file paths keyed by kind (csv, excel, report, sqlite).
func (m *Manager) Write(ctx context.Context, summary *pipeline.Summary) (map[string]string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	paths := make(map[string]string)

	if m.format == "csv" || m.format == "both" {
		path := filepath.Join(m.dir, fmt.Sprintf("scraping_results_%s.csv", stamp))
		if err := WriteCSV(path, summary.Records); err != nil {
			return paths, err
		}
		paths["csv"] = path
		m.log.WithField("path", path).Info("csv results written")
	}

	if m.format == "excel" || m.format == "both" {
		path := filepath.Join(m.dir, fmt.Sprintf("scraping_results_%s.xlsx", stamp))
		if err := WriteExcel(path, summary); err != nil {
			return paths, err
		}
		paths["excel"] = path
		m.log.WithField("path", path).Info("excel workbook written")
	}

	reportPath := filepath.Join(m.dir, fmt.Sprintf("detailed_report_%s.txt", stamp))
	if err := WriteReport(reportPath, summary); err != nil {
		return paths, err
	}
	paths["report"] = reportPath
	m.log.WithField("path", reportPath).Info("detailed report written")

	if m.sqlitePath != "" {
		store, err := OpenStore(m.sqlitePath)
		if err != nil {
			return paths, err
		}
		defer store.Close()
		runID, err := store.SaveRun(ctx, summary)
		if err != nil {
			return paths, err
		}
		paths["sqlite"] = m.sqlitePath
		m.log.WithFields(logrus.Fields{"path": m.sqlitePath, "run_id": runID}).Info("run saved to sqlite")
	}

	return paths, nil
}
