package report

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strings"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/ports"
)

var header = []string{"Site ID", "Project Name", "Alternate Name", "Files"}

// CSVWriter renders the mention report: one row per entity with at least
// one match, matching documents joined with "; ". The header row is
// written even when there are no data rows.
type CSVWriter struct {
	path   string
	logger *slog.Logger
}

var _ ports.ReportWriter = (*CSVWriter)(nil)

// NewCSVWriter wires the output destination.
func NewCSVWriter(path string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{path: path, logger: logger}
}

// Write renders the index to the configured path. Rows are ordered by
// site ID, then names, so repeated runs produce identical files.
func (w *CSVWriter) Write(ctx context.Context, idx domain.MentionIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entities := make([]domain.EntityRecord, 0, len(idx))
	for e, matches := range idx {
		if len(matches) > 0 {
			entities = append(entities, e)
		}
	}
	sort.Slice(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if a.SiteID != b.SiteID {
			return a.SiteID < b.SiteID
		}
		if a.PrimaryName != b.PrimaryName {
			return a.PrimaryName < b.PrimaryName
		}
		return a.AlternateName < b.AlternateName
	})

	f, err := os.Create(w.path)
	if err != nil {
		return &domain.OutputWriteError{Path: w.path, Err: err}
	}

	cw := csv.NewWriter(f)
	_ = cw.Write(header)
	for _, e := range entities {
		_ = cw.Write([]string{e.SiteID, e.PrimaryName, e.AlternateName, strings.Join(idx[e], "; ")})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		_ = f.Close()
		return &domain.OutputWriteError{Path: w.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &domain.OutputWriteError{Path: w.path, Err: err}
	}

	if w.logger != nil {
		w.logger.Info("report written", "path", w.path, "rows", len(entities))
	}
	return nil
}
