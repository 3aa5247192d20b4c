package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"DevProjectScanner/internal/config"
	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/ports"
)

// CSVLoader reads the entity reference table. Columns are selected by
// 0-based index or, when the selector is not a number, by header name.
type CSVLoader struct {
	path      string
	siteID    string
	primary   string
	alternate string
	logger    *slog.Logger
}

var _ ports.ReferenceLoader = (*CSVLoader)(nil)

// NewCSVLoader wires the configured path and column selectors.
func NewCSVLoader(cfg config.ReferenceConfig, logger *slog.Logger) *CSVLoader {
	return &CSVLoader{
		path:      cfg.Path,
		siteID:    cfg.SiteIDColumn,
		primary:   cfg.PrimaryNameColumn,
		alternate: cfg.AlternateNameColumn,
		logger:    logger,
	}
}

// Load parses the table into entity records. Rows without a primary name
// are skipped, not errors. A bad selector yields a ConfigurationError and
// an unreadable or malformed file a DataSourceError; both are fatal to
// the run.
func (l *CSVLoader) Load(ctx context.Context) ([]domain.EntityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, &domain.DataSourceError{Path: l.path, Err: err}
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, &domain.DataSourceError{Path: l.path, Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.DataSourceError{Path: l.path, Err: errors.New("missing header row")}
	}

	header := rows[0]
	siteIdx, err := resolveColumn(l.siteID, header, "site ID")
	if err != nil {
		return nil, err
	}
	primaryIdx, err := resolveColumn(l.primary, header, "primary name")
	if err != nil {
		return nil, err
	}
	alternateIdx, err := resolveColumn(l.alternate, header, "alternate name")
	if err != nil {
		return nil, err
	}

	l.debug("columns resolved",
		"siteId", header[siteIdx],
		"primaryName", header[primaryIdx],
		"alternateName", header[alternateIdx])

	records := make([]domain.EntityRecord, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		primary := strings.TrimSpace(row[primaryIdx])
		if primary == "" {
			skipped++
			continue
		}
		records = append(records, domain.EntityRecord{
			SiteID:        strings.TrimSpace(row[siteIdx]),
			PrimaryName:   primary,
			AlternateName: strings.TrimSpace(row[alternateIdx]),
		})
	}

	l.debug("reference loaded", "entities", len(records), "skippedRows", skipped)
	return records, nil
}

// resolveColumn maps a selector to a column index against the header row.
func resolveColumn(selector string, header []string, role string) (int, error) {
	sel := strings.TrimSpace(selector)

	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 0 || idx >= len(header) {
			return 0, &domain.ConfigurationError{
				Column:   role,
				Selector: sel,
				Err:      fmt.Errorf("index %d out of range, table has %d columns", idx, len(header)),
			}
		}
		return idx, nil
	}

	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), sel) {
			return i, nil
		}
	}

	return 0, &domain.ConfigurationError{
		Column:   role,
		Selector: sel,
		Err:      errors.New("header name not found in table"),
	}
}

func (l *CSVLoader) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
