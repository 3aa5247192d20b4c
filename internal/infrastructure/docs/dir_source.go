package docs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/extract"
	"DevProjectScanner/internal/ports"
)

// DirSource lists candidate documents in a single directory: regular
// files whose extension has a registered extractor, compared
// case-insensitively. Subdirectories are not recursed.
type DirSource struct {
	dir      string
	registry *extract.Registry
	logger   *slog.Logger
}

var _ ports.DocumentSource = (*DirSource)(nil)

// NewDirSource wires the input directory and the extractor registry used
// to decide which files are candidates.
func NewDirSource(dir string, registry *extract.Registry, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, registry: registry, logger: logger}
}

// List returns documents in lexical name order, which fixes the scan
// order for the whole run.
func (s *DirSource) List(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read document directory %s: %w", s.dir, err)
	}

	documents := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.registry.Supported(entry.Name()) {
			continue
		}
		documents = append(documents, domain.Document{
			Name: entry.Name(),
			Path: filepath.Join(s.dir, entry.Name()),
		})
	}

	if s.logger != nil {
		s.logger.Debug("documents discovered", "dir", s.dir, "count", len(documents))
	}
	return documents, nil
}
