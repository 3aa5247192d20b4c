package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"DevProjectScanner/internal/domain"
)

// Extractor captures a single format strategy (PDF today, others later).
type Extractor interface {
	// Extensions lists the file extensions this strategy handles,
	// lowercase with the leading dot.
	Extensions() []string
	Extract(ctx context.Context, doc domain.Document) domain.Extraction
}

// Registry keeps a mapping from file extensions to extractor strategies.
// It satisfies ports.TextExtractor by dispatching on the document name.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]Extractor{}}
}

// Register adds or replaces a strategy for each extension it declares.
func (r *Registry) Register(x Extractor) {
	if r.byExt == nil {
		r.byExt = map[string]Extractor{}
	}
	for _, ext := range x.Extensions() {
		r.byExt[strings.ToLower(ext)] = x
	}
}

// Supported reports whether a file name has a registered strategy.
// Extension comparison is case-insensitive.
func (r *Registry) Supported(name string) bool {
	_, ok := r.byExt[normalizeExt(name)]
	return ok
}

// Extract dispatches to the strategy registered for the document's
// extension. An unregistered extension yields a failed Extraction, same
// as any other per-document problem.
func (r *Registry) Extract(ctx context.Context, doc domain.Document) domain.Extraction {
	x, ok := r.byExt[normalizeExt(doc.Name)]
	if !ok {
		return domain.Extraction{Err: fmt.Errorf("no extractor registered for %s", doc.Name)}
	}
	return x.Extract(ctx, doc)
}

func normalizeExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
