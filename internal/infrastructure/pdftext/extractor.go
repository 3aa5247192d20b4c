package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"DevProjectScanner/internal/domain"
)

// Extractor decodes PDF page text in page order, joining pages with a
// single space. Any failure (unreadable file, corrupt structure,
// encrypted content, a panicking parser) is captured in the Extraction;
// one bad document must never stop the batch.
type Extractor struct {
	logger *slog.Logger
}

// New builds the PDF strategy.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extensions registers the strategy for .pdf files.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract pulls the plain text of every page.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) domain.Extraction {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{Err: err}
	}

	text, err := readPages(doc.Path)
	if err != nil {
		return domain.Extraction{Err: err}
	}

	if e.logger != nil {
		e.logger.Debug("text extracted", "document", doc.Name, "chars", len(text))
	}
	return domain.Extraction{Text: text}
}

func readPages(path string) (text string, err error) {
	// The parser panics on some malformed files; degrade that to an
	// ordinary per-document failure.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, pErr := page.GetPlainText(nil)
		if pErr != nil {
			return "", fmt.Errorf("page %d: %w", i, pErr)
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, " "), nil
}
