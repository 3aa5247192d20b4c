package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"DevProjectScanner/internal/domain"
)

func TestExtractMissingFile(t *testing.T) {
	t.Parallel()

	x := New(nil)
	doc := domain.Document{Name: "missing.pdf", Path: filepath.Join(t.TempDir(), "missing.pdf")}

	got := x.Extract(context.Background(), doc)
	if !got.Failed() {
		t.Fatalf("expected failed extraction for missing file")
	}
	if got.Text != "" {
		t.Fatalf("failed extraction must carry empty text, got %q", got.Text)
	}
}

func TestExtractCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupt.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 garbage without structure"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	x := New(nil)
	got := x.Extract(context.Background(), domain.Document{Name: "corrupt.pdf", Path: path})
	if !got.Failed() {
		t.Fatalf("expected failed extraction for corrupt file")
	}
	if got.Text != "" {
		t.Fatalf("failed extraction must carry empty text, got %q", got.Text)
	}
}
