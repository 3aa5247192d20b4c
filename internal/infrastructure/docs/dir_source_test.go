package docs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/extract"
)

type pdfStub struct{}

func (pdfStub) Extensions() []string { return []string{".pdf"} }

func (pdfStub) Extract(context.Context, domain.Document) domain.Extraction {
	return domain.Extraction{}
}

func TestListFiltersAndSorts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "A.PDF", "notes.txt", "c.pdf.bak"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	registry := extract.NewRegistry()
	registry.Register(pdfStub{})

	source := NewDirSource(dir, registry, nil)
	got, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	names := make([]string, 0, len(got))
	for _, d := range got {
		names = append(names, d.Name)
	}
	want := []string{"A.PDF", "b.pdf"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
}

func TestListMissingDirectory(t *testing.T) {
	t.Parallel()

	source := NewDirSource(filepath.Join(t.TempDir(), "absent"), extract.NewRegistry(), nil)
	if _, err := source.List(context.Background()); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
