package extract

import (
	"context"
	"testing"

	"DevProjectScanner/internal/domain"
)

type fakeExtractor struct {
	exts []string
	text string
}

func (f *fakeExtractor) Extensions() []string { return f.exts }

func (f *fakeExtractor) Extract(context.Context, domain.Document) domain.Extraction {
	return domain.Extraction{Text: f.text}
}

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&fakeExtractor{exts: []string{".pdf"}, text: "hello"})

	if !r.Supported("Minutes.PDF") {
		t.Fatalf("extension comparison must be case-insensitive")
	}
	if r.Supported("notes.txt") {
		t.Fatalf("unregistered extension reported as supported")
	}

	x := r.Extract(context.Background(), domain.Document{Name: "Minutes.PDF"})
	if x.Failed() || x.Text != "hello" {
		t.Fatalf("unexpected extraction: %+v", x)
	}

	x = r.Extract(context.Background(), domain.Document{Name: "notes.txt"})
	if !x.Failed() {
		t.Fatalf("expected failed extraction for unregistered extension")
	}
}
