package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/match"
)

type fakeLoader struct {
	entities []domain.EntityRecord
	err      error
}

func (f *fakeLoader) Load(context.Context) ([]domain.EntityRecord, error) {
	return f.entities, f.err
}

type fakeSource struct {
	docs []domain.Document
}

func (f *fakeSource) List(context.Context) ([]domain.Document, error) {
	return f.docs, nil
}

type fakeExtractor struct {
	texts map[string]domain.Extraction
}

func (f *fakeExtractor) Extract(_ context.Context, doc domain.Document) domain.Extraction {
	return f.texts[doc.Name]
}

type captureReporter struct {
	idx domain.MentionIndex
	err error
}

func (c *captureReporter) Write(_ context.Context, idx domain.MentionIndex) error {
	c.idx = idx
	return c.err
}

type fakeRepository struct {
	scanned map[string]bool
	saved   []string
	runs    []domain.RunSummary
}

func (f *fakeRepository) AlreadyScanned(_ context.Context, names []string) (map[string]bool, error) {
	return f.scanned, nil
}

func (f *fakeRepository) SaveScanned(_ context.Context, names []string) error {
	f.saved = append(f.saved, names...)
	return nil
}

func (f *fakeRepository) SaveRun(_ context.Context, run domain.RunSummary) error {
	f.runs = append(f.runs, run)
	return nil
}

type captureNotifier struct {
	digests []string
}

func (c *captureNotifier) PublishDigest(_ context.Context, digest string) error {
	c.digests = append(c.digests, digest)
	return nil
}

func testDocs(names ...string) []domain.Document {
	out := make([]domain.Document, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Document{Name: n, Path: "/in/" + n})
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	entities := []domain.EntityRecord{
		{SiteID: "S-001", PrimaryName: "Oak Ridge", AlternateName: "ORidge"},
		{SiteID: "S-002", PrimaryName: "Never Mentioned"},
	}
	extractor := &fakeExtractor{texts: map[string]domain.Extraction{
		"agenda.pdf":  {Text: "hearing on the oak ridge rezoning"},
		"corrupt.pdf": {Err: errors.New("bad xref")},
		"minutes.pdf": {Text: "ORidge discussed"},
	}}
	reporter := &captureReporter{}
	repo := &fakeRepository{}
	notifier := &captureNotifier{}

	p := NewPipeline(PipelineDeps{
		Loader:     &fakeLoader{entities: entities},
		Source:     &fakeSource{docs: testDocs("agenda.pdf", "corrupt.pdf", "minutes.pdf")},
		Matcher:    match.NewMatcher(extractor, nil),
		Reporter:   reporter,
		Repository: repo,
		Notifier:   notifier,
		ReportPath: "out.csv",
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []string{"agenda.pdf", "minutes.pdf"}
	if !reflect.DeepEqual(reporter.idx[entities[0]], want) {
		t.Fatalf("expected %v, got %v", want, reporter.idx[entities[0]])
	}
	if got := reporter.idx[entities[1]]; len(got) != 0 {
		t.Fatalf("zero-match entity must stay empty in the index, got %v", got)
	}

	if len(repo.runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(repo.runs))
	}
	run := repo.runs[0]
	if run.Documents != 3 || run.FailedDocuments != 1 || run.EntitiesMatched != 1 {
		t.Fatalf("unexpected run summary: %+v", run)
	}
	if !reflect.DeepEqual(repo.saved, []string{"agenda.pdf", "corrupt.pdf", "minutes.pdf"}) {
		t.Fatalf("unexpected saved documents: %v", repo.saved)
	}

	if len(notifier.digests) != 1 || !strings.Contains(notifier.digests[0], "out.csv") {
		t.Fatalf("unexpected digests: %v", notifier.digests)
	}
}

func TestRunSkipsAlreadyScanned(t *testing.T) {
	t.Parallel()

	entities := []domain.EntityRecord{{SiteID: "S-001", PrimaryName: "Oak Ridge"}}
	extractor := &fakeExtractor{texts: map[string]domain.Extraction{
		"old.pdf": {Text: "Oak Ridge"},
		"new.pdf": {Text: "Oak Ridge"},
	}}
	reporter := &captureReporter{}
	repo := &fakeRepository{scanned: map[string]bool{"old.pdf": true}}

	p := NewPipeline(PipelineDeps{
		Loader:     &fakeLoader{entities: entities},
		Source:     &fakeSource{docs: testDocs("old.pdf", "new.pdf")},
		Matcher:    match.NewMatcher(extractor, nil),
		Reporter:   reporter,
		Repository: repo,
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !reflect.DeepEqual(reporter.idx[entities[0]], []string{"new.pdf"}) {
		t.Fatalf("already scanned document was rescanned: %v", reporter.idx[entities[0]])
	}
}

func TestRunFatalOnReferenceError(t *testing.T) {
	t.Parallel()

	srcErr := &domain.DataSourceError{Path: "ref.csv", Err: errors.New("no such file")}
	p := NewPipeline(PipelineDeps{
		Loader:   &fakeLoader{err: srcErr},
		Source:   &fakeSource{},
		Matcher:  match.NewMatcher(&fakeExtractor{}, nil),
		Reporter: &captureReporter{},
	})

	err := p.Run(context.Background())
	var wantErr *domain.DataSourceError
	if !errors.As(err, &wantErr) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestRunFatalOnReportError(t *testing.T) {
	t.Parallel()

	outErr := &domain.OutputWriteError{Path: "out.csv", Err: errors.New("permission denied")}
	p := NewPipeline(PipelineDeps{
		Loader:   &fakeLoader{entities: []domain.EntityRecord{{SiteID: "S", PrimaryName: "X"}}},
		Source:   &fakeSource{},
		Matcher:  match.NewMatcher(&fakeExtractor{}, nil),
		Reporter: &captureReporter{err: outErr},
	})

	err := p.Run(context.Background())
	var wantErr *domain.OutputWriteError
	if !errors.As(err, &wantErr) {
		t.Fatalf("expected OutputWriteError, got %v", err)
	}
}
