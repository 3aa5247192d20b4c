package ports

import (
	"context"
	"time"

	"DevProjectScanner/internal/domain"
)

// ReferenceLoader parses the configured reference table into entity records.
type ReferenceLoader interface {
	Load(ctx context.Context) ([]domain.EntityRecord, error)
}

// DocumentSource discovers candidate documents to scan.
type DocumentSource interface {
	List(ctx context.Context) ([]domain.Document, error)
}

// TextExtractor turns one document into plain text. Failures are carried
// inside the Extraction, never as a propagated error, so one bad document
// cannot abort the batch.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.Document) domain.Extraction
}

// ReportWriter renders the final mention report.
type ReportWriter interface {
	Write(ctx context.Context, idx domain.MentionIndex) error
}

// MeetingFetcher downloads meeting documents into the input directory and
// returns the manifest of what it fetched.
type MeetingFetcher interface {
	Fetch(ctx context.Context) ([]domain.ManifestEntry, error)
}

// RunRepository persists scan history for skip-on-rescan and audit.
type RunRepository interface {
	AlreadyScanned(ctx context.Context, names []string) (map[string]bool, error)
	SaveScanned(ctx context.Context, names []string) error
	SaveRun(ctx context.Context, run domain.RunSummary) error
}

// Notifier publishes a run digest to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring scans execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
