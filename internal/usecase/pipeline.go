package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/match"
	"DevProjectScanner/internal/ports"
)

// PipelineDeps wires all collaborators into the scan workflow. Fetcher,
// Repository and Notifier are optional; nil disables the stage.
type PipelineDeps struct {
	Fetcher    ports.MeetingFetcher
	Loader     ports.ReferenceLoader
	Source     ports.DocumentSource
	Matcher    *match.Matcher
	Reporter   ports.ReportWriter
	Repository ports.RunRepository
	Notifier   ports.Notifier
	ReportPath string
	Logger     *slog.Logger
}

// Pipeline implements the scan workflow: optional fetch, load reference,
// discover documents, match, report, persist, notify.
type Pipeline struct {
	fetcher    ports.MeetingFetcher
	loader     ports.ReferenceLoader
	source     ports.DocumentSource
	matcher    *match.Matcher
	reporter   ports.ReportWriter
	repository ports.RunRepository
	notifier   ports.Notifier
	reportPath string
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:    deps.Fetcher,
		loader:     deps.Loader,
		source:     deps.Source,
		matcher:    deps.Matcher,
		reporter:   deps.Reporter,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		reportPath: deps.ReportPath,
		logger:     deps.Logger,
	}
}

// Run executes one full scan. Reference and report problems are fatal;
// per-document extraction failures and best-effort stages (history,
// notification) only degrade the run.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()

	if p.fetcher != nil {
		entries, err := p.fetcher.Fetch(ctx)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			p.warn("fetch stage failed, scanning existing documents", "error", err)
		default:
			p.info("fetch stage complete", "documents", len(entries))
		}
	}

	entities, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}
	if len(entities) == 0 {
		p.warn("reference table produced no entities")
	}

	documents, err := p.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	documents, skipped := p.filterScanned(ctx, documents)
	if skipped > 0 {
		p.info("documents skipped from previous runs", "count", skipped)
	}

	idx, stats, err := p.matcher.MatchAll(ctx, documents, entities)
	if err != nil {
		return err
	}

	if err := p.reporter.Write(ctx, idx); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	run := domain.RunSummary{
		StartedAt:       started,
		Documents:       stats.Documents,
		FailedDocuments: stats.Failed,
		Entities:        len(entities),
		EntitiesMatched: idx.Matched(),
		ReportPath:      p.reportPath,
	}
	p.persist(ctx, documents, run)
	p.notify(ctx, run)

	p.info("run complete",
		"documents", run.Documents,
		"failedDocuments", run.FailedDocuments,
		"entitiesMatched", run.EntitiesMatched,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

// filterScanned drops documents covered by earlier runs when history is
// available. History errors are tolerated; the documents are rescanned.
func (p *Pipeline) filterScanned(ctx context.Context, documents []domain.Document) ([]domain.Document, int) {
	if p.repository == nil || len(documents) == 0 {
		return documents, 0
	}

	seen, err := p.repository.AlreadyScanned(ctx, documentNames(documents))
	if err != nil {
		p.warn("scan history unavailable, rescanning everything", "error", err)
		return documents, 0
	}

	kept := documents[:0]
	skipped := 0
	for _, doc := range documents {
		if seen[doc.Name] {
			skipped++
			continue
		}
		kept = append(kept, doc)
	}
	return kept, skipped
}

func (p *Pipeline) persist(ctx context.Context, documents []domain.Document, run domain.RunSummary) {
	if p.repository == nil {
		return
	}
	if err := p.repository.SaveScanned(ctx, documentNames(documents)); err != nil {
		p.warn("persist scanned documents failed", "error", err)
	}
	if err := p.repository.SaveRun(ctx, run); err != nil {
		p.warn("persist run summary failed", "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, run domain.RunSummary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishDigest(ctx, buildDigest(run)); err != nil {
		p.warn("publish digest failed", "error", err)
	}
}

func buildDigest(run domain.RunSummary) string {
	return fmt.Sprintf(
		"Scan finished: %d documents (%d unreadable), %d of %d entities mentioned.\nReport: %s",
		run.Documents,
		run.FailedDocuments,
		run.EntitiesMatched,
		run.Entities,
		run.ReportPath,
	)
}

func documentNames(documents []domain.Document) []string {
	names := make([]string, len(documents))
	for i, doc := range documents {
		names[i] = doc.Name
	}
	return names
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
