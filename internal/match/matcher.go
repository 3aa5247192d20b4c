package match

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/ports"
)

// Matcher decides, for every (entity, document) pair, whether the entity
// is mentioned, and aggregates the hits into a MentionIndex.
type Matcher struct {
	extractor ports.TextExtractor
	logger    *slog.Logger
}

// Stats summarizes one matching pass for the run digest.
type Stats struct {
	Documents int
	Failed    int
}

// NewMatcher wires the extractor used to obtain document text.
func NewMatcher(extractor ports.TextExtractor, logger *slog.Logger) *Matcher {
	return &Matcher{extractor: extractor, logger: logger}
}

// entityPatterns holds the compiled name patterns for one entity. Patterns
// are compiled once and reused across every document.
type entityPatterns struct {
	entity domain.EntityRecord
	exprs  []*regexp.Regexp
}

// wordPattern matches name as a standalone word, case-insensitively, with
// every metacharacter in the name taken literally. RE2 has no lookarounds
// and `\b` misfires when the name starts or ends with punctuation (e.g.
// "3M Co."), so boundaries are expressed as non-word-or-edge instead.
func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|\W)` + regexp.QuoteMeta(name) + `(?:\W|$)`)
}

func compileEntities(entities []domain.EntityRecord) []entityPatterns {
	seen := make(map[domain.EntityRecord]struct{}, len(entities))
	compiled := make([]entityPatterns, 0, len(entities))

	for _, e := range entities {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}

		exprs := []*regexp.Regexp{wordPattern(e.PrimaryName)}
		if e.HasAlternate() && !strings.EqualFold(e.AlternateName, e.PrimaryName) {
			exprs = append(exprs, wordPattern(e.AlternateName))
		}
		compiled = append(compiled, entityPatterns{entity: e, exprs: exprs})
	}

	return compiled
}

// MatchAll scans every document against every entity and returns the
// aggregated index. Scan order defines the per-entity match order, so
// sequential runs over the same inputs are byte-for-byte repeatable.
// Extraction failures degrade that document to empty text; they are
// counted and logged, never fatal. The only error returned is context
// cancellation.
func (m *Matcher) MatchAll(ctx context.Context, docs []domain.Document, entities []domain.EntityRecord) (domain.MentionIndex, Stats, error) {
	idx := domain.NewMentionIndex(entities)
	compiled := compileEntities(entities)
	stats := Stats{Documents: len(docs)}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		extraction := m.extractor.Extract(ctx, doc)
		if extraction.Failed() {
			stats.Failed++
			m.warn("document unreadable, treated as empty", "document", doc.Name, "error", extraction.Err)
			continue
		}

		for _, ep := range compiled {
			// A document contributes at most one entry per entity,
			// even when both names appear.
			for _, expr := range ep.exprs {
				if expr.MatchString(extraction.Text) {
					idx.Add(ep.entity, doc.Name)
					break
				}
			}
		}
	}

	return idx, stats, nil
}

func (m *Matcher) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
