package domain

import "time"

// EntityRecord describes one tracked development project from the reference
// table. The full tuple is the identity: two rows sharing a site ID but
// differing in either name are distinct entities.
type EntityRecord struct {
	SiteID        string
	PrimaryName   string
	AlternateName string
}

// HasAlternate reports whether the record carries a second name to match.
func (e EntityRecord) HasAlternate() bool {
	return e.AlternateName != ""
}

// Document is a handle to one candidate file discovered in the input
// directory. Text is extracted on demand and discarded after matching.
type Document struct {
	Name string
	Path string
}

// Extraction is the outcome of pulling text out of a single document:
// either the full text or the reason extraction failed. A failed
// extraction is equivalent to an empty document, never a run-level error.
type Extraction struct {
	Text string
	Err  error
}

// Failed reports whether the document could not be decoded.
func (x Extraction) Failed() bool {
	return x.Err != nil
}

// MentionIndex maps each entity to the documents that mention it, in scan
// order. Every loaded entity is a key, even with zero matches; filtering
// happens only when the report is written.
type MentionIndex map[EntityRecord][]string

// NewMentionIndex seeds one empty match list per entity.
func NewMentionIndex(entities []EntityRecord) MentionIndex {
	idx := make(MentionIndex, len(entities))
	for _, e := range entities {
		if _, ok := idx[e]; !ok {
			idx[e] = []string{}
		}
	}
	return idx
}

// Add appends a document to the entity's match list.
func (idx MentionIndex) Add(e EntityRecord, docName string) {
	idx[e] = append(idx[e], docName)
}

// Matched counts entities with at least one mention.
func (idx MentionIndex) Matched() int {
	n := 0
	for _, docs := range idx {
		if len(docs) > 0 {
			n++
		}
	}
	return n
}

// ManifestEntry records one downloaded meeting document for the fetch
// manifest CSV.
type ManifestEntry struct {
	Title  string
	Date   string
	PDFURL string
	File   string
}

// RunSummary captures the outcome of one completed scan for persistence
// and notification.
type RunSummary struct {
	StartedAt       time.Time
	Documents       int
	FailedDocuments int
	Entities        int
	EntitiesMatched int
	ReportPath      string
}
