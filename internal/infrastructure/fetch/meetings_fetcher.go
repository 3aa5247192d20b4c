package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DevProjectScanner/internal/config"
	"DevProjectScanner/internal/domain"
	"DevProjectScanner/internal/ports"
)

const userAgent = "DevProjectScanner/1.0"

// Characters that cannot appear in filenames on common filesystems.
var unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// MeetingsFetcher walks the paginated meetings listing, downloads every
// linked PDF into the document directory and records a manifest. Per-link
// failures are logged and skipped; only a broken configuration or an
// unwritable manifest fails the stage.
type MeetingsFetcher struct {
	client    *http.Client
	cfg       config.FetchConfig
	dir       string
	pageDelay time.Duration
	logger    *slog.Logger
}

var _ ports.MeetingFetcher = (*MeetingsFetcher)(nil)

// NewMeetingsFetcher wires an HTTP client, the fetch settings and the
// download directory.
func NewMeetingsFetcher(client *http.Client, cfg config.FetchConfig, dir string, logger *slog.Logger) *MeetingsFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MeetingsFetcher{client: client, cfg: cfg, dir: dir, pageDelay: cfg.Delay(), logger: logger}
}

// Fetch pages through the listing until a page yields no meeting rows,
// then writes the manifest CSV.
func (f *MeetingsFetcher) Fetch(ctx context.Context) ([]domain.ManifestEntry, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}

	from, to, err := parseDateRange(f.cfg.FromDate, f.cfg.ToDate)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ManifestEntry, 0)
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		pageURL, err := buildPageURL(f.cfg.BaseURL, from, to, page)
		if err != nil {
			return entries, err
		}

		doc, err := f.fetchListing(ctx, pageURL)
		if err != nil {
			f.warn("listing page failed, stopping pagination", "page", page, "error", err)
			break
		}

		rows := doc.Find(f.cfg.RowSelector)
		f.debug("listing page parsed", "page", page, "meetings", rows.Length())
		if rows.Length() == 0 {
			break
		}

		rows.Each(func(_ int, row *goquery.Selection) {
			entries = append(entries, f.collectMeeting(ctx, row)...)
		})

		if !f.pause(ctx) {
			return entries, ctx.Err()
		}
	}

	if f.cfg.ManifestPath != "" {
		if err := writeManifest(f.cfg.ManifestPath, entries); err != nil {
			return entries, err
		}
	}

	f.debug("fetch complete", "documents", len(entries))
	return entries, nil
}

// collectMeeting extracts one meeting row: title, date and one download
// per configured document type.
func (f *MeetingsFetcher) collectMeeting(ctx context.Context, row *goquery.Selection) []domain.ManifestEntry {
	title := selectionText(row, f.cfg.TitleSelector)
	date := selectionText(row, f.cfg.DateSelector)

	var entries []domain.ManifestEntry
	for _, docType := range f.cfg.DocumentTypes {
		link := row.Find(docType.Selector).First()
		href, ok := link.Attr("href")
		if !ok {
			continue
		}

		fullURL := resolveURL(f.cfg.SiteRoot, href)
		localPath, err := f.download(ctx, fullURL)
		if err != nil {
			f.warn("document skipped", "meeting", title, "type", docType.Name, "url", fullURL, "error", err)
			continue
		}

		f.debug("document downloaded", "meeting", title, "type", docType.Name, "file", localPath)
		entries = append(entries, domain.ManifestEntry{
			Title:  title,
			Date:   date,
			PDFURL: fullURL,
			File:   localPath,
		})
	}

	return entries
}

// download fetches one linked document, verifying it really is a PDF
// before writing it under a sanitized name.
func (f *MeetingsFetcher) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		return "", fmt.Errorf("not a pdf: content type %q", ct)
	}

	name := sanitizeFilename(lastURLSegment(rawURL))
	localPath := filepath.Join(f.dir, name)

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(localPath)
		return "", fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", localPath, err)
	}

	return localPath, nil
}

func (f *MeetingsFetcher) fetchListing(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

// pause waits the configured inter-page delay; false means the context
// ended first.
func (f *MeetingsFetcher) pause(ctx context.Context) bool {
	if f.pageDelay <= 0 {
		return true
	}
	timer := time.NewTimer(f.pageDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid fromDate %q: %w", from, err)
	}
	toDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid toDate %q: %w", to, err)
	}
	return fromDate, toDate, nil
}

func buildPageURL(base string, from, to time.Time, page int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("date_filter[value][month]", strconv.Itoa(int(from.Month())))
	query.Set("date_filter[value][day]", strconv.Itoa(from.Day()))
	query.Set("date_filter[value][year]", strconv.Itoa(from.Year()))
	query.Set("date_filter_1[value][month]", strconv.Itoa(int(to.Month())))
	query.Set("date_filter_1[value][day]", strconv.Itoa(to.Day()))
	query.Set("date_filter_1[value][year]", strconv.Itoa(to.Year()))
	query.Set("field_microsite_tid", "All")
	query.Set("field_microsite_tid_1", "All")
	query.Set("page", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func resolveURL(siteRoot, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(siteRoot, "/") + href
}

func selectionText(row *goquery.Selection, selector string) string {
	text := strings.TrimSpace(row.Find(selector).First().Text())
	if text == "" {
		return "Unknown"
	}
	return text
}

func lastURLSegment(rawURL string) string {
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	return path.Base(rawURL)
}

func sanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

func writeManifest(manifestPath string, entries []domain.ManifestEntry) error {
	f, err := os.Create(manifestPath)
	if err != nil {
		return fmt.Errorf("create manifest %s: %w", manifestPath, err)
	}

	w := csv.NewWriter(f)
	_ = w.Write([]string{"title", "date", "pdf_url", "file"})
	for _, e := range entries {
		_ = w.Write([]string{e.Title, e.Date, e.PDFURL, e.File})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write manifest %s: %w", manifestPath, err)
	}
	return f.Close()
}

func (f *MeetingsFetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f *MeetingsFetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
