package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/scribo/internal/common"
	"github.com/ternarybob/scribo/internal/models"
)

// maxExcerptLen caps how much converted markdown is kept per source
const maxExcerptLen = 4000

// SourceFetcher downloads cited pages and converts their main content to
// markdown excerpts. Fetches are rate limited and every failure is
// swallowed: an excerpt is enrichment, not a requirement.
type SourceFetcher struct {
	config    *common.ResearchConfig
	logger    arbor.ILogger
	http      *http.Client
	limiter   *rate.Limiter
	converter *md.Converter
}

// NewSourceFetcher creates a rate-limited source fetcher
func NewSourceFetcher(config *common.ResearchConfig, logger arbor.ILogger) *SourceFetcher {
	timeout := common.ParseDuration(config.RequestTimeout, 30*time.Second)
	gap := common.ParseDuration(config.RateLimit, time.Second)

	return &SourceFetcher{
		config:    config,
		logger:    logger,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(gap), 1),
		converter: md.NewConverter("", true, nil),
	}
}

// ExcerptSources fetches up to MaxSources pages and fills in their Excerpt
// fields in place. Individual fetch failures are logged and skipped.
func (f *SourceFetcher) ExcerptSources(ctx context.Context, sources []models.ResearchSource) {
	limit := f.config.MaxSources
	if limit <= 0 || limit > len(sources) {
		limit = len(sources)
	}

	for i := 0; i < limit; i++ {
		if sources[i].URL == "" {
			continue
		}

		excerpt, err := f.fetchExcerpt(ctx, sources[i].URL)
		if err != nil {
			f.logger.Debug().
				Err(err).
				Str("url", sources[i].URL).
				Msg("Skipping source excerpt")
			continue
		}
		sources[i].Excerpt = excerpt
	}
}

// fetchExcerpt downloads one page and converts its pruned body to markdown
func (f *SourceFetcher) fetchExcerpt(ctx context.Context, pageURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return "", fmt.Errorf("not an HTML page: %s", contentType)
	}

	// Cap the body read; article pages past 2MB are not worth excerpting
	body := io.LimitReader(resp.Body, 2*1024*1024)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	pruneBoilerplate(doc)

	content := selectMainContent(doc)
	markdown, err := f.converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("no content after conversion")
	}
	if len(markdown) > maxExcerptLen {
		markdown = markdown[:maxExcerptLen]
	}
	return markdown, nil
}

// pruneBoilerplate removes navigation and script noise before conversion
func pruneBoilerplate(doc *goquery.Document) {
	doc.Find("script, style, nav, header, footer, aside, iframe, form, noscript").Remove()
}

// selectMainContent prefers semantic content containers over the full body
func selectMainContent(doc *goquery.Document) string {
	for _, selector := range []string{"article", "main", "[role=main]", "#content", ".content"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if html, err := sel.First().Html(); err == nil && strings.TrimSpace(html) != "" {
				return html
			}
		}
	}
	if html, err := doc.Find("body").Html(); err == nil {
		return html
	}
	return ""
}
