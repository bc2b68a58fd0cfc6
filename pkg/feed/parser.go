package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/feedadmin/pkg/domain"
)

const maxSummaryLen = 280

// Parser fetches RSS/Atom feeds for preview
type Parser struct {
	client    *http.Client
	userAgent string
	maxItems  int
	sanitizer *bluemonday.Policy
}

// NewParser creates a new feed parser, maxItems limits the number of entries in a preview
func NewParser(timeout time.Duration, userAgent string, maxItems int) *Parser {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Parser{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		maxItems:  maxItems,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Preview fetches the feed at feedURL and returns its title and first entries
func (p *Parser) Preview(ctx context.Context, feedURL string) (*domain.FeedPreview, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid feed URL: %s", feedURL)
	}

	body, err := p.fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	result := &domain.FeedPreview{
		Title:       strings.TrimSpace(feed.Title),
		Description: p.summary(feed.Description),
		Link:        feed.Link,
		TotalItems:  len(feed.Items),
		Items:       make([]domain.PreviewItem, 0, min(len(feed.Items), p.maxItems)),
	}

	for _, item := range feed.Items {
		if len(result.Items) >= p.maxItems {
			break
		}
		entry := domain.PreviewItem{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Summary: p.summary(item.Description),
		}
		if item.PublishedParsed != nil {
			entry.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			entry.Published = *item.UpdatedParsed
		}
		result.Items = append(result.Items, entry)
	}

	return result, nil
}

// summary strips markup and shortens text for display
func (p *Parser) summary(s string) string {
	text := html.UnescapeString(p.sanitizer.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxSummaryLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxSummaryLen])) + "…"
}

// fetch retrieves content from a URL
func (p *Parser) fetch(ctx context.Context, feedURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
