package scraper

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/database"
)

const (
	maxItemsPerSource = 20
	maxSummaryLength  = 500
)

type Scraper struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	taxonomy   *articles.Taxonomy
	validator  *articles.URLValidator
	userAgent  string
}

func NewScraper(httpClient *http.Client, taxonomy *articles.Taxonomy, validator *articles.URLValidator, userAgent string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		parser:     gofeed.NewParser(),
		taxonomy:   taxonomy,
		validator:  validator,
		userAgent:  userAgent,
	}
}

// ScrapeSource fetches one RSS source and returns the normalized articles
// that passed URL validation. Individual bad entries are skipped, never
// fatal.
func (s *Scraper) ScrapeSource(ctx context.Context, source Source) ([]database.ArticleInput, error) {
	data, err := s.fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > maxItemsPerSource {
		items = items[:maxItemsPerSource]
	}

	inputs := make([]database.ArticleInput, 0, len(items))
	for _, item := range items {
		input, ok := s.normalizeItem(item, source)
		if !ok {
			continue
		}

		if result := s.validator.Validate(ctx, input.URL); !result.Accepted {
			slog.Warn("Skipping article with rejected URL", "source", source.Name, "url", input.URL, "reason", result.Reason)
			continue
		}

		inputs = append(inputs, input)
	}

	return inputs, nil
}

func (s *Scraper) normalizeItem(item *gofeed.Item, source Source) (database.ArticleInput, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return database.ArticleInput{}, false
	}

	summary := cleanHTML(item.Description)
	if len(summary) > maxSummaryLength {
		summary = summary[:maxSummaryLength]
	}

	publishedAt := time.Now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	}

	text := strings.ToLower(title + " " + summary)

	return database.ArticleInput{
		Title:       title,
		Summary:     summary,
		URL:         link,
		Source:      source.Name,
		Author:      extractAuthor(item),
		PublishedAt: publishedAt,
		Category:    source.Category,
		Subcategory: s.classifySubcategory(source.Category, text),
		Tags:        GenerateTags(title, summary, source.Category),
		ReadTime:    estimateReadTime(summary),
	}, true
}

// classifySubcategory picks the subcategory of the source's category
// whose keywords match the article text most often. Empty when nothing
// matches.
func (s *Scraper) classifySubcategory(category, text string) string {
	best := ""
	bestHits := 0

	for _, subcategory := range s.taxonomy.Subcategories(category) {
		hits := 0
		for _, keyword := range s.taxonomy.Keywords(category, subcategory) {
			if strings.Contains(text, strings.ToLower(keyword)) {
				hits++
			}
		}
		if hits > bestHits {
			best = subcategory
			bestHits = hits
		}
	}

	return best
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return strings.TrimSpace(item.Authors[0].Name)
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func cleanHTML(raw string) string {
	text := htmlTagPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

func estimateReadTime(summary string) int {
	minutes := len(strings.Fields(summary)) / 200
	if minutes < 3 {
		return 3
	}
	return minutes
}
