package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
)

const extractionBatchSize = 20
const extractionFetchTimeout = 30 * time.Second

type ExtractContentTask struct {
	Task
	httpClient       *http.Client
	contentExtractor *scraper.ContentExtractor
	articleRepo      database.ArticleRepository
	userAgent        string
}

func NewExtractContentTask(httpClient *http.Client, contentExtractor *scraper.ContentExtractor, articleRepo database.ArticleRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, ""),
		httpClient:       httpClient,
		contentExtractor: contentExtractor,
		articleRepo:      articleRepo,
		userAgent:        userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refs, err := t.articleRepo.GetArticlesForExtraction(extractionBatchSize)
	if err != nil {
		return fmt.Errorf("failed to get articles for content extraction: %w", err)
	}

	if len(refs) == 0 {
		slog.Debug("No articles need content extraction")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := t.extractContentForArticle(ctx, ref)
		if err != nil {
			slog.Error("Failed to extract content for article", "article_id", ref.ID, "url", ref.URL, "error", err)
			errorCount++

			err = t.articleRepo.UpdateExtractionStatus(ref.ID, "failed", err.Error())
			if err != nil {
				slog.Error("Failed to update content extraction status", "article_id", ref.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForArticle(ctx context.Context, ref database.ArticleRef) error {
	if ref.URL == "" {
		return fmt.Errorf("article has no URL")
	}

	data, err := t.fetchArticlePage(ctx, ref.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article page: %w", err)
	}

	extractedContent, err := t.contentExtractor.Run(data)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	err = t.articleRepo.UpdateExtractedContent(ref.ID, extractedContent)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "article_id", ref.ID, "url", ref.URL, "content_length", len(extractedContent))
	return nil
}

func (t *ExtractContentTask) fetchArticlePage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, extractionFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
