package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
)

type ScrapeSourceTask struct {
	Task
	Source         scraper.Source
	articleScraper *scraper.Scraper
	articleRepo    database.ArticleRepository
	metaCache      *articles.MetaCache
}

func NewScrapeSourceTask(source scraper.Source, articleScraper *scraper.Scraper, articleRepo database.ArticleRepository, metaCache *articles.MetaCache) *ScrapeSourceTask {
	return &ScrapeSourceTask{
		Task:           NewTask(TaskTypeScrapeSource, source.Name),
		Source:         source,
		articleScraper: articleScraper,
		articleRepo:    articleRepo,
		metaCache:      metaCache,
	}
}

func (t *ScrapeSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	inputs, err := t.articleScraper.ScrapeSource(ctx, t.Source)
	if err != nil {
		return fmt.Errorf("failed to scrape source: %w", err)
	}

	insertedCount := 0
	duplicateCount := 0

	for _, input := range inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		inserted, err := t.articleRepo.UpsertArticle(input)
		if err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}

		if inserted {
			insertedCount++
		} else {
			duplicateCount++
		}
	}

	if insertedCount > 0 {
		t.metaCache.Invalidate()
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"source", t.Source.Name,
		"duration", t.GetDuration(),
		"new", insertedCount,
		"duplicates", duplicateCount)

	return nil
}
