package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/database"
)

type PurgeURLsTask struct {
	Task
	validator   *articles.URLValidator
	articleRepo database.ArticleRepository
	metaCache   *articles.MetaCache
}

func NewPurgeURLsTask(validator *articles.URLValidator, articleRepo database.ArticleRepository, metaCache *articles.MetaCache) *PurgeURLsTask {
	return &PurgeURLsTask{
		Task:        NewTask(TaskTypePurgeURLs, ""),
		validator:   validator,
		articleRepo: articleRepo,
		metaCache:   metaCache,
	}
}

func (t *PurgeURLsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refs, err := t.articleRepo.GetAllArticleURLs()
	if err != nil {
		return fmt.Errorf("failed to list article URLs: %w", err)
	}

	if len(refs) == 0 {
		slog.Debug("No articles to check")
		return nil
	}

	var staleIDs []int64
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result := t.validator.Validate(ctx, ref.URL)
		if !result.Accepted {
			slog.Debug("Article URL no longer valid", "article_id", ref.ID, "url", ref.URL, "reason", result.Reason)
			staleIDs = append(staleIDs, ref.ID)
		}
	}

	deletedCount := int64(0)
	if len(staleIDs) > 0 {
		deletedCount, err = t.articleRepo.DeleteArticles(staleIDs)
		if err != nil {
			return fmt.Errorf("failed to delete stale articles: %w", err)
		}
		t.metaCache.Invalidate()
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"checked", len(refs),
		"removed", deletedCount)

	return nil
}
