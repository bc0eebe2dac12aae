package database

import (
	"github.com/metabolical/healthnews/app/articles"
)

type ArticleRepository interface {
	// UpsertArticle inserts the article unless a row with the same URL
	// already exists. Reports whether a new row was written.
	UpsertArticle(input ArticleInput) (bool, error)

	// GetPage returns one page of articles matching the filter together
	// with the total match count computed from the same filter.
	GetPage(filter articles.Filter, page, limit int, sort articles.SortOrder) ([]Article, int, error)

	GetArticleCount() (int, error)
	GetCategoryCounts() (map[string]int, error)
	GetTags() ([]string, error)
	GetStats() (Stats, error)

	GetArticlesForExtraction(limit int) ([]ArticleRef, error)
	UpdateExtractedContent(articleID int64, content string) error
	UpdateExtractionStatus(articleID int64, status string, extractionError string) error

	GetAllArticleURLs() ([]ArticleRef, error)
	DeleteArticles(articleIDs []int64) (int64, error)
}
