package database

import (
	"time"
)

type Article struct {
	ID          int64
	Title       string
	Summary     string
	URL         string // unique, dedup key
	Source      string
	Author      string
	PublishedAt time.Time
	Category    string
	Subcategory string
	Tags        []string
	ReadTime    int
	CreatedAt   time.Time

	Content                 string
	ContentExtractionStatus string // pending, success, failed, skipped
	ContentExtractionError  string
	ContentExtractedAt      *time.Time
	ExtractionAttempts      int
}

// ArticleInput is what the scraper hands to the store; id and created_at
// are assigned on insert.
type ArticleInput struct {
	Title       string
	Summary     string
	URL         string
	Source      string
	Author      string
	PublishedAt time.Time
	Category    string
	Subcategory string
	Tags        []string
	ReadTime    int
}

type CategoryCount struct {
	Name  string
	Count int
}

type Stats struct {
	TotalArticles  int
	RecentArticles int // published within the last 7 days
	TotalSources   int
}

// ArticleRef is the minimal handle used by maintenance tasks (content
// extraction, broken URL purge).
type ArticleRef struct {
	ID  int64
	URL string
}
