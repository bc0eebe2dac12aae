package api

import (
	"strings"
	"time"

	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
	"github.com/metabolical/healthnews/app/tasks"
)

type Handler struct {
	articleRepo    database.ArticleRepository
	taxonomy       *articles.Taxonomy
	metaCache      *articles.MetaCache
	scheduler      tasks.TaskSchedulerInterface
	articleScraper *scraper.Scraper
	sources        []scraper.Source
}

// ArticleResponse is the JSON shape of a single article. Tags are
// rendered with spaces; clients filter with either spaces or
// underscores, the store treats them the same.
type ArticleResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	URL           string   `json:"url"`
	Source        string   `json:"source"`
	Author        string   `json:"author,omitempty"`
	PublishedDate string   `json:"published_date"`
	Category      string   `json:"category"`
	Subcategory   string   `json:"subcategory,omitempty"`
	Tags          []string `json:"tags"`
	ReadTime      int      `json:"read_time"`
}

// PageResponse is the flattened pagination envelope shared by every
// article-listing endpoint.
type PageResponse struct {
	Articles     []ArticleResponse `json:"articles"`
	CurrentPage  int               `json:"current_page"`
	TotalPages   int               `json:"total_pages"`
	TotalItems   int               `json:"total_items"`
	ItemsPerPage int               `json:"items_per_page"`
	HasNext      bool              `json:"has_next"`
	HasPrevious  bool              `json:"has_previous"`
	Message      *string           `json:"message"`
}

func newArticleResponse(a database.Article) ArticleResponse {
	tags := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		tags = append(tags, strings.ReplaceAll(tag, "_", " "))
	}

	return ArticleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Summary:       a.Summary,
		URL:           a.URL,
		Source:        a.Source,
		Author:        a.Author,
		PublishedDate: a.PublishedAt.UTC().Format(time.RFC3339),
		Category:      a.Category,
		Subcategory:   a.Subcategory,
		Tags:          tags,
		ReadTime:      a.ReadTime,
	}
}

func newPageResponse(items []database.Article, page articles.Page, message string) PageResponse {
	rendered := make([]ArticleResponse, 0, len(items))
	for _, item := range items {
		rendered = append(rendered, newArticleResponse(item))
	}

	resp := PageResponse{
		Articles:     rendered,
		CurrentPage:  page.CurrentPage,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
		ItemsPerPage: page.ItemsPerPage,
		HasNext:      page.HasNext,
		HasPrevious:  page.HasPrevious,
	}
	if message != "" {
		resp.Message = &message
	}
	return resp
}
