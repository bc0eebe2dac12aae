package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/metabolical/healthnews/app/articles"
	"github.com/metabolical/healthnews/app/database"
	"github.com/metabolical/healthnews/app/scraper"
	"github.com/metabolical/healthnews/app/tasks"
)

func NewHandler(articleRepo database.ArticleRepository, taxonomy *articles.Taxonomy,
	metaCache *articles.MetaCache, scheduler tasks.TaskSchedulerInterface,
	articleScraper *scraper.Scraper, sources []scraper.Source) *Handler {
	return &Handler{
		articleRepo:    articleRepo,
		taxonomy:       taxonomy,
		metaCache:      metaCache,
		scheduler:      scheduler,
		articleScraper: articleScraper,
		sources:        sources,
	}
}

// pageParams holds the pagination and ordering query parameters shared
// by every listing endpoint.
type pageParams struct {
	page  int
	limit int
	sort  articles.SortOrder
}

func (h *Handler) parsePageParams(c *gin.Context) (pageParams, bool) {
	params := pageParams{page: 1, limit: articles.DefaultLimit, sort: articles.SortDesc}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'page' parameter, expected a positive integer"})
			return params, false
		}
		params.page = page
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter, expected a positive integer"})
			return params, false
		}
		params.limit = articles.ClampLimit(limit)
	}

	if raw := c.Query("sort_by"); raw != "" {
		sort, err := articles.ParseSortOrder(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'sort_by' parameter, expected 'asc' or 'desc'"})
			return params, false
		}
		params.sort = sort
	}

	return params, true
}

// listArticles performs the shared fetch-and-render path for every
// listing endpoint. emptyMessage is returned to the client when the
// filter is valid but matches no stored articles.
func (h *Handler) listArticles(c *gin.Context, filter articles.Filter, emptyMessage string) {
	params, ok := h.parsePageParams(c)
	if !ok {
		return
	}

	filter = filter.Normalized()
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, totalItems, err := h.articleRepo.GetPage(filter, params.page, params.limit, params.sort)
	if err != nil {
		slog.Error("Database error", "operation", "get_page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	page := articles.NewPage(totalItems, params.page, params.limit)

	message := ""
	if totalItems == 0 {
		message = emptyMessage
	}

	c.JSON(http.StatusOK, newPageResponse(items, page, message))
}

func (h *Handler) GetArticles(c *gin.Context) {
	filter := articles.Filter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	h.listArticles(c, filter, "No articles available yet")
}

func (h *Handler) GetLatest(c *gin.Context) {
	// Fixed recency ordering regardless of sort_by.
	params, ok := h.parsePageParams(c)
	if !ok {
		return
	}

	items, totalItems, err := h.articleRepo.GetPage(articles.Filter{}, params.page, params.limit, articles.SortDesc)
	if err != nil {
		slog.Error("Database error", "operation", "get_latest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	page := articles.NewPage(totalItems, params.page, params.limit)

	message := ""
	if totalItems == 0 {
		message = "No articles available yet"
	}

	c.JSON(http.StatusOK, newPageResponse(items, page, message))
}

func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < articles.MinSearchLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Search query must be at least %d characters long", articles.MinSearchLength)})
		return
	}

	filter := articles.Filter{
		Search:    query,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	h.listArticles(c, filter, fmt.Sprintf("No articles found for query %q", query))
}

func (h *Handler) GetCategory(c *gin.Context) {
	category := articles.Normalize(c.Param("category"))
	if !h.taxonomy.HasCategory(category) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":            fmt.Sprintf("Unknown category %q", category),
			"valid_categories": h.taxonomy.CategoryNames(),
		})
		return
	}

	filter := articles.Filter{
		Category:  category,
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	h.listArticles(c, filter, fmt.Sprintf("No articles found in category %q", category))
}

func (h *Handler) GetCategorySubcategory(c *gin.Context) {
	category := articles.Normalize(c.Param("category"))
	if !h.taxonomy.HasCategory(category) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":            fmt.Sprintf("Unknown category %q", category),
			"valid_categories": h.taxonomy.CategoryNames(),
		})
		return
	}

	subcategory := articles.Normalize(c.Param("subcategory"))
	if !h.taxonomy.HasSubcategory(category, subcategory) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":               fmt.Sprintf("Unknown subcategory %q in category %q", subcategory, category),
			"valid_subcategories": h.taxonomy.Subcategories(category),
		})
		return
	}

	filter := articles.Filter{
		Category:    category,
		Subcategory: subcategory,
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
	}
	h.listArticles(c, filter, fmt.Sprintf("No articles found in %s/%s", category, subcategory))
}

func (h *Handler) GetTag(c *gin.Context) {
	tag := articles.Normalize(c.Param("tag"))
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tag parameter"})
		return
	}

	filter := articles.Filter{Tag: tag}
	h.listArticles(c, filter, fmt.Sprintf("No articles found for tag %q", strings.ReplaceAll(tag, "_", " ")))
}

func (h *Handler) GetCategories(c *gin.Context) {
	if cached, ok := h.metaCache.Get("categories"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	counts, err := h.articleRepo.GetCategoryCounts()
	if err != nil {
		slog.Error("Database error", "operation", "get_category_counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	categories := make([]gin.H, 0)
	for _, category := range h.taxonomy.Categories() {
		categories = append(categories, gin.H{
			"name":          category.Name,
			"display_name":  articles.DisplayName(category.Name),
			"subcategories": h.taxonomy.Subcategories(category.Name),
			"article_count": counts[category.Name],
		})
	}

	response := gin.H{
		"categories": categories,
		"total":      len(categories),
	}

	h.metaCache.Set("categories", response)
	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetTags(c *gin.Context) {
	if cached, ok := h.metaCache.Get("tags"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	tags, err := h.articleRepo.GetTags()
	if err != nil {
		slog.Error("Database error", "operation", "get_tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rendered := make([]string, 0, len(tags))
	for _, tag := range tags {
		rendered = append(rendered, strings.ReplaceAll(tag, "_", " "))
	}

	response := gin.H{
		"tags":  rendered,
		"total": len(rendered),
	}

	h.metaCache.Set("tags", response)
	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetStats(c *gin.Context) {
	if cached, ok := h.metaCache.Get("stats"); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := h.articleRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := gin.H{
		"total_articles":  stats.TotalArticles,
		"recent_articles": stats.RecentArticles,
		"total_sources":   stats.TotalSources,
		"generated_at":    time.Now().UTC().Format(time.RFC3339),
	}

	h.metaCache.Set("stats", response)
	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	articleCount, err := h.articleRepo.GetArticleCount()
	if err != nil {
		slog.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "degraded",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     "storage unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"articles":  articleCount,
	})
}

func (h *Handler) AdminScrape(c *gin.Context) {
	enqueued := 0
	for _, source := range h.sources {
		task := tasks.NewScrapeSourceTask(source, h.articleScraper, h.articleRepo, h.metaCache)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing scrape task", "source", source.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue scrape task",
				"details": err.Error(),
			})
			return
		}
		enqueued++
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Scrape tasks enqueued successfully",
		"enqueued": enqueued,
	})
}

func (h *Handler) AdminInvalidateCache(c *gin.Context) {
	h.metaCache.Invalidate()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cache invalidated",
	})
}
