package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/metabolical/healthnews/app/articles"
)

var _ ArticleRepository = (*SQLiteArticleRepository)(nil)

// SQLiteArticleRepository handles database operations for articles. URLs
// are format-checked again on the read path so that legacy rows with
// blacklisted or malformed URLs never reach API clients.
type SQLiteArticleRepository struct {
	db        *DB
	validator *articles.URLValidator
}

func NewArticleRepository(db *DB, validator *articles.URLValidator) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{db: db, validator: validator}
}

func (r *SQLiteArticleRepository) UpsertArticle(input ArticleInput) (bool, error) {
	tags, err := encodeTags(input.Tags)
	if err != nil {
		return false, fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := r.db.Exec(`
		INSERT INTO articles (
			title, summary, url, source, author, published_at,
			category, subcategory, tags, read_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
	`, input.Title, input.Summary, input.URL, input.Source, input.Author,
		input.PublishedAt.UTC().Format(time.RFC3339),
		input.Category, input.Subcategory, tags, input.ReadTime)
	if err != nil {
		return false, fmt.Errorf("failed to upsert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLiteArticleRepository) GetPage(filter articles.Filter, page, limit int, sort articles.SortOrder) ([]Article, int, error) {
	where, args := buildWhere(filter)

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	// Tie-break on id keeps pagination stable when published dates
	// collide.
	order := "ORDER BY published_at DESC, id DESC"
	if sort == articles.SortAsc {
		order = "ORDER BY published_at ASC, id ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, title, summary, url, source, author, published_at,
		       category, subcategory, tags, read_time, content, created_at
		FROM articles
		%s
		%s
		LIMIT ? OFFSET ?
	`, where, order)

	queryArgs := append(append([]any{}, args...), limit, articles.Offset(page, limit))

	rows, err := r.db.Query(query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	result := make([]Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}

		if check := r.validator.CheckFormat(article.URL); !check.Accepted {
			slog.Debug("Excluding article with invalid URL", "id", article.ID, "url", article.URL, "reason", check.Reason)
			continue
		}

		result = append(result, article)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating article rows: %w", err)
	}

	return result, total, nil
}

func (r *SQLiteArticleRepository) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

func (r *SQLiteArticleRepository) GetCategoryCounts() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT category, COUNT(*)
		FROM articles
		WHERE category != ''
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[name] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}

	return counts, nil
}

// GetTags unnests the stored tag lists and returns the distinct
// normalized values, sorted.
func (r *SQLiteArticleRepository) GetTags() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT LOWER(REPLACE(json_each.value, ' ', '_'))
		FROM articles, json_each(articles.tags)
		ORDER BY 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

func (r *SQLiteArticleRepository) GetStats() (Stats, error) {
	var stats Stats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN datetime(published_at) >= datetime('now', '-7 days') THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT CASE WHEN source != '' THEN source END)
		FROM articles
	`).Scan(&stats.TotalArticles, &stats.RecentArticles, &stats.TotalSources)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

func (r *SQLiteArticleRepository) GetArticlesForExtraction(limit int) ([]ArticleRef, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM articles
		WHERE content = ''
		  AND content_extraction_status = 'pending'
		  AND extraction_attempts < 3
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	return scanRefs(rows)
}

func (r *SQLiteArticleRepository) UpdateExtractedContent(articleID int64, content string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content = ?,
		    content_extraction_status = 'success',
		    content_extraction_error = '',
		    content_extracted_at = ?
		WHERE id = ?
	`, content, time.Now().UTC().Format(time.RFC3339), articleID)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

func (r *SQLiteArticleRepository) UpdateExtractionStatus(articleID int64, status string, extractionError string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content_extraction_status = ?,
		    content_extraction_error = ?,
		    extraction_attempts = extraction_attempts + 1
		WHERE id = ?
	`, status, extractionError, articleID)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}

func (r *SQLiteArticleRepository) GetAllArticleURLs() ([]ArticleRef, error) {
	rows, err := r.db.Query("SELECT id, url FROM articles")
	if err != nil {
		return nil, fmt.Errorf("failed to get article URLs: %w", err)
	}
	defer rows.Close()

	return scanRefs(rows)
}

func (r *SQLiteArticleRepository) DeleteArticles(articleIDs []int64) (int64, error) {
	if len(articleIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(articleIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(articleIDs))
	for i, id := range articleIDs {
		args[i] = id
	}

	res, err := r.db.Exec("DELETE FROM articles WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}
	return res.RowsAffected()
}

// buildWhere translates a normalized filter into a WHERE clause shared by
// the count and page queries, so totals always agree with page contents.
func buildWhere(filter articles.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "LOWER(category) = ?")
		args = append(args, filter.Category)
	}

	if filter.Subcategory != "" {
		conditions = append(conditions, "LOWER(REPLACE(subcategory, ' ', '_')) = ?")
		args = append(args, filter.Subcategory)
	}

	if filter.Tag != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM json_each(articles.tags) WHERE LOWER(REPLACE(json_each.value, ' ', '_')) = ?)")
		args = append(args, filter.Tag)
	}

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, "(LOWER(title) LIKE ? OR LOWER(summary) LIKE ?)")
		args = append(args, term, term)
	}

	if filter.StartDate != "" {
		conditions = append(conditions, "date(published_at) >= date(?)")
		args = append(args, filter.StartDate)
	}

	if filter.EndDate != "" {
		conditions = append(conditions, "date(published_at) <= date(?)")
		args = append(args, filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanArticle(rows *sql.Rows) (Article, error) {
	var article Article
	var publishedAt, createdAt, tags string

	err := rows.Scan(
		&article.ID, &article.Title, &article.Summary, &article.URL,
		&article.Source, &article.Author, &publishedAt,
		&article.Category, &article.Subcategory, &tags,
		&article.ReadTime, &article.Content, &createdAt,
	)
	if err != nil {
		return Article{}, fmt.Errorf("failed to scan article row: %w", err)
	}

	article.PublishedAt = parseTimestamp(publishedAt)
	article.CreatedAt = parseTimestamp(createdAt)

	if err := json.Unmarshal([]byte(tags), &article.Tags); err != nil {
		// Legacy rows may hold a comma-separated list instead of JSON.
		article.Tags = splitLegacyTags(tags)
	}

	return article, nil
}

func scanRefs(rows *sql.Rows) ([]ArticleRef, error) {
	var refs []ArticleRef
	for rows.Next() {
		var ref ArticleRef
		if err := rows.Scan(&ref.ID, &ref.URL); err != nil {
			return nil, fmt.Errorf("failed to scan article ref: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article refs: %w", err)
	}

	return refs, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitLegacyTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
