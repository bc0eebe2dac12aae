package database

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/metabolical/healthnews/app/articles"
)

func setupTestRepository(t *testing.T) *SQLiteArticleRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	validator := articles.NewURLValidator(nil, false, "")
	return NewArticleRepository(db, validator)
}

func testArticle(n int) ArticleInput {
	return ArticleInput{
		Title:       fmt.Sprintf("Test Article %d", n),
		Summary:     fmt.Sprintf("Summary for article %d", n),
		URL:         fmt.Sprintf("https://healthsite.org/articles/%d", n),
		Source:      "Test Source",
		Author:      "Test Author",
		PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour),
		Category:    "news",
		Subcategory: "latest",
		Tags:        []string{"public_health"},
		ReadTime:    3,
	}
}

func mustInsert(t *testing.T, repo *SQLiteArticleRepository, input ArticleInput) {
	t.Helper()
	inserted, err := repo.UpsertArticle(input)
	if err != nil {
		t.Fatalf("Failed to insert article %s: %v", input.URL, err)
	}
	if !inserted {
		t.Fatalf("Article %s should have been inserted", input.URL)
	}
}

func TestUpsertArticle_DeduplicatesByURL(t *testing.T) {
	repo := setupTestRepository(t)

	first := testArticle(1)
	mustInsert(t, repo, first)

	// Same URL, different title: must not create a second row
	duplicate := testArticle(1)
	duplicate.Title = "Different Title Same URL"

	inserted, err := repo.UpsertArticle(duplicate)
	if err != nil {
		t.Fatalf("Upsert of duplicate failed: %v", err)
	}
	if inserted {
		t.Error("Duplicate URL should not be inserted")
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 article, got %d", count)
	}

	// Original row is untouched
	items, _, err := repo.GetPage(articles.Filter{}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if len(items) != 1 || items[0].Title != first.Title {
		t.Errorf("Existing row should be preserved, got %+v", items)
	}
}

func TestGetPage_OrderingAndTieBreak(t *testing.T) {
	repo := setupTestRepository(t)

	sharedDate := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Three articles share a published date; two more are older/newer
	for n := 1; n <= 3; n++ {
		input := testArticle(n)
		input.PublishedAt = sharedDate
		mustInsert(t, repo, input)
	}
	older := testArticle(4)
	older.PublishedAt = sharedDate.Add(-24 * time.Hour)
	mustInsert(t, repo, older)
	newer := testArticle(5)
	newer.PublishedAt = sharedDate.Add(24 * time.Hour)
	mustInsert(t, repo, newer)

	items, total, err := repo.GetPage(articles.Filter{}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected total 5, got %d", total)
	}
	if len(items) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(items))
	}

	if items[0].URL != newer.URL {
		t.Errorf("Newest article should come first, got %s", items[0].URL)
	}
	if items[4].URL != older.URL {
		t.Errorf("Oldest article should come last, got %s", items[4].URL)
	}

	// Same-date articles are ordered by descending id
	for i := 1; i < 4; i++ {
		if items[i].ID <= items[i+1].ID && items[i].PublishedAt.Equal(items[i+1].PublishedAt) {
			t.Errorf("Tie-break by id not applied: id %d before id %d", items[i].ID, items[i+1].ID)
		}
	}

	// Ascending order reverses the sequence
	ascItems, _, err := repo.GetPage(articles.Filter{}, 1, 10, articles.SortAsc)
	if err != nil {
		t.Fatalf("Failed to get ascending page: %v", err)
	}
	if ascItems[0].URL != older.URL {
		t.Errorf("Ascending order should start with oldest, got %s", ascItems[0].URL)
	}
}

func TestGetPage_PaginationStable(t *testing.T) {
	repo := setupTestRepository(t)

	for n := 1; n <= 25; n++ {
		mustInsert(t, repo, testArticle(n))
	}

	seen := make(map[int64]bool)
	for page := 1; page <= 3; page++ {
		items, total, err := repo.GetPage(articles.Filter{}, page, 10, articles.SortDesc)
		if err != nil {
			t.Fatalf("Failed to get page %d: %v", page, err)
		}
		if total != 25 {
			t.Errorf("Page %d: expected total 25, got %d", page, total)
		}

		expected := 10
		if page == 3 {
			expected = 5
		}
		if len(items) != expected {
			t.Errorf("Page %d: expected %d items, got %d", page, expected, len(items))
		}

		for _, item := range items {
			if seen[item.ID] {
				t.Errorf("Article %d appeared on more than one page", item.ID)
			}
			seen[item.ID] = true
		}
	}

	if len(seen) != 25 {
		t.Errorf("Pages should cover all 25 articles, saw %d", len(seen))
	}

	// Page past the end is empty, not an error
	items, total, err := repo.GetPage(articles.Filter{}, 4, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Page past end should not error: %v", err)
	}
	if len(items) != 0 || total != 25 {
		t.Errorf("Page past end: expected 0 items and total 25, got %d items and total %d", len(items), total)
	}
}

func TestGetPage_CategoryAndSubcategoryFilter(t *testing.T) {
	repo := setupTestRepository(t)

	news := testArticle(1)
	mustInsert(t, repo, news)

	food := testArticle(2)
	food.Category = "food"
	food.Subcategory = "organic_food"
	mustInsert(t, repo, food)

	items, total, err := repo.GetPage(articles.Filter{Category: "food"}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to filter by category: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Category != "food" {
		t.Errorf("Category filter mismatch: total=%d items=%d", total, len(items))
	}

	// Subcategory stored with a space still matches the normalized filter
	spaced := testArticle(3)
	spaced.Category = "food"
	spaced.Subcategory = "organic food"
	mustInsert(t, repo, spaced)

	_, total, err = repo.GetPage(articles.Filter{Category: "food", Subcategory: "organic_food"}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to filter by subcategory: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected both spaced and underscored subcategory rows, got %d", total)
	}
}

func TestGetPage_TagFilter(t *testing.T) {
	repo := setupTestRepository(t)

	tagged := testArticle(1)
	tagged.Tags = []string{"gut_health", "nutrition"}
	mustInsert(t, repo, tagged)

	spacedTag := testArticle(2)
	spacedTag.Tags = []string{"Gut Health"}
	mustInsert(t, repo, spacedTag)

	other := testArticle(3)
	other.Tags = []string{"fitness"}
	mustInsert(t, repo, other)

	// Normalized tag matches both underscore and spaced variants,
	// case-insensitively
	items, total, err := repo.GetPage(articles.Filter{Tag: "gut_health"}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to filter by tag: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("Expected 2 articles for tag gut_health, got total=%d items=%d", total, len(items))
	}
}

func TestGetPage_Search(t *testing.T) {
	repo := setupTestRepository(t)

	match := testArticle(1)
	match.Title = "New Insights Into Vitamin D Deficiency"
	mustInsert(t, repo, match)

	summaryMatch := testArticle(2)
	summaryMatch.Title = "Research Update"
	summaryMatch.Summary = "A study on vitamin D supplementation in adults."
	mustInsert(t, repo, summaryMatch)

	miss := testArticle(3)
	miss.Title = "Sleep Hygiene Basics"
	miss.Summary = "How to sleep better."
	mustInsert(t, repo, miss)

	items, total, err := repo.GetPage(articles.Filter{Search: "VITAMIN d"}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("Case-insensitive search should match title and summary, got total=%d items=%d", total, len(items))
	}
}

func TestGetPage_DateRange(t *testing.T) {
	repo := setupTestRepository(t)

	for day := 1; day <= 10; day++ {
		input := testArticle(day)
		input.PublishedAt = time.Date(2025, 6, day, 10, 0, 0, 0, time.UTC)
		mustInsert(t, repo, input)
	}

	_, total, err := repo.GetPage(articles.Filter{StartDate: "2025-06-04", EndDate: "2025-06-06"}, 1, 20, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to filter by date range: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 articles in range, got %d", total)
	}

	_, total, err = repo.GetPage(articles.Filter{StartDate: "2025-06-08"}, 1, 20, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to filter by start date: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 articles from start date, got %d", total)
	}
}

func TestGetPage_ExcludesInvalidURLsOnRead(t *testing.T) {
	repo := setupTestRepository(t)

	good := testArticle(1)
	mustInsert(t, repo, good)

	// Insert a row that passes the UNIQUE constraint but carries a
	// blacklisted URL, simulating legacy data
	bad := testArticle(2)
	bad.URL = "https://example.com/placeholder-article"
	mustInsert(t, repo, bad)

	items, _, err := repo.GetPage(articles.Filter{}, 1, 10, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to get page: %v", err)
	}

	for _, item := range items {
		if item.URL == bad.URL {
			t.Error("Blacklisted URL should be excluded on the read path")
		}
	}
	if len(items) != 1 {
		t.Errorf("Expected only the valid article, got %d", len(items))
	}
}

func TestGetCategoryCounts(t *testing.T) {
	repo := setupTestRepository(t)

	for n := 1; n <= 3; n++ {
		mustInsert(t, repo, testArticle(n))
	}
	food := testArticle(4)
	food.Category = "food"
	mustInsert(t, repo, food)

	counts, err := repo.GetCategoryCounts()
	if err != nil {
		t.Fatalf("Failed to get category counts: %v", err)
	}

	if counts["news"] != 3 {
		t.Errorf("Expected 3 news articles, got %d", counts["news"])
	}
	if counts["food"] != 1 {
		t.Errorf("Expected 1 food article, got %d", counts["food"])
	}
}

func TestGetTags_DistinctAndNormalized(t *testing.T) {
	repo := setupTestRepository(t)

	first := testArticle(1)
	first.Tags = []string{"gut_health", "nutrition"}
	mustInsert(t, repo, first)

	second := testArticle(2)
	second.Tags = []string{"Gut Health", "fitness"}
	mustInsert(t, repo, second)

	tags, err := repo.GetTags()
	if err != nil {
		t.Fatalf("Failed to get tags: %v", err)
	}

	expected := []string{"fitness", "gut_health", "nutrition"}
	if len(tags) != len(expected) {
		t.Fatalf("Expected %d distinct tags, got %d: %v", len(expected), len(tags), tags)
	}
	for i, tag := range expected {
		if tags[i] != tag {
			t.Errorf("Tag %d: expected %q, got %q", i, tag, tags[i])
		}
	}
}

func TestGetStats(t *testing.T) {
	repo := setupTestRepository(t)

	recent := testArticle(1)
	recent.PublishedAt = time.Now().UTC().Add(-24 * time.Hour)
	mustInsert(t, repo, recent)

	old := testArticle(2)
	old.PublishedAt = time.Now().UTC().Add(-30 * 24 * time.Hour)
	old.Source = "Another Source"
	mustInsert(t, repo, old)

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}

	if stats.TotalArticles != 2 {
		t.Errorf("Expected 2 total articles, got %d", stats.TotalArticles)
	}
	if stats.RecentArticles != 1 {
		t.Errorf("Expected 1 recent article, got %d", stats.RecentArticles)
	}
	if stats.TotalSources != 2 {
		t.Errorf("Expected 2 sources, got %d", stats.TotalSources)
	}
}

func TestGetStats_EmptyDatabase(t *testing.T) {
	repo := setupTestRepository(t)

	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("Stats on empty database should not error: %v", err)
	}
	if stats.TotalArticles != 0 || stats.RecentArticles != 0 || stats.TotalSources != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}

func TestContentExtractionLifecycle(t *testing.T) {
	repo := setupTestRepository(t)

	mustInsert(t, repo, testArticle(1))
	mustInsert(t, repo, testArticle(2))

	refs, err := repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatalf("Failed to get articles for extraction: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("Expected 2 pending articles, got %d", len(refs))
	}

	// Successful extraction removes the article from the pending set
	if err := repo.UpdateExtractedContent(refs[0].ID, "<p>Full text</p>"); err != nil {
		t.Fatalf("Failed to update extracted content: %v", err)
	}

	// Failures count attempts; after 3 the article is no longer retried
	for i := 0; i < 3; i++ {
		if err := repo.UpdateExtractionStatus(refs[1].ID, "pending", "fetch timeout"); err != nil {
			t.Fatalf("Failed to update extraction status: %v", err)
		}
	}

	refs, err = repo.GetArticlesForExtraction(10)
	if err != nil {
		t.Fatalf("Failed to get articles for extraction: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("Expected no pending articles after success and exhausted attempts, got %d", len(refs))
	}
}

func TestDeleteArticles(t *testing.T) {
	repo := setupTestRepository(t)

	for n := 1; n <= 3; n++ {
		mustInsert(t, repo, testArticle(n))
	}

	refs, err := repo.GetAllArticleURLs()
	if err != nil {
		t.Fatalf("Failed to get article URLs: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("Expected 3 refs, got %d", len(refs))
	}

	deleted, err := repo.DeleteArticles([]int64{refs[0].ID, refs[1].ID})
	if err != nil {
		t.Fatalf("Failed to delete articles: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	count, err := repo.GetArticleCount()
	if err != nil {
		t.Fatalf("Failed to count articles: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining article, got %d", count)
	}

	// Empty id list is a no-op
	deleted, err = repo.DeleteArticles(nil)
	if err != nil {
		t.Fatalf("Empty delete should not error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Empty delete should report 0, got %d", deleted)
	}
}

func TestArticleRoundTrip(t *testing.T) {
	repo := setupTestRepository(t)

	input := testArticle(1)
	input.Tags = []string{"nutrition", "public_health"}
	mustInsert(t, repo, input)

	items, _, err := repo.GetPage(articles.Filter{}, 1, 1, articles.SortDesc)
	if err != nil {
		t.Fatalf("Failed to read back article: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(items))
	}

	got := items[0]
	if got.Title != input.Title || got.Summary != input.Summary || got.URL != input.URL {
		t.Errorf("Article fields mismatch: %+v", got)
	}
	if !got.PublishedAt.Equal(input.PublishedAt) {
		t.Errorf("PublishedAt mismatch: stored %v, got %v", input.PublishedAt, got.PublishedAt)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "nutrition" {
		t.Errorf("Tags mismatch: %v", got.Tags)
	}
	if got.ReadTime != input.ReadTime {
		t.Errorf("ReadTime mismatch: %d", got.ReadTime)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set by the database")
	}
}
