package scraper

// Source is one RSS feed the scraper pulls from. Category is the default
// classification for articles from that source; subcategory and tags are
// refined per article from the taxonomy keywords.
type Source struct {
	Name     string
	URL      string
	Category string
}

func DefaultSources() []Source {
	return []Source{
		// Health authorities
		{Name: "WHO", URL: "https://www.who.int/rss-feeds/news-english.xml", Category: "news"},
		{Name: "NIH", URL: "https://www.nih.gov/news-events/news-releases/rss", Category: "news"},
		{Name: "CDC", URL: "https://tools.cdc.gov/podcasts/rss/health.xml", Category: "news"},

		// Health outlets
		{Name: "WebMD", URL: "https://www.webmd.com/rss/rss.aspx?RSSSource=RSS_PUBLIC", Category: "solutions"},
		{Name: "Mayo Clinic", URL: "https://newsnetwork.mayoclinic.org/feed/", Category: "solutions"},
		{Name: "Healthline", URL: "https://www.healthline.com/rss", Category: "solutions"},
		{Name: "Medical News Today", URL: "https://www.medicalnewstoday.com/rss", Category: "diseases"},
		{Name: "ScienceDaily Nutrition", URL: "https://www.sciencedaily.com/rss/health_medicine/nutrition.xml", Category: "food"},
		{Name: "NutritionFacts", URL: "https://nutritionfacts.org/feed/", Category: "food"},
		{Name: "Harvard Health Blog", URL: "https://www.health.harvard.edu/blog/feed", Category: "blogs_and_opinions"},
	}
}
