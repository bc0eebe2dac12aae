package scraper

import (
	"sort"
	"strings"
)

// tagKeywords maps generated tags onto the phrases that trigger them in
// an article's title or summary.
var tagKeywords = map[string][]string{
	"diabetes":          {"diabetes", "blood sugar", "insulin", "glucose"},
	"nutrition":         {"nutrition", "diet", "food", "eating", "vitamin"},
	"fitness":           {"fitness", "exercise", "workout", "physical activity"},
	"mental_health":     {"mental health", "depression", "anxiety", "stress"},
	"heart_health":      {"heart", "cardiovascular", "blood pressure", "cholesterol"},
	"weight_management": {"weight", "obesity", "overweight", "bmi"},
	"preventive_care":   {"prevention", "screening", "early detection", "vaccine"},
	"lifestyle":         {"lifestyle", "wellness", "healthy living"},
	"gut_health":        {"gut", "microbiome", "probiotic", "digestive"},
	"womens_health":     {"women", "pregnancy", "maternal", "menopause"},
	"mens_health":       {"men's health", "prostate", "testosterone"},
	"child_health":      {"children", "pediatric", "infant"},
	"healthy_aging":     {"elderly", "aging", "senior", "longevity"},
	"medical_research":  {"study", "research", "trial", "findings"},
	"public_health":     {"public health", "outbreak", "pandemic", "epidemic"},
	"sleep":             {"sleep", "insomnia", "circadian"},
}

// GenerateTags derives the tag set for an article from its title and
// summary. The source category is the fallback so every article carries
// at least one tag.
func GenerateTags(title, summary, category string) []string {
	text := strings.ToLower(title + " " + summary)

	var tags []string
	for tag, keywords := range tagKeywords {
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				tags = append(tags, tag)
				break
			}
		}
	}

	if len(tags) == 0 && category != "" {
		tags = append(tags, category)
	}

	sort.Strings(tags)
	return tags
}
