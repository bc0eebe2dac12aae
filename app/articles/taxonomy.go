package articles

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var defaultCategoriesYAML []byte

// canonicalOrder fixes the enumeration order of the known categories.
// Categories added via an override file are appended alphabetically.
var canonicalOrder = []string{
	"news",
	"diseases",
	"solutions",
	"food",
	"audience",
	"blogs_and_opinions",
	"trending",
}

type Subcategory struct {
	Name     string
	Keywords []string
}

type Category struct {
	Name          string
	Subcategories []Subcategory
}

// Taxonomy holds the fixed category set with its subcategories and the
// keyword lists used during scraping. Loaded once at startup, read-only
// afterwards.
type Taxonomy struct {
	categories []Category
	index      map[string]map[string][]string
}

// LoadTaxonomy parses the category definitions. An empty path loads the
// embedded defaults.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data := defaultCategoriesYAML
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read categories file: %w", err)
		}
		data = fileData
	}

	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse categories YAML: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no categories defined")
	}

	t := &Taxonomy{
		index: make(map[string]map[string][]string, len(raw)),
	}

	for _, name := range orderedCategoryNames(raw) {
		subs := raw[name]
		category := Category{Name: name}

		subNames := make([]string, 0, len(subs))
		for subName := range subs {
			subNames = append(subNames, subName)
		}
		sort.Strings(subNames)

		t.index[name] = make(map[string][]string, len(subs))
		for _, subName := range subNames {
			category.Subcategories = append(category.Subcategories, Subcategory{
				Name:     subName,
				Keywords: subs[subName],
			})
			t.index[name][subName] = subs[subName]
		}

		t.categories = append(t.categories, category)
	}

	return t, nil
}

func orderedCategoryNames(raw map[string]map[string][]string) []string {
	names := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, name := range canonicalOrder {
		if _, ok := raw[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}

	var extra []string
	for name := range raw {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return append(names, extra...)
}

func (t *Taxonomy) Categories() []Category {
	return t.categories
}

func (t *Taxonomy) CategoryNames() []string {
	names := make([]string, 0, len(t.categories))
	for _, c := range t.categories {
		names = append(names, c.Name)
	}
	return names
}

func (t *Taxonomy) HasCategory(name string) bool {
	_, ok := t.index[Normalize(name)]
	return ok
}

func (t *Taxonomy) Subcategories(category string) []string {
	subs, ok := t.index[Normalize(category)]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Taxonomy) HasSubcategory(category, subcategory string) bool {
	subs, ok := t.index[Normalize(category)]
	if !ok {
		return false
	}
	_, ok = subs[Normalize(subcategory)]
	return ok
}

// Keywords returns the keyword list for a (category, subcategory) pair,
// used by the scraper for subcategory assignment and tag generation.
func (t *Taxonomy) Keywords(category, subcategory string) []string {
	subs, ok := t.index[Normalize(category)]
	if !ok {
		return nil
	}
	return subs[Normalize(subcategory)]
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a stored category/subcategory/tag name for humans:
// "blogs_and_opinions" becomes "Blogs And Opinions".
func DisplayName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
