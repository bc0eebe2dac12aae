package articles

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Organic Food", "organic_food"},
		{"organic food", "organic_food"},
		{"organic_food", "organic_food"},
		{"  Mental Health  ", "mental_health"},
		{"NEWS", "news"},
		{"", ""},
	}

	for _, tt := range tests {
		result := Normalize(tt.input)
		if result != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		input     string
		expected  SortOrder
		expectErr bool
	}{
		{"", SortDesc, false},
		{"desc", SortDesc, false},
		{"asc", SortAsc, false},
		{"ASC", SortAsc, false},
		{" desc ", SortDesc, false},
		{"newest", "", true},
		{"ascending", "", true},
	}

	for _, tt := range tests {
		result, err := ParseSortOrder(tt.input)
		if tt.expectErr {
			if err == nil {
				t.Errorf("ParseSortOrder(%q) expected error, got %q", tt.input, result)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSortOrder(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("ParseSortOrder(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestFilter_Normalized(t *testing.T) {
	filter := Filter{
		Category:    "Blogs And Opinions",
		Subcategory: "Expert Opinions",
		Tag:         "Gut Health",
		Search:      "  vitamin d  ",
	}

	result := filter.Normalized()

	if result.Category != "blogs_and_opinions" {
		t.Errorf("Expected normalized category, got %q", result.Category)
	}
	if result.Subcategory != "expert_opinions" {
		t.Errorf("Expected normalized subcategory, got %q", result.Subcategory)
	}
	if result.Tag != "gut_health" {
		t.Errorf("Expected normalized tag, got %q", result.Tag)
	}
	if result.Search != "vitamin d" {
		t.Errorf("Search should be trimmed but not underscored, got %q", result.Search)
	}
}

func TestFilter_Validate_SearchTooShort(t *testing.T) {
	filter := Filter{Search: "a"}

	err := filter.Validate()
	if !errors.Is(err, ErrSearchTooShort) {
		t.Errorf("Expected ErrSearchTooShort, got %v", err)
	}

	filter = Filter{Search: "ab"}
	if err := filter.Validate(); err != nil {
		t.Errorf("Two-character query should be valid, got %v", err)
	}
}

func TestFilter_Validate_Dates(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		expectErr bool
	}{
		{"no dates", Filter{}, false},
		{"valid range", Filter{StartDate: "2025-01-01", EndDate: "2025-12-31"}, false},
		{"bad start date", Filter{StartDate: "01-01-2025"}, true},
		{"bad end date", Filter{EndDate: "yesterday"}, true},
		{"incomplete date", Filter{StartDate: "2025-01"}, true},
	}

	for _, tt := range tests {
		err := tt.filter.Validate()
		if tt.expectErr && err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
		if !tt.expectErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestFilter_IsZero(t *testing.T) {
	if !(Filter{}).IsZero() {
		t.Error("Empty filter should be zero")
	}
	if (Filter{Category: "news"}).IsZero() {
		t.Error("Filter with category should not be zero")
	}
}
