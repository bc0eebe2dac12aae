package articles

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	MinSearchLength = 2
)

var ErrSearchTooShort = fmt.Errorf("search query must be at least %d characters", MinSearchLength)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("invalid sort order %q: must be 'asc' or 'desc'", s)
	}
}

// Filter describes one article query. Dimensions are composable; the API
// exercises single-dimension filters plus an optional date range.
type Filter struct {
	Category    string
	Subcategory string
	Tag         string
	Search      string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
}

// Normalize maps user-supplied category/subcategory/tag names onto the
// stored form: lowercase, trimmed, spaces collapsed to underscores. This
// makes "Organic Food", "organic food" and "organic_food" equivalent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// Normalized returns a copy of the filter with all matching dimensions
// normalized and the search term trimmed.
func (f Filter) Normalized() Filter {
	f.Category = Normalize(f.Category)
	f.Subcategory = Normalize(f.Subcategory)
	f.Tag = Normalize(f.Tag)
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Validate rejects malformed filters before any store access.
func (f Filter) Validate() error {
	if f.Search != "" && len(strings.TrimSpace(f.Search)) < MinSearchLength {
		return ErrSearchTooShort
	}
	if err := validateDate("start_date", f.StartDate); err != nil {
		return err
	}
	if err := validateDate("end_date", f.EndDate); err != nil {
		return err
	}
	return nil
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return errors.New("invalid " + field + ": expected YYYY-MM-DD")
	}
	return nil
}
