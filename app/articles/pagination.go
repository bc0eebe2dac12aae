package articles

// Page carries the pagination arithmetic for one result page.
// TotalPages is always ceil(TotalItems / ItemsPerPage).
type Page struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
	HasNext      bool
	HasPrevious  bool
}

func NewPage(totalItems, page, limit int) Page {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	return Page{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1 && totalItems > 0,
	}
}

// ClampLimit applies the default and the hard cap that bounds response
// size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
