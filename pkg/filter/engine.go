// Package filter implements the pure derivation pipeline that turns the
// use case collection into the list a browse screen shows: free-text search,
// facet filters, sorting, and pagination. Nothing here mutates its inputs,
// so callers may invoke it repeatedly and concurrently.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/genailabs-inc/usecase-portal/pkg/models"
)

// SortKey selects the ordering of filtered results.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortTitleAZ SortKey = "a-z"
	SortTitleZA SortKey = "z-a"
)

// Facet category names, matching both the record JSON fields and the browse
// query parameters.
const (
	FacetServiceLine = "service_line"
	FacetSDLCPhase   = "sdlc_phase"
	FacetToolsUsed   = "tools_used"
)

// FacetCategories lists the filterable categories in display order.
var FacetCategories = []string{FacetServiceLine, FacetSDLCPhase, FacetToolsUsed}

// PageSize is the fixed number of records per browse page.
const PageSize = 15

// Params are the inputs of one derivation over an already
// visibility-narrowed collection.
type Params struct {
	// Query is matched case-insensitively as a substring of the title,
	// prompt text, and every facet tag. Empty matches everything.
	Query string

	// Facets maps category name to selected values. Within a category a
	// record needs any one selected value (OR); categories combine with AND.
	// Categories with no selections impose no constraint.
	Facets map[string][]string

	// Sort defaults to newest-first when empty or unknown.
	Sort SortKey
}

func facetValues(uc *models.UseCase, category string) models.StringSet {
	switch category {
	case FacetServiceLine:
		return uc.ServiceLine
	case FacetSDLCPhase:
		return uc.SDLCPhase
	case FacetToolsUsed:
		return uc.ToolsUsed
	default:
		return nil
	}
}

// FacetCounts tallies how many records carry each facet value, flattening
// multi-valued fields. Recompute whenever the base collection changes; values
// that vanish from the collection simply drop out of the result.
func FacetCounts(records []models.UseCase) map[string]map[string]int {
	counts := make(map[string]map[string]int, len(FacetCategories))
	for _, category := range FacetCategories {
		counts[category] = make(map[string]int)
	}
	for i := range records {
		for _, category := range FacetCategories {
			for _, value := range facetValues(&records[i], category) {
				counts[category][value]++
			}
		}
	}
	return counts
}

func matchesQuery(uc *models.UseCase, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(uc.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(uc.PromptsUsed), q) {
		return true
	}
	for _, category := range FacetCategories {
		for _, tag := range facetValues(uc, category) {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
	}
	return false
}

func matchesFacets(uc *models.UseCase, facets map[string][]string) bool {
	for _, category := range FacetCategories {
		selected := facets[category]
		if len(selected) == 0 {
			continue
		}
		if !facetValues(uc, category).ContainsAny(selected) {
			return false
		}
	}
	return true
}

// Apply filters and sorts the collection. The input slice is left untouched;
// ties keep their relative input order.
func Apply(records []models.UseCase, p Params) []models.UseCase {
	out := make([]models.UseCase, 0, len(records))
	for i := range records {
		if matchesQuery(&records[i], p.Query) && matchesFacets(&records[i], p.Facets) {
			out = append(out, records[i])
		}
	}
	sortRecords(out, p.Sort)
	return out
}

func sortRecords(records []models.UseCase, key SortKey) {
	switch key {
	case SortOldest:
		// Missing timestamps (zero time) sort as earliest.
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].SubmittedAt.Before(records[j].SubmittedAt)
		})
	case SortTitleAZ:
		c := collate.New(language.English)
		sort.SliceStable(records, func(i, j int) bool {
			return c.CompareString(records[i].Title, records[j].Title) < 0
		})
	case SortTitleZA:
		c := collate.New(language.English)
		sort.SliceStable(records, func(i, j int) bool {
			return c.CompareString(records[i].Title, records[j].Title) > 0
		})
	default: // SortNewest
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].SubmittedAt.After(records[j].SubmittedAt)
		})
	}
}

// Page is one fixed-size chunk of a filtered result.
type Page struct {
	Items     []models.UseCase `json:"items"`
	Page      int              `json:"page"`
	PageCount int              `json:"page_count"`
	Total     int              `json:"total"`
}

// Paginate chunks the ordered result into PageSize pages. Out-of-range page
// numbers clamp to the first page, mirroring the UI's reset-to-page-1
// behavior when inputs change.
func Paginate(records []models.UseCase, page int) Page {
	total := len(records)
	pageCount := (total + PageSize - 1) / PageSize
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 1 || page > pageCount {
		page = 1
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:     records[start:end],
		Page:      page,
		PageCount: pageCount,
		Total:     total,
	}
}
