// Package catalog holds the list helpers behind the catalog and gallery views:
// title search, sorting, pagination and elapsed-time labels.
package catalog

import (
	"sort"
	"strings"

	"github.com/tabletop/backend/internal/models"
)

const (
	SortCreatedAt = "createdAt"
	SortRating    = "rating"
	SortYear      = "year"

	DefaultGamePageSize    = 12
	DefaultCommentPageSize = 10
	MaxPageSize            = 100
)

// Query is the catalog list request.
type Query struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// Filter keeps the games whose title contains search, ignoring case.
// An empty search returns a copy of games.
func Filter(games []models.Game, search string) []models.Game {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if term == "" || strings.Contains(strings.ToLower(g.Title), term) {
			out = append(out, g)
		}
	}
	return out
}

// Sort orders games in place, descending by the given criteria.
// Unknown criteria fall back to creation time.
func Sort(games []models.Game, criteria string) {
	switch criteria {
	case SortRating:
		sort.SliceStable(games, func(i, j int) bool { return games[i].Rating > games[j].Rating })
	case SortYear:
		sort.SliceStable(games, func(i, j int) bool { return games[i].Year > games[j].Year })
	default:
		sort.SliceStable(games, func(i, j int) bool { return games[i].CreatedAt.Unix() > games[j].CreatedAt.Unix() })
	}
}

// NormalizeSort maps user input to a supported criteria.
func NormalizeSort(criteria string) string {
	switch criteria {
	case SortRating, SortYear:
		return criteria
	default:
		return SortCreatedAt
	}
}

// Apply runs search, sort and pagination over the full game list.
func Apply(games []models.Game, q Query) models.Page[models.Game] {
	filtered := Filter(games, q.Search)
	Sort(filtered, NormalizeSort(q.Sort))
	return Paginate(filtered, q.Page, q.PageSize, DefaultGamePageSize)
}

// Paginate slices page (1-based) out of items. Out of range pages are empty.
func Paginate[T any](items []T, page, pageSize, defaultSize int) models.Page[T] {
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	// Compare page numbers before multiplying so huge pages cannot overflow.
	start, end := total, total
	if page <= totalPages {
		start = (page - 1) * pageSize
		end = start + pageSize
		if end > total {
			end = total
		}
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	return models.Page[T]{
		Items: out,
		Meta: models.PaginationMeta{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
	}
}
