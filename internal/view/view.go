// Package view derives the visible subset of feedback records from the
// full record set. Every output is a pure function of the record set and
// the query tuple; the pipeline is always filter, then sort, then
// paginate.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/feedbackhq/feedback-api/internal/models"
)

// PageSize is the fixed number of records per page.
const PageSize = 10

type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByRating    SortKey = "rating"
	SortByName      SortKey = "name"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Query is the parameter tuple the view is derived from.
type Query struct {
	Search    string
	SortKey   SortKey
	SortOrder SortOrder
	Page      int
}

// DefaultQuery returns the initial view: newest first, page 1.
func DefaultQuery() Query {
	return Query{SortKey: SortByCreatedAt, SortOrder: OrderDesc, Page: 1}
}

// WithSearch returns the query with new search text. The active page
// resets to 1 so an out-of-range page never persists across a filter
// change.
func (q Query) WithSearch(search string) Query {
	q.Search = search
	q.Page = 1
	return q
}

// WithSort returns the query with a new sort key/direction, resetting
// the active page to 1.
func (q Query) WithSort(key SortKey, order SortOrder) Query {
	q.SortKey = key
	q.SortOrder = order
	q.Page = 1
	return q
}

// WithPage returns the query on the given 1-indexed page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// Normalized clamps unknown sort parameters to the defaults and the page
// to a minimum of 1.
func (q Query) Normalized() Query {
	switch q.SortKey {
	case SortByCreatedAt, SortByRating, SortByName:
	default:
		q.SortKey = SortByCreatedAt
	}
	switch q.SortOrder {
	case OrderAsc, OrderDesc:
	default:
		q.SortOrder = OrderDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// CacheKey renders the tuple as a stable cache key.
func (q Query) CacheKey() string {
	q = q.Normalized()
	return fmt.Sprintf("feedback:view:%s:%s:%d:q=%s", q.SortKey, q.SortOrder, q.Page, strings.ToLower(q.Search))
}

// Result is the visible subset plus pagination metadata.
type Result struct {
	Items        []models.Feedback `json:"items"`
	TotalMatched int               `json:"total_matched"`
	TotalPages   int               `json:"total_pages"`
	Page         int               `json:"page"`
}

// Apply derives the visible page for the query. A page beyond the last
// available one yields an empty slice, not an error.
func Apply(records []models.Feedback, q Query) Result {
	q = q.Normalized()
	matched := Filter(records, q.Search)
	sorted := Sort(matched, q.SortKey, q.SortOrder)

	totalMatched := len(matched)
	totalPages := (totalMatched + PageSize - 1) / PageSize

	start := (q.Page - 1) * PageSize
	items := []models.Feedback{}
	if start < len(sorted) {
		end := start + PageSize
		if end > len(sorted) {
			end = len(sorted)
		}
		items = sorted[start:end]
	}

	return Result{
		Items:        items,
		TotalMatched: totalMatched,
		TotalPages:   totalPages,
		Page:         q.Page,
	}
}

// ExportRows returns the filtered and sorted full set, not paginated, in
// export-ready order.
func ExportRows(records []models.Feedback, q Query) []models.Feedback {
	q = q.Normalized()
	return Sort(Filter(records, q.Search), q.SortKey, q.SortOrder)
}

// Filter keeps records whose name, email or message contains the search
// text case-insensitively, or whose rating's decimal form contains it.
// Empty search text passes everything.
func Filter(records []models.Feedback, search string) []models.Feedback {
	if search == "" {
		return records
	}

	lower := strings.ToLower(search)
	matched := make([]models.Feedback, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), lower) ||
			strings.Contains(strings.ToLower(rec.Email), lower) ||
			strings.Contains(strings.ToLower(rec.Message), lower) ||
			strings.Contains(strconv.Itoa(rec.Rating), search) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Sort returns a sorted copy. The sort is stable so equal-key records
// keep their relative input order, which keeps pagination reproducible.
func Sort(records []models.Feedback, key SortKey, order SortOrder) []models.Feedback {
	sorted := make([]models.Feedback, len(records))
	copy(sorted, records)

	less := lessFunc(key)
	if order == OrderDesc {
		asc := less
		less = func(a, b models.Feedback) bool { return asc(b, a) }
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func lessFunc(key SortKey) func(a, b models.Feedback) bool {
	switch key {
	case SortByRating:
		return func(a, b models.Feedback) bool { return a.Rating < b.Rating }
	case SortByName:
		return func(a, b models.Feedback) bool { return a.Name < b.Name }
	default:
		return func(a, b models.Feedback) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}
