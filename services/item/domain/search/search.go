// Package search holds the pure parts of the item query engine: criteria,
// term normalisation, per-item predicates and result ordering. Access-path
// selection against the repository lives in the application layer.
package search

import (
	"sort"
	"strings"

	"github.com/ghuser/lostfound/services/item/domain/models"
)

// Role scopes what a caller may see.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps s onto a Role; anything other than "admin" is a user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Criteria is a caller's search intent. Every field except Role is optional.
type Criteria struct {
	Role     Role
	Keyword  string
	Location string
	Date     string
	Status   string
	Details  string
}

// Result is the filtered, ordered result set. Count always equals len(Items).
type Result struct {
	Count int            `json:"count"`
	Items []*models.Item `json:"items"`
}

// UsesStatusIndex reports whether the criteria qualify for the status index
// access path rather than a full scan.
func (c Criteria) UsesStatusIndex() bool {
	return c.Role == RoleAdmin && strings.TrimSpace(c.Status) != ""
}

// StatusFilter returns the canonical status to filter on. Unrecognised values
// are returned verbatim so they match nothing instead of failing the search.
func (c Criteria) StatusFilter() models.Status {
	if st, err := models.ParseStatus(c.Status); err == nil {
		return st
	}
	return models.Status(strings.TrimSpace(c.Status))
}

var normalizer = strings.NewReplacer(" ", "", ".", "", "-", "")

// Normalize lowercases s and strips spaces, periods and hyphens.
func Normalize(s string) string {
	return normalizer.Replace(strings.ToLower(s))
}

// Contains reports whether the normalised term is a substring of the
// normalised value. An empty term matches everything; an empty value never
// matches a non-empty term.
func Contains(value, term string) bool {
	t := Normalize(term)
	if t == "" {
		return true
	}
	if value == "" {
		return false
	}
	return strings.Contains(Normalize(value), t)
}

// Matches applies scoping and every filter of c to a single item.
func (c Criteria) Matches(item *models.Item) bool {
	if c.Role != RoleAdmin && item.Type != models.ItemTypeFound {
		return false
	}

	if Normalize(c.Keyword) != "" {
		if !Contains(item.Category, c.Keyword) &&
			!Contains(item.Brand, c.Keyword) &&
			!Contains(item.Details, c.Keyword) &&
			!Contains(item.CaseID, c.Keyword) {
			return false
		}
	}

	if !Contains(item.Location, c.Location) || !Contains(item.Details, c.Details) {
		return false
	}

	if c.Date != "" && item.Date != c.Date {
		return false
	}

	if strings.TrimSpace(c.Status) != "" && item.Status != c.StatusFilter() {
		return false
	}

	return true
}

// Filter returns the items that match c, preserving input order.
func Filter(items []*models.Item, c Criteria) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if c.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortNewestFirst orders items by created_at descending.
func SortNewestFirst(items []*models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Run filters and orders a candidate set into a Result.
func Run(candidates []*models.Item, c Criteria) Result {
	items := Filter(candidates, c)
	SortNewestFirst(items)
	return Result{Count: len(items), Items: items}
}
