// Package dashboard holds the market table and portfolio view model: filtering,
// sorting, pagination, totals and display formatting. Everything except the
// Refresher is a pure function of its inputs.
package dashboard

import (
	"sort"
	"strings"

	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/models"
)

// SortKey is a sortable column of the market table.
type SortKey string

const (
	SortName      SortKey = "name"
	SortSymbol    SortKey = "symbol"
	SortPrice     SortKey = "price"
	SortChange    SortKey = "change"
	SortVolume    SortKey = "volume"
	SortFootprint SortKey = "carbonFootprint"
)

// ParseSortKey accepts the column names used in the JSON records.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortName, SortSymbol, SortPrice, SortChange, SortVolume, SortFootprint:
		return k, true
	}
	return "", false
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

const DefaultPageSize = 5

// PageSizes are the selectable rows per page.
var PageSizes = []int{5, 10, 20, 50, 100}

// State is the user controlled part of the table: search, sort and paging.
type State struct {
	Query    string
	Key      SortKey
	Dir      Direction
	Page     int
	PageSize int
}

// NewState returns the initial table state: volume descending, first page.
func NewState() State {
	return State{Key: SortVolume, Dir: Descending, Page: 1, PageSize: DefaultPageSize}
}

// SetQuery changes the search text and goes back to the first page.
func (s *State) SetQuery(q string) {
	s.Query = q
	s.Page = 1
}

// ToggleSort flips the direction when key is already active, otherwise sorts
// ascending by key.
func (s *State) ToggleSort(key SortKey) {
	if s.Key == key {
		if s.Dir == Ascending {
			s.Dir = Descending
		} else {
			s.Dir = Ascending
		}
		return
	}
	s.Key = key
	s.Dir = Ascending
}

// SetPageSize selects one of PageSizes and goes back to the first page.
// Unknown sizes are ignored.
func (s *State) SetPageSize(size int) bool {
	for _, allowed := range PageSizes {
		if allowed == size {
			s.PageSize = size
			s.Page = 1
			return true
		}
	}
	return false
}

// SetPage moves to page; Compute clamps it to the available range.
func (s *State) SetPage(page int) {
	s.Page = page
}

// ListChanged is called when a new snapshot replaces the list.
func (s *State) ListChanged() {
	s.Page = 1
}

// Page is the visible slice of the table.
type Page struct {
	Items      []models.Crypto
	Page       int
	TotalPages int
	Total      int // rows after filtering
	Start      int // index of the first visible row in the filtered list
	End        int // index after the last visible row
}

// Filter keeps the records whose name or symbol contains query, ignoring case.
// An empty query returns list itself.
func Filter(list []models.Crypto, query string) []models.Crypto {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}

	out := make([]models.Crypto, 0, len(list))
	for _, c := range list {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}

// Sort returns a sorted copy of list. The sort is stable so equal rows keep
// their upstream order.
func Sort(list []models.Crypto, key SortKey, dir Direction) []models.Crypto {
	out := make([]models.Crypto, len(list))
	copy(out, list)

	less := lessFunc(key)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b models.Crypto) bool {
	switch key {
	case SortName:
		return func(a, b models.Crypto) bool { return a.Name < b.Name }
	case SortSymbol:
		return func(a, b models.Crypto) bool { return a.Symbol < b.Symbol }
	case SortPrice:
		return func(a, b models.Crypto) bool { return a.Price < b.Price }
	case SortChange:
		return func(a, b models.Crypto) bool { return a.Change < b.Change }
	case SortFootprint:
		// numeric order of the kg value, not text order
		return func(a, b models.Crypto) bool {
			return market.ParseFootprint(a.CarbonFootprint) < market.ParseFootprint(b.CarbonFootprint)
		}
	default:
		return func(a, b models.Crypto) bool { return a.Volume < b.Volume }
	}
}

// Compute derives the visible page from the full list and the table state.
func Compute(list []models.Crypto, st State) Page {
	rows := Sort(Filter(list, st.Query), st.Key, st.Dir)

	size := st.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(rows)
	totalPages := (total + size - 1) / size

	page := st.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Items:      rows[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Start:      start,
		End:        end,
	}
}
