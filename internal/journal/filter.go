// Package journal turns a user's entry collection into the dashboard view:
// filtered by search text, mood and calendar month, then grouped by month.
package journal

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/richtext"
)

// AllMoods is the mood filter value that disables mood filtering.
const AllMoods = "all"

const monthKeyLayout = "2006-01"

// Filter is the dashboard filter state. Empty fields are unset.
type Filter struct {
	SearchTerm string `json:"search"`
	Mood       string `json:"mood"`
	Month      string `json:"month"` // "01".."12"
	Year       string `json:"year"`  // "2024"
}

// ParseFilter reads filter state from query parameters.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		SearchTerm: q.Get("search"),
		Mood:       strings.TrimSpace(q.Get("mood")),
		Month:      strings.TrimSpace(q.Get("month")),
		Year:       strings.TrimSpace(q.Get("year")),
	}
	if len(f.Month) == 1 {
		f.Month = "0" + f.Month
	}
	return f
}

// MonthGroup holds the entries created in one calendar month.
type MonthGroup struct {
	Key     string                `json:"key"`
	Label   string                `json:"label"`
	Count   int                   `json:"count"`
	Entries []models.JournalEntry `json:"entries"`
}

// View is the filtered, grouped result for the dashboard.
type View struct {
	Groups          []MonthGroup `json:"groups"`
	AvailableMonths []string     `json:"available_months"`
	AvailableYears  []string     `json:"available_years"`
	AvailableMoods  []string     `json:"available_moods"`
	FilteredCount   int          `json:"filtered_count"`
	TotalCount      int          `json:"total_count"`
}

// Apply filters entries and groups the result by month. Dates are read in
// loc; a nil loc means UTC. Entries are expected in descending created_at
// order and that order is kept inside each group.
func Apply(entries []models.JournalEntry, f Filter, loc *time.Location) View {
	if loc == nil {
		loc = time.UTC
	}

	filtered := Match(entries, f, loc)

	months, years := availableDates(entries, loc)
	view := View{
		Groups:          groupByMonth(filtered, loc),
		AvailableMonths: months,
		AvailableYears:  years,
		AvailableMoods:  availableMoods(entries),
		FilteredCount:   len(filtered),
		TotalCount:      len(entries),
	}
	return view
}

// Match returns the entries that satisfy every constraint in f, in input order.
func Match(entries []models.JournalEntry, f Filter, loc *time.Location) []models.JournalEntry {
	if loc == nil {
		loc = time.UTC
	}
	term := strings.ToLower(f.SearchTerm)
	mood := strings.TrimSpace(f.Mood)

	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if term != "" &&
			!strings.Contains(strings.ToLower(e.Title), term) &&
			!contentContains(e, term) {
			continue
		}
		// moodless entries never match a specific mood
		if mood != "" && mood != AllMoods && e.Mood != mood {
			continue
		}
		created := e.CreatedAt.In(loc)
		if f.Year != "" && created.Format("2006") != f.Year {
			continue
		}
		if f.Month != "" && created.Format("01") != f.Month {
			continue
		}
		out = append(out, e)
	}
	return out
}

// contentContains matches term against the raw content, markup included.
// Rich content is also matched with its character references decoded, so a
// stored "don&#39;t" is found by "don't".
func contentContains(e models.JournalEntry, term string) bool {
	if strings.Contains(strings.ToLower(e.Content), term) {
		return true
	}
	if !strings.Contains(e.Content, "&") || richtext.FormatOf(e) != models.ContentFormatRich {
		return false
	}
	return strings.Contains(strings.ToLower(html.UnescapeString(e.Content)), term)
}

func groupByMonth(entries []models.JournalEntry, loc *time.Location) []MonthGroup {
	index := make(map[string]int)
	groups := make([]MonthGroup, 0)
	for _, e := range entries {
		key := e.CreatedAt.In(loc).Format(monthKeyLayout)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Key: key, Label: MonthLabel(key)})
		}
		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].Count++
	}
	// stable keeps member order; keys are unique so only group order changes
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key > groups[j].Key
	})
	return groups
}

func availableDates(entries []models.JournalEntry, loc *time.Location) ([]string, []string) {
	monthSet := make(map[string]struct{})
	yearSet := make(map[string]struct{})
	for _, e := range entries {
		created := e.CreatedAt.In(loc)
		monthSet[created.Format("01")] = struct{}{}
		yearSet[created.Format("2006")] = struct{}{}
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	years := make([]string, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	return months, years
}

func availableMoods(entries []models.JournalEntry) []string {
	seen := make(map[string]struct{})
	moods := make([]string, 0)
	for _, e := range entries {
		if e.Mood == "" {
			continue
		}
		if _, ok := seen[e.Mood]; ok {
			continue
		}
		seen[e.Mood] = struct{}{}
		moods = append(moods, e.Mood)
	}
	return moods
}

// MonthLabel turns a "2006-01" key into "January 2006". Malformed keys are
// returned unchanged.
func MonthLabel(key string) string {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

// Flatten returns the grouped entries in display order.
func Flatten(v View) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, v.FilteredCount)
	for _, g := range v.Groups {
		out = append(out, g.Entries...)
	}
	return out
}

// SortByCreatedDesc orders entries newest first, keeping the input order of
// entries created at the same instant.
func SortByCreatedDesc(entries []models.JournalEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}
