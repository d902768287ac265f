package journal

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

func entry(title, content, mood string, created time.Time) models.JournalEntry {
	return models.JournalEntry{
		Title:     title,
		Content:   content,
		Mood:      mood,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func titles(entries []models.JournalEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestApply_GroupsByMonthDescending(t *testing.T) {
	entries := []models.JournalEntry{
		entry("feb", "", "", day(2024, time.February, 1)),
		entry("jan late", "", "", day(2024, time.January, 20)),
		entry("jan early", "", "", day(2024, time.January, 5)),
	}

	view := Apply(entries, Filter{}, time.UTC)

	if len(view.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(view.Groups))
	}
	if view.Groups[0].Key != "2024-02" || view.Groups[1].Key != "2024-01" {
		t.Errorf("group keys = %q, %q; want 2024-02, 2024-01", view.Groups[0].Key, view.Groups[1].Key)
	}
	if view.Groups[1].Label != "January 2024" {
		t.Errorf("label = %q, want January 2024", view.Groups[1].Label)
	}
	if got := titles(view.Groups[1].Entries); !reflect.DeepEqual(got, []string{"jan late", "jan early"}) {
		t.Errorf("january order = %v", got)
	}
	if view.FilteredCount != 3 || view.TotalCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", view.FilteredCount, view.TotalCount)
	}
}

func TestApply_MoodFilterExcludesMoodless(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", "", "happy", day(2024, time.March, 3)),
		entry("b", "", "", day(2024, time.March, 2)),
		entry("c", "", "sad", day(2024, time.March, 1)),
	}

	view := Apply(entries, Filter{Mood: "happy"}, time.UTC)
	if view.FilteredCount != 1 {
		t.Fatalf("filtered = %d, want 1", view.FilteredCount)
	}
	if got := Flatten(view)[0].Title; got != "a" {
		t.Errorf("match = %q, want a", got)
	}

	if got := Apply(entries, Filter{Mood: AllMoods}, time.UTC).FilteredCount; got != 3 {
		t.Errorf("mood=all filtered = %d, want 3", got)
	}
	if got := Apply(entries, Filter{Mood: "general"}, time.UTC).FilteredCount; got != 0 {
		t.Errorf("mood=general filtered = %d, want 0", got)
	}
}

func TestApply_SearchMatchesTitleOrRawContent(t *testing.T) {
	entries := []models.JournalEntry{
		entry("Morning Walk", "<p>sunny</p>", "", day(2024, time.May, 3)),
		entry("Evening", "<p><strong>Walk</strong>ed home</p>", "", day(2024, time.May, 2)),
		entry("Notes", "nothing here", "", day(2024, time.May, 1)),
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"title case-insensitive", "morning", []string{"Morning Walk"}},
		{"title or content", "walk", []string{"Morning Walk", "Evening"}},
		{"markup is searchable", "strong", []string{"Evening"}},
		{"empty term is a no-op", "", []string{"Morning Walk", "Evening", "Notes"}},
		{"whitespace is part of the term", " walk", []string{"Morning Walk"}},
		{"whitespace-only term still filters", "  ", []string{}},
		{"no match", "rain", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(Flatten(Apply(entries, Filter{SearchTerm: tt.term}, time.UTC)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_SearchDecodesRichContent(t *testing.T) {
	rich := entry("Rich", "<p>I don&#39;t feel &#34;okay&#34; &amp; that&#39;s fine</p>", "", day(2024, time.May, 3))
	rich.ContentFormat = models.ContentFormatRich
	legacy := entry("Legacy", "<p>can&#39;t sleep</p>", "", day(2024, time.May, 2))
	plain := entry("Plain", "I typed &#39; by hand", "", day(2024, time.May, 1))
	plain.ContentFormat = models.ContentFormatPlain
	entries := []models.JournalEntry{rich, legacy, plain}

	tests := []struct {
		term string
		want []string
	}{
		{"don't", []string{"Rich"}},
		{`"okay"`, []string{"Rich"}},
		{"& that", []string{"Rich"}},
		{"can't", []string{"Legacy"}},
		{"&#39;", []string{"Rich", "Legacy", "Plain"}},
		{"' by", []string{}},
	}
	for _, tt := range tests {
		got := titles(Flatten(Apply(entries, Filter{SearchTerm: tt.term}, time.UTC)))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("search %q = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestApply_DateFilterUsesLocation(t *testing.T) {
	// 2024-02-01 03:00 UTC is still January 31 in New York.
	loc := time.FixedZone("EST", -5*60*60)
	entries := []models.JournalEntry{
		entry("edge", "", "", time.Date(2024, time.February, 1, 3, 0, 0, 0, time.UTC)),
		entry("mid", "", "", day(2023, time.January, 15)),
	}

	utcView := Apply(entries, Filter{Month: "02", Year: "2024"}, time.UTC)
	if utcView.FilteredCount != 1 {
		t.Errorf("utc filtered = %d, want 1", utcView.FilteredCount)
	}

	localView := Apply(entries, Filter{Month: "01"}, loc)
	if got := titles(Flatten(localView)); !reflect.DeepEqual(got, []string{"edge", "mid"}) {
		t.Errorf("local january = %v", got)
	}
	if localView.Groups[0].Key != "2024-01" {
		t.Errorf("local key = %q, want 2024-01", localView.Groups[0].Key)
	}

	yearOnly := Apply(entries, Filter{Year: "2023"}, loc)
	if got := titles(Flatten(yearOnly)); !reflect.DeepEqual(got, []string{"mid"}) {
		t.Errorf("year only = %v", got)
	}
}

func TestApply_AvailableOptionsComeFromUnfilteredSet(t *testing.T) {
	entries := []models.JournalEntry{
		entry("a", "", "happy", day(2024, time.November, 3)),
		entry("b", "", "", day(2024, time.February, 2)),
		entry("c", "", "sad", day(2023, time.November, 1)),
		entry("d", "", "happy", day(2022, time.July, 1)),
	}

	view := Apply(entries, Filter{SearchTerm: "a", Mood: "happy"}, time.UTC)

	if !reflect.DeepEqual(view.AvailableMonths, []string{"02", "07", "11"}) {
		t.Errorf("months = %v", view.AvailableMonths)
	}
	if !reflect.DeepEqual(view.AvailableYears, []string{"2024", "2023", "2022"}) {
		t.Errorf("years = %v", view.AvailableYears)
	}
	if !reflect.DeepEqual(view.AvailableMoods, []string{"happy", "sad"}) {
		t.Errorf("moods = %v", view.AvailableMoods)
	}
	if view.FilteredCount != 1 {
		t.Errorf("filtered = %d, want 1", view.FilteredCount)
	}
}

func TestApply_UnknownMoodYieldsNoGroups(t *testing.T) {
	entries := []models.JournalEntry{entry("a", "", "happy", day(2024, time.June, 1))}
	view := Apply(entries, Filter{Mood: "lonely"}, time.UTC)
	if len(view.Groups) != 0 || view.FilteredCount != 0 {
		t.Errorf("view = %+v, want empty", view)
	}
}

func TestApply_GroupsPartitionFilteredSet(t *testing.T) {
	var entries []models.JournalEntry
	start := day(2024, time.December, 28)
	for i := 0; i < 40; i++ {
		mood := ""
		if i%3 == 0 {
			mood = "happy"
		}
		entries = append(entries, entry("e", "body", mood, start.AddDate(0, 0, -i*3)))
	}

	filters := []Filter{{}, {Mood: "happy"}, {Year: "2024"}, {Month: "10"}, {SearchTerm: "BODY"}}
	for _, f := range filters {
		view := Apply(entries, f, time.UTC)
		matched := Match(entries, f, time.UTC)

		seen := 0
		for _, g := range view.Groups {
			for _, e := range g.Entries {
				if got := e.CreatedAt.Format("2006-01"); got != g.Key {
					t.Errorf("filter %+v: entry in %s placed in group %s", f, got, g.Key)
				}
			}
			seen += len(g.Entries)
		}
		if seen != len(matched) || seen != view.FilteredCount {
			t.Errorf("filter %+v: grouped %d, matched %d, count %d", f, seen, len(matched), view.FilteredCount)
		}

		// filtering twice changes nothing
		again := Apply(Flatten(view), f, time.UTC)
		if !reflect.DeepEqual(Flatten(again), Flatten(view)) {
			t.Errorf("filter %+v is not idempotent", f)
		}
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{}
	q.Set("search", "Walk ")
	q.Set("mood", " happy")
	q.Set("month", "3")
	q.Set("year", "2024")

	got := ParseFilter(q)
	want := Filter{SearchTerm: "Walk ", Mood: "happy", Month: "03", Year: "2024"}
	if got != want {
		t.Errorf("ParseFilter = %+v, want %+v", got, want)
	}
}

func TestSortByCreatedDesc(t *testing.T) {
	entries := []models.JournalEntry{
		entry("old", "", "", day(2024, time.January, 1)),
		entry("new", "", "", day(2024, time.March, 1)),
		entry("mid", "", "", day(2024, time.February, 1)),
	}
	SortByCreatedDesc(entries)
	if got := titles(entries); !reflect.DeepEqual(got, []string{"new", "mid", "old"}) {
		t.Errorf("order = %v", got)
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel("2023-09"); got != "September 2023" {
		t.Errorf("MonthLabel = %q", got)
	}
	if got := MonthLabel("bad"); got != "bad" {
		t.Errorf("MonthLabel(bad) = %q", got)
	}
}
