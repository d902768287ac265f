// Package analytics aggregates journal entries into a mood report: a
// frequency table, the positive/challenging/neutral balance, the busiest
// days, a weekly breakdown and a short list of generated insights.
//
// Analyze performs no I/O and never fails; an empty input yields a zero
// report carrying a single fallback insight.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// DefaultTopN is the number of moods and days reported when Options.TopN is unset.
const DefaultTopN = 5

// Partition names the three-way emotional balance buckets.
type Partition string

const (
	Positive    Partition = "positive"
	Challenging Partition = "challenging"
	Neutral     Partition = "neutral"
)

var partitions = map[string]Partition{
	models.MoodHappy:       Positive,
	models.MoodExcited:     Positive,
	models.MoodPeaceful:    Positive,
	models.MoodGrateful:    Positive,
	models.MoodEnergetic:   Positive,
	models.MoodSad:         Challenging,
	models.MoodAnxious:     Challenging,
	models.MoodOverwhelmed: Challenging,
	models.MoodAngry:       Challenging,
	models.MoodLonely:      Challenging,
	models.MoodBurntOut:    Challenging,
	models.MoodReflective:  Neutral,
	models.MoodGeneral:     Neutral,
	models.MoodNumb:        Neutral,
	models.MoodInsecure:    Neutral,
}

// PartitionOf returns the balance bucket of a mood and whether it has one.
func PartitionOf(mood string) (Partition, bool) {
	p, ok := partitions[mood]
	return p, ok
}

// Options controls the scope of a report.
type Options struct {
	// Month is the "2006-01" month the entries belong to. It drives the
	// report label and the weekly breakdown; both are omitted when empty.
	Month    string
	Location *time.Location
	TopN     int
}

// MoodCount is one row of the frequency table.
type MoodCount struct {
	Mood    string `json:"mood"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Balance is the positive/challenging/neutral split.
type Balance struct {
	Positive           int `json:"positive"`
	Challenging        int `json:"challenging"`
	Neutral            int `json:"neutral"`
	PositivePercent    int `json:"positive_percent"`
	ChallengingPercent int `json:"challenging_percent"`
	NeutralPercent     int `json:"neutral_percent"`
}

// DayActivity summarizes one calendar day.
type DayActivity struct {
	Date         string `json:"date"` // 2006-01-02
	Count        int    `json:"count"`
	DominantMood string `json:"dominant_mood"`
}

// Report is the analytics output for a set of entries.
type Report struct {
	Month        string        `json:"month,omitempty"`
	Label        string        `json:"label,omitempty"`
	TotalEntries int           `json:"total_entries"`
	MoodCounts   []MoodCount   `json:"mood_counts"`
	TopMoods     []MoodCount   `json:"top_moods"`
	DominantMood string        `json:"dominant_mood,omitempty"`
	Balance      Balance       `json:"balance"`
	ActiveDays   []DayActivity `json:"active_days"`
	Weeks        []Week        `json:"weeks,omitempty"`
	Insights     []string      `json:"insights"`
}

// Analyze builds a report for entries. Entries without a mood count as
// "general". Ties in every ranking resolve to the first value encountered.
func Analyze(entries []models.JournalEntry, opts Options) Report {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	total := len(entries)
	r := Report{
		Month:        opts.Month,
		TotalEntries: total,
	}
	if opts.Month != "" {
		if t, err := time.Parse("2006-01", opts.Month); err == nil {
			r.Label = t.Format("January 2006")
		}
	}

	r.MoodCounts = countMoods(entries, total)
	r.TopMoods = r.MoodCounts[:min(topN, len(r.MoodCounts))]
	if len(r.MoodCounts) > 0 {
		r.DominantMood = r.MoodCounts[0].Mood
	}
	r.Balance = balance(r.MoodCounts, total)
	r.ActiveDays = activeDays(entries, loc, topN)
	if opts.Month != "" {
		r.Weeks = weeklyBreakdown(entries, opts.Month, loc)
	}
	r.Insights = insights(r, opts.Month != "")
	return r
}

func moodOf(e models.JournalEntry) string {
	if e.Mood == "" {
		return models.MoodGeneral
	}
	return e.Mood
}

// tally counts moods and remembers first-encounter order.
type tally struct {
	order  []string
	counts map[string]int
	total  int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(mood string) {
	if _, ok := t.counts[mood]; !ok {
		t.order = append(t.order, mood)
	}
	t.counts[mood]++
	t.total++
}

// dominant returns the first mood encountered at the maximum count.
func (t *tally) dominant() string {
	best, top := "", 0
	for _, m := range t.order {
		if t.counts[m] > top {
			best, top = m, t.counts[m]
		}
	}
	return best
}

func (t *tally) sorted(total int) []MoodCount {
	out := make([]MoodCount, 0, len(t.order))
	for _, m := range t.order {
		out = append(out, MoodCount{
			Mood:    m,
			Label:   models.MoodLabel(m),
			Count:   t.counts[m],
			Percent: percent(t.counts[m], total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func countMoods(entries []models.JournalEntry, total int) []MoodCount {
	t := newTally()
	for _, e := range entries {
		t.add(moodOf(e))
	}
	return t.sorted(total)
}

func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func balance(counts []MoodCount, total int) Balance {
	var b Balance
	for _, mc := range counts {
		switch partitions[mc.Mood] {
		case Positive:
			b.Positive += mc.Count
		case Challenging:
			b.Challenging += mc.Count
		case Neutral:
			b.Neutral += mc.Count
		}
	}
	b.PositivePercent = percent(b.Positive, total)
	b.ChallengingPercent = percent(b.Challenging, total)
	b.NeutralPercent = percent(b.Neutral, total)
	return b
}

func activeDays(entries []models.JournalEntry, loc *time.Location, limit int) []DayActivity {
	index := make(map[string]int)
	var keys []string
	var tallies []*tally
	for _, e := range entries {
		key := e.CreatedAt.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(keys)
			index[key] = i
			keys = append(keys, key)
			tallies = append(tallies, newTally())
		}
		tallies[i].add(moodOf(e))
	}

	days := make([]DayActivity, 0, len(keys))
	for i, key := range keys {
		days = append(days, DayActivity{
			Date:         key,
			Count:        tallies[i].total,
			DominantMood: tallies[i].dominant(),
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Count > days[j].Count })
	return days[:min(limit, len(days))]
}
