package analytics

import (
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// Week is one Monday-to-Sunday slice of a month.
type Week struct {
	Label        string      `json:"label"`
	Start        string      `json:"start"` // 2006-01-02
	End          string      `json:"end"`
	Total        int         `json:"total"`
	MoodCounts   []MoodCount `json:"mood_counts"`
	DominantMood string      `json:"dominant_mood,omitempty"`
}

// weeklyBreakdown lists every week that overlaps month. Weeks start on
// Monday, so the first and last week may reach into neighbouring months.
func weeklyBreakdown(entries []models.JournalEntry, month string, loc *time.Location) []Week {
	first, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil
	}
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -daysSinceMonday(first))
	var weeks []Week
	for !start.After(last) {
		end := start.AddDate(0, 0, 6)
		next := start.AddDate(0, 0, 7)

		t := newTally()
		for _, e := range entries {
			created := e.CreatedAt.In(loc)
			if created.Before(start) || !created.Before(next) {
				continue
			}
			t.add(moodOf(e))
		}

		weeks = append(weeks, Week{
			Label:        fmt.Sprintf("Week %s - %s", start.Format("Jan 2"), end.Format("Jan 2")),
			Start:        start.Format("2006-01-02"),
			End:          end.Format("2006-01-02"),
			Total:        t.total,
			MoodCounts:   t.sorted(t.total),
			DominantMood: t.dominant(),
		})
		start = next
	}
	return weeks
}

func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
