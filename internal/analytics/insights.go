package analytics

import (
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// EmptyInsight is the only insight produced for an empty entry set.
const EmptyInsight = "This month is waiting for your soul's expression - start your first entry!"

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func insights(r Report, monthly bool) []string {
	if r.TotalEntries == 0 {
		return []string{EmptyInsight}
	}

	period := "in this collection"
	if monthly {
		period = "this month"
	}

	out := []string{
		fmt.Sprintf("You expressed yourself through %d journal %s %s",
			r.TotalEntries, plural(r.TotalEntries, "entry", "entries"), period),
	}

	top := r.MoodCounts[0]
	out = append(out, fmt.Sprintf("Your most frequent emotional state was %s (%d %s)",
		top.Label, top.Count, plural(top.Count, "time", "times")))

	out = append(out, balanceInsight(r.Balance))

	if len(r.MoodCounts) > 1 {
		out = append(out, fmt.Sprintf("You experienced %d different emotional states, showing the richness of your inner journey",
			len(r.MoodCounts)))
	}

	if len(r.ActiveDays) > 0 {
		d := r.ActiveDays[0]
		label := d.Date
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			label = t.Format("January 2")
		}
		out = append(out, fmt.Sprintf("Your most active day was %s with %d %s, mostly feeling %s",
			label, d.Count, plural(d.Count, "entry", "entries"), models.MoodLabel(d.DominantMood)))
	}

	out = append(out, "Each entry is a step in your path of self-discovery and growth")
	return out
}

func balanceInsight(b Balance) string {
	switch {
	case b.Positive > b.Challenging && b.Positive > b.Neutral:
		return fmt.Sprintf("Positive emotions shaped %d%% of your entries", b.PositivePercent)
	case b.Challenging > b.Positive && b.Challenging > b.Neutral:
		return fmt.Sprintf("Challenging emotions appeared in %d%% of your entries - be gentle with yourself", b.ChallengingPercent)
	case b.Neutral > b.Positive && b.Neutral > b.Challenging:
		return fmt.Sprintf("Reflective and neutral states made up %d%% of your entries", b.NeutralPercent)
	default:
		return "Your emotional balance was evenly shared between different states"
	}
}
